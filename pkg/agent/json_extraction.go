package agent

import (
	"encoding/json"
	"strings"
)

// extractJSON pulls the first complete JSON object out of model text.
// Models wrap JSON in prose or markdown fences more often than not, so
// extraction has to be tolerant: brace counting is string- and
// escape-aware, fenced blocks are tried next, and an unterminated
// object gets a best-effort completion.
func extractJSON(text string) string {
	if candidate := extractBalancedObject(text, strings.Index(text, "{")); candidate != "" {
		return candidate
	}
	if candidate := extractFencedJSON(text); candidate != "" {
		return candidate
	}
	// Any later brace might still open a valid object.
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		if candidate := extractBalancedObject(text, i); candidate != "" && isValidJSON(candidate) {
			return candidate
		}
	}
	return completeTruncatedJSON(text)
}

// extractBalancedObject walks from start counting braces outside of
// string literals until the object closes.
func extractBalancedObject(text string, start int) string {
	if start < 0 {
		return ""
	}

	braceCount := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}

// extractFencedJSON looks inside markdown code blocks, preferring an
// explicit ```json fence.
func extractFencedJSON(text string) string {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(text, marker)
		if start == -1 {
			continue
		}
		start += len(marker)
		if marker == "```" {
			// Skip a language identifier on the fence line.
			if newline := strings.Index(text[start:], "\n"); newline != -1 {
				start += newline + 1
			}
		}
		end := strings.Index(text[start:], "```")
		if end == -1 {
			continue
		}
		candidate := strings.TrimSpace(text[start : start+end])
		if isValidJSON(candidate) {
			return candidate
		}
	}
	return ""
}

func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}

// completeTruncatedJSON recovers objects a token limit cut off
// mid-stream by closing open strings and braces, then by backtracking
// to the last parseable prefix.
func completeTruncatedJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	truncated := strings.TrimSpace(text[start:])

	if strings.HasSuffix(truncated, "\"") {
		if completed := truncated + "\"}}}"; isValidJSON(completed) {
			return completed
		}
	}

	if openBraces := strings.Count(truncated, "{") - strings.Count(truncated, "}"); openBraces > 0 {
		if completed := truncated + strings.Repeat("}", openBraces); isValidJSON(completed) {
			return completed
		}
	}

	for i := len(truncated) - 1; i >= 0; i-- {
		if truncated[i] == '}' {
			if candidate := truncated[:i+1]; isValidJSON(candidate) {
				return candidate
			}
		}
	}

	return ""
}
