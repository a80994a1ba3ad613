// Package cfn holds the pure CloudFormation domain logic: request
// validation, single-resource template rendering, capability
// inference, and template property merging. Nothing here talks to AWS.
package cfn

import (
	"fmt"
	"regexp"

	"github.com/versus-control/cloudformation-agent/pkg/types"
)

const (
	// MaxStackNameLength is CloudFormation's stack name limit.
	MaxStackNameLength = 128

	// MaxTemplateBodyBytes is the largest template body CloudFormation
	// accepts inline. Larger templates must be passed by S3 URL.
	MaxTemplateBodyBytes = 51200

	MinTimeoutMinutes = 1
	MaxTimeoutMinutes = 43200
)

var stackNamePattern = regexp.MustCompile(`^[a-zA-Z][-a-zA-Z0-9]*$`)

// ValidateRequest checks one stack request against the rules of the
// given operation. It is a pure function of its input: problems with
// user input land in the result, never in the returned error. The
// error reports programmer misuse only, an operation tag this package
// does not know.
func ValidateRequest(operation string, req types.StackRequest) (types.ValidationResult, error) {
	result := types.ValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	switch operation {
	case types.OpCreateStack, types.OpUpdateStack:
		requireStackName(&result, req, operation)
		requireTemplateSource(&result, req, operation)
	case types.OpDeleteStack, types.OpDescribeStack, types.OpGetTemplate,
		types.OpDescribeStackEvents, types.OpDescribeStackResources:
		requireStackName(&result, req, operation)
	case types.OpValidateTemplate:
		requireTemplateSource(&result, req, operation)
	case types.OpCreateChangeSet, types.OpExecuteChangeSet:
		requireStackName(&result, req, operation)
	case types.OpListStacks:
		// Nothing required.
	default:
		return result, fmt.Errorf("unknown validation operation: %s", operation)
	}

	if req.StackName != "" {
		validateStackName(&result, req.StackName)
	}

	if req.TemplateBody != "" && req.TemplateURL != "" && consumesTemplate(operation) {
		addWarning(&result, "both templateBody and templateUrl were provided; templateBody takes precedence")
	}

	if len(req.TemplateBody) > MaxTemplateBodyBytes {
		addWarning(&result, fmt.Sprintf("template body is %d bytes, which exceeds the %d byte inline limit; consider passing it via templateUrl", len(req.TemplateBody), MaxTemplateBodyBytes))
	}

	validateParameters(&result, req.Parameters)

	if req.TimeoutInMinutes != nil {
		timeout := *req.TimeoutInMinutes
		if timeout < MinTimeoutMinutes || timeout > MaxTimeoutMinutes {
			addError(&result, fmt.Sprintf("timeoutInMinutes must be between %d and %d, got %d", MinTimeoutMinutes, MaxTimeoutMinutes, timeout))
		}
	}

	return result, nil
}

func requireStackName(result *types.ValidationResult, req types.StackRequest, operation string) {
	if req.StackName == "" {
		addError(result, fmt.Sprintf("%s requires stackName", operation))
	}
}

func requireTemplateSource(result *types.ValidationResult, req types.StackRequest, operation string) {
	if req.TemplateBody == "" && req.TemplateURL == "" {
		addError(result, fmt.Sprintf("%s requires templateBody or templateUrl", operation))
	}
}

func consumesTemplate(operation string) bool {
	switch operation {
	case types.OpCreateStack, types.OpUpdateStack, types.OpValidateTemplate, types.OpCreateChangeSet:
		return true
	}
	return false
}

// StackNameErrors returns the rule violations for one stack name,
// empty when the name is acceptable.
func StackNameErrors(stackName string) []string {
	result := types.ValidationResult{IsValid: true}
	validateStackName(&result, stackName)
	return result.Errors
}

func validateStackName(result *types.ValidationResult, stackName string) {
	if !stackNamePattern.MatchString(stackName) {
		addError(result, fmt.Sprintf("stack name %q must start with a letter and contain only letters, digits, and hyphens", stackName))
	}
	if len(stackName) > MaxStackNameLength {
		addError(result, fmt.Sprintf("stack name %q exceeds the maximum length of %d characters", stackName, MaxStackNameLength))
	}
}

// validateParameters reports every repeated parameter key. One error
// per extra occurrence.
func validateParameters(result *types.ValidationResult, parameters []types.Parameter) {
	seen := make(map[string]bool, len(parameters))
	for _, parameter := range parameters {
		if seen[parameter.Key] {
			addError(result, fmt.Sprintf("duplicate parameter key: %s", parameter.Key))
			continue
		}
		seen[parameter.Key] = true
	}
}

func addError(result *types.ValidationResult, message string) {
	result.IsValid = false
	result.Errors = append(result.Errors, message)
}

func addWarning(result *types.ValidationResult, message string) {
	result.Warnings = append(result.Warnings, message)
}
