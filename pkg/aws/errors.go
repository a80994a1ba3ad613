package aws

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorCode tags the failure classes surfaced by the CloudFormation
// layer.
type ErrorCode string

const (
	ErrValidation               ErrorCode = "VALIDATION_ERROR"
	ErrCredentialsExpired       ErrorCode = "CREDENTIALS_EXPIRED"
	ErrResourceAlreadyExists    ErrorCode = "RESOURCE_ALREADY_EXISTS"
	ErrStackNotFound            ErrorCode = "STACK_NOT_FOUND"
	ErrInsufficientCapabilities ErrorCode = "INSUFFICIENT_CAPABILITIES"
	ErrServiceLimitExceeded     ErrorCode = "SERVICE_LIMIT_EXCEEDED"
	ErrReadOnlyMode             ErrorCode = "READ_ONLY_MODE"
	ErrUnknown                  ErrorCode = "UNKNOWN_ERROR"
)

// Severity of a classified failure.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// OperationError is a classified AWS failure. Callers branch on Code
// instead of matching message strings.
type OperationError struct {
	Code     ErrorCode
	Severity Severity
	Message  string
	Err      error
}

func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError builds a classified error with the severity that
// belongs to its code.
func NewOperationError(code ErrorCode, message string, err error) *OperationError {
	return &OperationError{
		Code:     code,
		Severity: severityFor(code),
		Message:  message,
		Err:      err,
	}
}

// NewReadOnlyError reports a mutating call rejected by read-only mode.
// The call is never attempted against AWS.
func NewReadOnlyError(operation string) *OperationError {
	return NewOperationError(ErrReadOnlyMode, fmt.Sprintf("operation %s rejected: read-only mode is enabled", operation), nil)
}

func severityFor(code ErrorCode) Severity {
	switch code {
	case ErrValidation, ErrResourceAlreadyExists, ErrReadOnlyMode:
		return SeverityWarning
	case ErrCredentialsExpired:
		return SeverityCritical
	default:
		return SeverityError
	}
}

// Classify maps any error onto the taxonomy. Typed smithy API codes
// are checked first; message substrings second, because several
// CloudFormation failures (a missing stack among them) only surface
// as a generic ValidationError with descriptive text.
func Classify(err error) *OperationError {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}

	code := ErrUnknown
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = classifyAPICode(apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	if code == ErrUnknown {
		code = classifyMessage(err.Error())
	}

	return NewOperationError(code, "AWS operation failed", err)
}

func classifyAPICode(apiCode, message string) ErrorCode {
	switch apiCode {
	case "ValidationError":
		// CloudFormation reports a missing stack as ValidationError
		// "Stack with id X does not exist".
		if strings.Contains(message, "does not exist") {
			return ErrStackNotFound
		}
		return ErrValidation
	case "AlreadyExistsException":
		return ErrResourceAlreadyExists
	case "ExpiredToken", "ExpiredTokenException", "InvalidClientTokenId", "UnrecognizedClientException", "SignatureDoesNotMatch":
		return ErrCredentialsExpired
	case "InsufficientCapabilitiesException":
		return ErrInsufficientCapabilities
	case "LimitExceededException", "Throttling", "ThrottlingException", "TooManyRequestsException":
		return ErrServiceLimitExceeded
	case "StackNotFoundException", "ChangeSetNotFound", "ResourceNotFoundException":
		return ErrStackNotFound
	default:
		return ErrUnknown
	}
}

func classifyMessage(message string) ErrorCode {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "does not exist") || (strings.Contains(msg, "stack") && strings.Contains(msg, "not found")):
		return ErrStackNotFound
	case strings.Contains(msg, "already exists"):
		return ErrResourceAlreadyExists
	case strings.Contains(msg, "expired") && (strings.Contains(msg, "token") || strings.Contains(msg, "credential")):
		return ErrCredentialsExpired
	case strings.Contains(msg, "insufficient capabilities") || strings.Contains(msg, "requires capabilities"):
		return ErrInsufficientCapabilities
	case strings.Contains(msg, "limit exceeded") || strings.Contains(msg, "throttl") || strings.Contains(msg, "rate exceeded"):
		return ErrServiceLimitExceeded
	case strings.Contains(msg, "read-only mode"):
		return ErrReadOnlyMode
	case strings.Contains(msg, "validation"):
		return ErrValidation
	default:
		return ErrUnknown
	}
}

// IsStackNotFound reports whether the error means the stack no longer
// exists. The wait loop treats this as terminal, not retryable.
func IsStackNotFound(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Code == ErrStackNotFound
}

// IsRetryable reports whether the retry helper may attempt the
// operation again. Validation, credential, permission, and
// already-exists failures never retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
			return false
		}
	}

	switch Classify(err).Code {
	case ErrValidation, ErrCredentialsExpired, ErrResourceAlreadyExists, ErrInsufficientCapabilities, ErrReadOnlyMode:
		return false
	}
	return true
}

// wrapOperation classifies err and prefixes it with what the adapter
// was doing, preserving the original error for unwrapping.
func wrapOperation(action string, err error) error {
	classified := Classify(err)
	return &OperationError{
		Code:     classified.Code,
		Severity: classified.Severity,
		Message:  action,
		Err:      err,
	}
}
