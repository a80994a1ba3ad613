package aws

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
)

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

func TestClassifyAPIErrors(t *testing.T) {
	cases := []struct {
		name         string
		err          error
		wantCode     ErrorCode
		wantSeverity Severity
	}{
		{
			name:         "validation error",
			err:          apiError("ValidationError", "Template format error: unsupported structure"),
			wantCode:     ErrValidation,
			wantSeverity: SeverityWarning,
		},
		{
			name:         "missing stack reported as validation error",
			err:          apiError("ValidationError", "Stack with id cfn-s3-bucket-a1b2c3d4 does not exist"),
			wantCode:     ErrStackNotFound,
			wantSeverity: SeverityError,
		},
		{
			name:         "stack already exists",
			err:          apiError("AlreadyExistsException", "Stack [cfn-s3-bucket-a1b2c3d4] already exists"),
			wantCode:     ErrResourceAlreadyExists,
			wantSeverity: SeverityWarning,
		},
		{
			name:         "expired token",
			err:          apiError("ExpiredTokenException", "The security token included in the request is expired"),
			wantCode:     ErrCredentialsExpired,
			wantSeverity: SeverityCritical,
		},
		{
			name:         "unrecognized client",
			err:          apiError("UnrecognizedClientException", "The security token included in the request is invalid"),
			wantCode:     ErrCredentialsExpired,
			wantSeverity: SeverityCritical,
		},
		{
			name:         "insufficient capabilities",
			err:          apiError("InsufficientCapabilitiesException", "Requires capabilities : [CAPABILITY_IAM]"),
			wantCode:     ErrInsufficientCapabilities,
			wantSeverity: SeverityError,
		},
		{
			name:         "throttling",
			err:          apiError("Throttling", "Rate exceeded"),
			wantCode:     ErrServiceLimitExceeded,
			wantSeverity: SeverityError,
		},
		{
			name:         "limit exceeded",
			err:          apiError("LimitExceededException", "Limit for stacks exceeded"),
			wantCode:     ErrServiceLimitExceeded,
			wantSeverity: SeverityError,
		},
		{
			name:         "change set not found",
			err:          apiError("ChangeSetNotFound", "ChangeSet [update-1] does not exist"),
			wantCode:     ErrStackNotFound,
			wantSeverity: SeverityError,
		},
		{
			name:         "unknown api code",
			err:          apiError("InternalFailure", "An internal error occurred"),
			wantCode:     ErrUnknown,
			wantSeverity: SeverityError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := Classify(tc.err)
			if classified.Code != tc.wantCode {
				t.Errorf("Classify() code = %s, want %s", classified.Code, tc.wantCode)
			}
			if classified.Severity != tc.wantSeverity {
				t.Errorf("Classify() severity = %s, want %s", classified.Severity, tc.wantSeverity)
			}
		})
	}
}

func TestClassifyMessageFallback(t *testing.T) {
	// Errors that arrive without a typed API code still classify by
	// message text.
	cases := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{
			name:     "does not exist",
			err:      errors.New("Stack with id demo does not exist"),
			wantCode: ErrStackNotFound,
		},
		{
			name:     "already exists",
			err:      errors.New("stack demo already exists"),
			wantCode: ErrResourceAlreadyExists,
		},
		{
			name:     "expired credentials",
			err:      errors.New("the provided token is expired"),
			wantCode: ErrCredentialsExpired,
		},
		{
			name:     "rate exceeded",
			err:      errors.New("rate exceeded for DescribeStacks"),
			wantCode: ErrServiceLimitExceeded,
		},
		{
			name:     "unclassifiable",
			err:      errors.New("something odd happened"),
			wantCode: ErrUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err).Code; got != tc.wantCode {
				t.Errorf("Classify() code = %s, want %s", got, tc.wantCode)
			}
		})
	}
}

func TestClassifyPassesThroughOperationError(t *testing.T) {
	readOnly := NewReadOnlyError("create-resource-lifecycle")
	classified := Classify(fmt.Errorf("request rejected: %w", readOnly))

	if classified.Code != ErrReadOnlyMode {
		t.Errorf("expected READ_ONLY_MODE, got %s", classified.Code)
	}
	if classified.Severity != SeverityWarning {
		t.Errorf("expected warning severity, got %s", classified.Severity)
	}
}

func TestClassifyNil(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Classify(nil) should return nil")
	}
}

func TestWrapOperationPreservesChain(t *testing.T) {
	cause := apiError("AlreadyExistsException", "Stack [demo] already exists")
	wrapped := wrapOperation("failed to create stack demo", cause)

	var opErr *OperationError
	if !errors.As(wrapped, &opErr) {
		t.Fatalf("expected *OperationError, got %T", wrapped)
	}
	if opErr.Code != ErrResourceAlreadyExists {
		t.Errorf("expected RESOURCE_ALREADY_EXISTS, got %s", opErr.Code)
	}

	var apiErr smithy.APIError
	if !errors.As(wrapped, &apiErr) {
		t.Error("wrapped error should still unwrap to the smithy API error")
	}
}

func TestIsStackNotFound(t *testing.T) {
	if !IsStackNotFound(apiError("ValidationError", "Stack with id demo does not exist")) {
		t.Error("expected stack-not-found for ValidationError does-not-exist")
	}
	if IsStackNotFound(apiError("ValidationError", "Template format error")) {
		t.Error("plain validation error is not stack-not-found")
	}
	if IsStackNotFound(nil) {
		t.Error("nil error is not stack-not-found")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "throttling retries", err: apiError("Throttling", "Rate exceeded"), want: true},
		{name: "internal failure retries", err: apiError("InternalFailure", "try again"), want: true},
		{name: "access denied never retries", err: apiError("AccessDenied", "not authorized to perform cloudformation:CreateStack"), want: false},
		{name: "unauthorized operation never retries", err: apiError("UnauthorizedOperation", "not authorized"), want: false},
		{name: "validation never retries", err: apiError("ValidationError", "Template format error"), want: false},
		{name: "expired credentials never retry", err: apiError("ExpiredTokenException", "token expired"), want: false},
		{name: "already exists never retries", err: apiError("AlreadyExistsException", "Stack [demo] already exists"), want: false},
		{name: "insufficient capabilities never retries", err: apiError("InsufficientCapabilitiesException", "Requires capabilities"), want: false},
		{name: "nil is not retryable", err: nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tc.want)
			}
		})
	}
}
