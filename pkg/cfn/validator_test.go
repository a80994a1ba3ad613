package cfn

import (
	"strings"
	"testing"

	"github.com/versus-control/cloudformation-agent/pkg/types"
)

func timeoutPtr(minutes int32) *int32 {
	return &minutes
}

func mustValidate(t *testing.T, operation string, req types.StackRequest) types.ValidationResult {
	t.Helper()
	result, err := ValidateRequest(operation, req)
	if err != nil {
		t.Fatalf("ValidateRequest(%s) returned error: %v", operation, err)
	}
	return result
}

func TestValidateCreateStack(t *testing.T) {
	t.Run("valid request passes", func(t *testing.T) {
		result := mustValidate(t, types.OpCreateStack, types.StackRequest{
			StackName:    "cfn-s3-bucket-a1b2c3d4",
			TemplateBody: `{"Resources":{}}`,
		})

		if !result.IsValid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if len(result.Warnings) != 0 {
			t.Errorf("expected no warnings, got: %v", result.Warnings)
		}
	})

	t.Run("missing stack name", func(t *testing.T) {
		result := mustValidate(t, types.OpCreateStack, types.StackRequest{
			TemplateBody: `{"Resources":{}}`,
		})

		if result.IsValid {
			t.Error("expected invalid result")
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "stackName") {
			t.Errorf("expected a stackName error, got: %v", result.Errors)
		}
	})

	t.Run("missing template source", func(t *testing.T) {
		result := mustValidate(t, types.OpCreateStack, types.StackRequest{
			StackName: "demo",
		})

		if result.IsValid {
			t.Error("expected invalid result")
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "templateBody or templateUrl") {
			t.Errorf("expected a template source error, got: %v", result.Errors)
		}
	})

	t.Run("both template sources warn but stay valid", func(t *testing.T) {
		result := mustValidate(t, types.OpCreateStack, types.StackRequest{
			StackName:    "demo",
			TemplateBody: `{"Resources":{}}`,
			TemplateURL:  "https://bucket.s3.amazonaws.com/template.json",
		})

		if !result.IsValid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "templateBody takes precedence") {
			t.Errorf("expected a precedence warning, got: %v", result.Warnings)
		}
	})
}

func TestValidateStackNameRules(t *testing.T) {
	cases := []struct {
		name      string
		stackName string
		wantValid bool
	}{
		{name: "simple", stackName: "demo", wantValid: true},
		{name: "hyphenated", stackName: "cfn-s3-bucket-a1b2c3d4", wantValid: true},
		{name: "mixed case", stackName: "MyStack42", wantValid: true},
		{name: "starts with digit", stackName: "1stack", wantValid: false},
		{name: "starts with hyphen", stackName: "-stack", wantValid: false},
		{name: "underscore", stackName: "my_stack", wantValid: false},
		{name: "dot", stackName: "my.stack", wantValid: false},
		{name: "exactly 128 chars", stackName: "a" + strings.Repeat("b", 127), wantValid: true},
		{name: "129 chars", stackName: "a" + strings.Repeat("b", 128), wantValid: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := mustValidate(t, types.OpDeleteStack, types.StackRequest{StackName: tc.stackName})
			if result.IsValid != tc.wantValid {
				t.Errorf("stack name %q: IsValid = %v, want %v (errors: %v)", tc.stackName, result.IsValid, tc.wantValid, result.Errors)
			}
			if !tc.wantValid && len(result.Errors) == 0 {
				t.Error("invalid name must carry a specific error message")
			}
		})
	}
}

func TestValidateTemplateSizeWarnsOnly(t *testing.T) {
	result := mustValidate(t, types.OpCreateStack, types.StackRequest{
		StackName:    "demo",
		TemplateBody: strings.Repeat("a", MaxTemplateBodyBytes+1),
	})

	if !result.IsValid {
		t.Errorf("oversized template must not fail validation, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "51200") {
		t.Errorf("expected a size warning naming the limit, got: %v", result.Warnings)
	}
}

func TestValidateDuplicateParameterKeys(t *testing.T) {
	t.Run("one duplicate one error", func(t *testing.T) {
		result := mustValidate(t, types.OpCreateStack, types.StackRequest{
			StackName:    "demo",
			TemplateBody: `{}`,
			Parameters: []types.Parameter{
				{Key: "Env", Value: "dev"},
				{Key: "Size", Value: "small"},
				{Key: "Env", Value: "prod"},
			},
		})

		if result.IsValid {
			t.Error("expected invalid result")
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "duplicate parameter key: Env") {
			t.Errorf("expected one duplicate error for Env, got: %v", result.Errors)
		}
	})

	t.Run("each extra occurrence reported", func(t *testing.T) {
		result := mustValidate(t, types.OpCreateStack, types.StackRequest{
			StackName:    "demo",
			TemplateBody: `{}`,
			Parameters: []types.Parameter{
				{Key: "Env", Value: "a"},
				{Key: "Env", Value: "b"},
				{Key: "Env", Value: "c"},
			},
		})

		if len(result.Errors) != 2 {
			t.Errorf("three occurrences should produce two duplicate errors, got: %v", result.Errors)
		}
	})
}

func TestValidateTimeoutBounds(t *testing.T) {
	cases := []struct {
		name      string
		timeout   *int32
		wantValid bool
	}{
		{name: "unset", timeout: nil, wantValid: true},
		{name: "minimum", timeout: timeoutPtr(1), wantValid: true},
		{name: "maximum", timeout: timeoutPtr(43200), wantValid: true},
		{name: "zero", timeout: timeoutPtr(0), wantValid: false},
		{name: "negative", timeout: timeoutPtr(-5), wantValid: false},
		{name: "too large", timeout: timeoutPtr(43201), wantValid: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := mustValidate(t, types.OpCreateStack, types.StackRequest{
				StackName:        "demo",
				TemplateBody:     `{}`,
				TimeoutInMinutes: tc.timeout,
			})
			if result.IsValid != tc.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", result.IsValid, tc.wantValid, result.Errors)
			}
		})
	}
}

func TestValidatePerOperationRequirements(t *testing.T) {
	cases := []struct {
		name      string
		operation string
		req       types.StackRequest
		wantValid bool
	}{
		{name: "delete requires stack name", operation: types.OpDeleteStack, req: types.StackRequest{}, wantValid: false},
		{name: "describe requires stack name", operation: types.OpDescribeStack, req: types.StackRequest{}, wantValid: false},
		{name: "get-template requires stack name", operation: types.OpGetTemplate, req: types.StackRequest{}, wantValid: false},
		{name: "events require stack name", operation: types.OpDescribeStackEvents, req: types.StackRequest{}, wantValid: false},
		{name: "resources require stack name", operation: types.OpDescribeStackResources, req: types.StackRequest{}, wantValid: false},
		{name: "validate-template requires a source", operation: types.OpValidateTemplate, req: types.StackRequest{}, wantValid: false},
		{name: "validate-template with url", operation: types.OpValidateTemplate, req: types.StackRequest{TemplateURL: "https://bucket.s3.amazonaws.com/t.json"}, wantValid: true},
		{name: "create-change-set requires stack name", operation: types.OpCreateChangeSet, req: types.StackRequest{TemplateBody: `{}`}, wantValid: false},
		{name: "execute-change-set requires stack name", operation: types.OpExecuteChangeSet, req: types.StackRequest{}, wantValid: false},
		{name: "list-stacks needs nothing", operation: types.OpListStacks, req: types.StackRequest{}, wantValid: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := mustValidate(t, tc.operation, tc.req)
			if result.IsValid != tc.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", result.IsValid, tc.wantValid, result.Errors)
			}
		})
	}
}

func TestValidateUnknownOperationIsAnError(t *testing.T) {
	_, err := ValidateRequest("drop-stack", types.StackRequest{StackName: "demo"})
	if err == nil {
		t.Fatal("an unknown operation tag must come back as an error, not a validation result")
	}
	if !strings.Contains(err.Error(), "drop-stack") {
		t.Errorf("error should name the offending operation: %v", err)
	}
}
