package cfn

import (
	"reflect"
	"testing"
)

func TestInferCapabilities(t *testing.T) {
	cases := []struct {
		name         string
		resourceType string
		properties   map[string]interface{}
		want         []string
	}{
		{
			name:         "iam role",
			resourceType: "AWS::IAM::Role",
			want:         []string{CapabilityIAM},
		},
		{
			name:         "iam role with pinned name",
			resourceType: "AWS::IAM::Role",
			properties:   map[string]interface{}{"RoleName": "x"},
			want:         []string{CapabilityIAM, CapabilityNamedIAM},
		},
		{
			name:         "managed policy",
			resourceType: "AWS::IAM::ManagedPolicy",
			want:         []string{CapabilityIAM},
		},
		{
			name:         "lambda function",
			resourceType: "AWS::Lambda::Function",
			want:         []string{CapabilityIAM},
		},
		{
			name:         "s3 bucket is on the allow list",
			resourceType: "AWS::S3::Bucket",
			properties:   map[string]interface{}{"BucketName": "test-bucket"},
			want:         []string{CapabilityIAM},
		},
		{
			name:         "events rule",
			resourceType: "AWS::Events::Rule",
			want:         []string{CapabilityIAM},
		},
		{
			name:         "dynamodb table needs nothing",
			resourceType: "AWS::DynamoDB::Table",
			properties:   map[string]interface{}{"TableName": "t"},
			want:         nil,
		},
		{
			name:         "named property without listed type",
			resourceType: "AWS::SomeService::Thing",
			properties:   map[string]interface{}{"UserName": "u"},
			want:         []string{CapabilityNamedIAM},
		},
		{
			name:         "nil properties",
			resourceType: "AWS::IAM::User",
			properties:   nil,
			want:         []string{CapabilityIAM},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InferCapabilities(tc.resourceType, tc.properties)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("InferCapabilities(%s) = %v, want %v", tc.resourceType, got, tc.want)
			}
		})
	}
}
