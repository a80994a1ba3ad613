package cfn

import (
	"encoding/json"
	"reflect"
	"testing"
)

func parseTemplate(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var template map[string]interface{}
	if err := json.Unmarshal([]byte(body), &template); err != nil {
		t.Fatalf("generated template is not valid JSON: %v", err)
	}
	return template
}

func TestBuildSingleResourceTemplate(t *testing.T) {
	body, err := BuildSingleResourceTemplate("AWS::S3::Bucket", map[string]interface{}{
		"BucketName": "test-bucket",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	template := parseTemplate(t, body)

	if template["AWSTemplateFormatVersion"] != "2010-09-09" {
		t.Errorf("wrong format version: %v", template["AWSTemplateFormatVersion"])
	}

	resources, ok := template["Resources"].(map[string]interface{})
	if !ok {
		t.Fatal("template has no Resources section")
	}
	resource, ok := resources[LogicalResourceID].(map[string]interface{})
	if !ok {
		t.Fatalf("template has no %s resource", LogicalResourceID)
	}
	if resource["Type"] != "AWS::S3::Bucket" {
		t.Errorf("wrong resource type: %v", resource["Type"])
	}

	properties, ok := resource["Properties"].(map[string]interface{})
	if !ok {
		t.Fatal("resource has no Properties")
	}
	if properties["BucketName"] != "test-bucket" {
		t.Errorf("properties not passed through: %v", properties)
	}

	outputs, ok := template["Outputs"].(map[string]interface{})
	if !ok {
		t.Fatal("template has no Outputs section")
	}
	output, ok := outputs[ResourceIDOutputKey].(map[string]interface{})
	if !ok {
		t.Fatalf("template has no %s output", ResourceIDOutputKey)
	}

	value, _ := output["Value"].(map[string]interface{})
	if value["Ref"] != LogicalResourceID {
		t.Errorf("output value should be a Ref to %s, got: %v", LogicalResourceID, output["Value"])
	}

	export, _ := output["Export"].(map[string]interface{})
	exportName, _ := export["Name"].(map[string]interface{})
	if exportName["Fn::Sub"] != "${AWS::StackName}-ResourceId" {
		t.Errorf("wrong export name: %v", export)
	}
}

func TestBuildTemplateDeterministicExceptTimestamp(t *testing.T) {
	properties := map[string]interface{}{
		"BucketName": "test-bucket",
		"Tags": []interface{}{
			map[string]interface{}{"Key": "env", "Value": "dev"},
		},
	}

	first, err := BuildSingleResourceTemplate("AWS::S3::Bucket", properties)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := BuildSingleResourceTemplate("AWS::S3::Bucket", properties)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstParsed := parseTemplate(t, first)
	secondParsed := parseTemplate(t, second)
	delete(firstParsed, "Description")
	delete(secondParsed, "Description")

	if !reflect.DeepEqual(firstParsed, secondParsed) {
		t.Error("templates differ beyond the description timestamp")
	}
}

func TestBuildTemplateWithoutProperties(t *testing.T) {
	body, err := BuildSingleResourceTemplate("AWS::SNS::Topic", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	template := parseTemplate(t, body)
	resources := template["Resources"].(map[string]interface{})
	resource := resources[LogicalResourceID].(map[string]interface{})

	if _, present := resource["Properties"]; present {
		t.Error("empty properties should omit the Properties key")
	}
}

func TestBuildTemplateRequiresResourceType(t *testing.T) {
	if _, err := BuildSingleResourceTemplate("", nil); err == nil {
		t.Error("expected an error for empty resource type")
	}
}
