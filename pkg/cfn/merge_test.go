package cfn

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMergeTemplateProperties(t *testing.T) {
	body, err := BuildSingleResourceTemplate("AWS::S3::Bucket", map[string]interface{}{
		"BucketName": "old-name",
		"VersioningConfiguration": map[string]interface{}{
			"Status": "Suspended",
		},
		"AccessControl": "Private",
	})
	if err != nil {
		t.Fatalf("failed to build template: %v", err)
	}

	merged, properties, err := MergeTemplateProperties(body, map[string]interface{}{
		"BucketName": "new-name",
		"VersioningConfiguration": map[string]interface{}{
			"Status": "Enabled",
		},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	t.Run("caller keys win", func(t *testing.T) {
		if properties["BucketName"] != "new-name" {
			t.Errorf("BucketName = %v, want new-name", properties["BucketName"])
		}
	})

	t.Run("untouched keys survive", func(t *testing.T) {
		if properties["AccessControl"] != "Private" {
			t.Errorf("AccessControl = %v, want Private", properties["AccessControl"])
		}
	})

	t.Run("nested maps replaced wholesale", func(t *testing.T) {
		versioning, _ := properties["VersioningConfiguration"].(map[string]interface{})
		if !reflect.DeepEqual(versioning, map[string]interface{}{"Status": "Enabled"}) {
			t.Errorf("shallow merge should replace the nested map, got: %v", versioning)
		}
	})

	t.Run("merged body parses and carries the change", func(t *testing.T) {
		var template map[string]interface{}
		if err := json.Unmarshal([]byte(merged), &template); err != nil {
			t.Fatalf("merged template is not valid JSON: %v", err)
		}
		resource := template["Resources"].(map[string]interface{})[LogicalResourceID].(map[string]interface{})
		mergedProps := resource["Properties"].(map[string]interface{})
		if mergedProps["BucketName"] != "new-name" {
			t.Errorf("merged body BucketName = %v, want new-name", mergedProps["BucketName"])
		}
	})
}

func TestMergeTemplatePropertiesWithoutExistingProperties(t *testing.T) {
	body, err := BuildSingleResourceTemplate("AWS::SNS::Topic", nil)
	if err != nil {
		t.Fatalf("failed to build template: %v", err)
	}

	_, properties, err := MergeTemplateProperties(body, map[string]interface{}{
		"TopicName": "alerts",
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if properties["TopicName"] != "alerts" {
		t.Errorf("TopicName = %v, want alerts", properties["TopicName"])
	}
}

func TestMergeTemplatePropertiesRejectsBadTemplates(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		if _, _, err := MergeTemplateProperties("not json", nil); err == nil {
			t.Error("expected an error for invalid JSON")
		}
	})

	t.Run("missing resources section", func(t *testing.T) {
		if _, _, err := MergeTemplateProperties(`{"Outputs":{}}`, nil); err == nil {
			t.Error("expected an error for a template without Resources")
		}
	})

	t.Run("missing managed resource", func(t *testing.T) {
		if _, _, err := MergeTemplateProperties(`{"Resources":{"Other":{"Type":"AWS::SNS::Topic"}}}`, nil); err == nil {
			t.Error("expected an error when the managed logical ID is absent")
		}
	})
}

func TestResourceTypeFromTemplate(t *testing.T) {
	body, err := BuildSingleResourceTemplate("AWS::S3::Bucket", map[string]interface{}{"BucketName": "b"})
	if err != nil {
		t.Fatalf("failed to build template: %v", err)
	}

	resourceType, err := ResourceTypeFromTemplate(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resourceType != "AWS::S3::Bucket" {
		t.Errorf("resourceType = %s, want AWS::S3::Bucket", resourceType)
	}

	if _, err := ResourceTypeFromTemplate(`{"Resources":{"Resource":{}}}`); err == nil {
		t.Error("expected an error when the resource has no Type")
	}
}
