package cfn

import (
	"encoding/json"
	"fmt"
	"time"
)

// LogicalResourceID is the fixed logical ID of the single resource in
// every generated template.
const LogicalResourceID = "Resource"

// ResourceIDOutputKey names the template output that exposes the
// physical resource ID.
const ResourceIDOutputKey = "ResourceId"

const templateFormatVersion = "2010-09-09"

// BuildSingleResourceTemplate renders the JSON template for one
// resource of resourceType with the given properties. Properties pass
// through verbatim; checking them against the type's registry schema
// is a separate read-only flow, not a gate before submission.
//
// The output is deterministic for identical inputs except for the
// timestamp embedded in the description.
func BuildSingleResourceTemplate(resourceType string, properties map[string]interface{}) (string, error) {
	if resourceType == "" {
		return "", fmt.Errorf("resource type is required to build a template")
	}

	resource := map[string]interface{}{
		"Type": resourceType,
	}
	if len(properties) > 0 {
		resource["Properties"] = properties
	}

	template := map[string]interface{}{
		"AWSTemplateFormatVersion": templateFormatVersion,
		"Description":              fmt.Sprintf("Single-resource stack for %s generated at %s", resourceType, time.Now().UTC().Format(time.RFC3339)),
		"Resources": map[string]interface{}{
			LogicalResourceID: resource,
		},
		"Outputs": map[string]interface{}{
			ResourceIDOutputKey: map[string]interface{}{
				"Description": "Physical ID of the managed resource",
				"Value":       map[string]interface{}{"Ref": LogicalResourceID},
				"Export": map[string]interface{}{
					"Name": map[string]interface{}{"Fn::Sub": "${AWS::StackName}-ResourceId"},
				},
			},
		},
	}

	rendered, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render template for %s: %w", resourceType, err)
	}
	return string(rendered), nil
}
