package cfn

import (
	"encoding/json"
	"fmt"
)

// MergeTemplateProperties applies updated properties onto the template
// body of an existing single-resource stack and returns the new body
// together with the merged property map. The merge is shallow:
// caller-supplied keys replace existing values wholesale, nested maps
// are not merged recursively.
func MergeTemplateProperties(templateBody string, updated map[string]interface{}) (string, map[string]interface{}, error) {
	var template map[string]interface{}
	if err := json.Unmarshal([]byte(templateBody), &template); err != nil {
		return "", nil, fmt.Errorf("failed to parse current template: %w", err)
	}

	resource, err := managedResource(template)
	if err != nil {
		return "", nil, err
	}

	properties, _ := resource["Properties"].(map[string]interface{})
	if properties == nil {
		properties = make(map[string]interface{}, len(updated))
	}
	for key, value := range updated {
		properties[key] = value
	}
	resource["Properties"] = properties

	rendered, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to render merged template: %w", err)
	}
	return string(rendered), properties, nil
}

// ResourceTypeFromTemplate reads the Type of the managed resource out
// of a template body.
func ResourceTypeFromTemplate(templateBody string) (string, error) {
	var template map[string]interface{}
	if err := json.Unmarshal([]byte(templateBody), &template); err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	resource, err := managedResource(template)
	if err != nil {
		return "", err
	}

	resourceType, _ := resource["Type"].(string)
	if resourceType == "" {
		return "", fmt.Errorf("managed resource %s has no Type", LogicalResourceID)
	}
	return resourceType, nil
}

func managedResource(template map[string]interface{}) (map[string]interface{}, error) {
	resources, ok := template["Resources"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("template has no Resources section")
	}

	resource, ok := resources[LogicalResourceID].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("template does not contain the managed resource %q", LogicalResourceID)
	}
	return resource, nil
}
