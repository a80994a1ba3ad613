package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
)

// GetLiveResource reads the current state of a provisioned resource
// through Cloud Control, independent of any stack. The identifier is
// the resource's primary identifier, usually the physical resource ID.
func (c *Client) GetLiveResource(ctx context.Context, typeName, identifier string) (map[string]interface{}, error) {
	result, err := c.cloudcontrol.GetResource(ctx, &cloudcontrol.GetResourceInput{
		TypeName:   aws.String(typeName),
		Identifier: aws.String(identifier),
	})
	if err != nil {
		return nil, wrapOperation(fmt.Sprintf("failed to get live resource %s of type %s", identifier, typeName), err)
	}

	if result.ResourceDescription == nil || result.ResourceDescription.Properties == nil {
		return map[string]interface{}{}, nil
	}

	var properties map[string]interface{}
	raw := aws.ToString(result.ResourceDescription.Properties)
	if err := json.Unmarshal([]byte(raw), &properties); err != nil {
		return nil, fmt.Errorf("failed to parse properties for resource %s: %w", identifier, err)
	}

	return properties, nil
}
