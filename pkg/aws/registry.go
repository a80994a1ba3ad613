package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// DescribeResourceType fetches resource type metadata and its provisioning
// schema from the CloudFormation registry.
func (c *Client) DescribeResourceType(ctx context.Context, typeName string) (*types.SchemaInfo, error) {
	result, err := c.cfn.DescribeType(ctx, &cloudformation.DescribeTypeInput{
		Type:     cfntypes.RegistryTypeResource,
		TypeName: aws.String(typeName),
	})
	if err != nil {
		return nil, wrapOperation(fmt.Sprintf("failed to describe resource type %s", typeName), err)
	}

	return &types.SchemaInfo{
		TypeName:         aws.ToString(result.TypeName),
		TypeArn:          aws.ToString(result.Arn),
		Description:      aws.ToString(result.Description),
		ProvisioningType: string(result.ProvisioningType),
		Schema:           aws.ToString(result.Schema),
		DocumentationURL: aws.ToString(result.DocumentationUrl),
	}, nil
}
