package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/sirupsen/logrus"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

type Client struct {
	cfg          aws.Config
	cfn          *cloudformation.Client
	cloudcontrol *cloudcontrol.Client
	sts          *sts.Client
	logger       *logging.Logger
}

// NewClient builds a client bound to one request's credentials. The
// credentials are taken by value and live only as long as this client;
// each request gets a fresh client so nothing is shared across tenants.
func NewClient(ctx context.Context, creds types.Credentials, region string, logger *logging.Logger) (*Client, error) {
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete credentials: access key ID and secret access key are required")
	}
	if creds.Region != "" {
		region = creds.Region
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"region":      region,
		"accessKeyId": logging.TruncateKeyID(creds.AccessKeyID),
	}).Debug("AWS client created for request")

	return newClient(cfg, logger), nil
}

// NewClientFromEnvironment builds a client from the default credential
// chain. Only server startup identity checks use this path; request
// handling always goes through NewClient with caller credentials.
func NewClientFromEnvironment(ctx context.Context, region string, logger *logging.Logger) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newClient(cfg, logger), nil
}

func newClient(cfg aws.Config, logger *logging.Logger) *Client {
	return &Client{
		cfg:          cfg,
		cfn:          cloudformation.NewFromConfig(cfg),
		cloudcontrol: cloudcontrol.NewFromConfig(cfg),
		sts:          sts.NewFromConfig(cfg),
		logger:       logger,
	}
}

// HealthCheck verifies AWS connectivity and that the credentials
// resolve to a caller identity
func (c *Client) HealthCheck(ctx context.Context) error {
	identity, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("AWS health check failed: %w", err)
	}

	c.logger.WithField("account", aws.ToString(identity.Account)).Debug("AWS health check passed")
	return nil
}

// GetRegion returns the configured AWS region
func (c *Client) GetRegion() string {
	return c.cfg.Region
}
