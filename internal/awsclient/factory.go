// Package awsclient configures the AWS SDK clients and adapts the CloudWatch
// dashboards API to the reconciler.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/AD7six/ebs-dash/internal/config"
)

// Clients holds the service clients of one run, all bound to the same region.
type Clients struct {
	EC2        *ec2.Client
	CloudWatch *cloudwatch.Client
	S3         *s3.Client
}

// LoadConfig loads the default AWS configuration (environment, shared files,
// instance role) for the region of s, with the retry and timeout settings of s.
func LoadConfig(ctx context.Context, s *appconfig.Settings) (aws.Config, error) {
	httpClient := awshttp.NewBuildableClient().WithTimeout(s.HTTPTimeout)
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(s.Region),
		config.WithRetryMaxAttempts(s.MaxAttempts),
		config.WithHTTPClient(httpClient),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return cfg, nil
}

// New builds the clients for s.
func New(ctx context.Context, s *appconfig.Settings) (*Clients, error) {
	cfg, err := LoadConfig(ctx, s)
	if err != nil {
		return nil, err
	}
	return &Clients{
		EC2:        ec2.NewFromConfig(cfg),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
		S3:         s3.NewFromConfig(cfg),
	}, nil
}
