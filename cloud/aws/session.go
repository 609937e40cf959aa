package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
)

const awsConfigDocsUrl = "https://docs.aws.amazon.com/sdk-for-go/v2/developer-guide/configuring-sdk.html"

// LoadConfig loads the shared AWS configuration pinned to region
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load an AWS configuration. See here for more info %s: %w", awsConfigDocsUrl, err)
	}
	return cfg, nil
}
