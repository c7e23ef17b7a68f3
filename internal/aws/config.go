package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	sdkconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/imrishuroy/storefront-checkout/internal/config"
)

const defaultRegion = "us-east-1"

// LoadAWSConfig resolves credentials the default way. EndpointOverride points
// every client at a local stack when set.
func LoadAWSConfig(ctx context.Context, cfg config.AWSConfig) (sdkaws.Config, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*sdkconfig.LoadOptions) error{sdkconfig.WithRegion(region)}
	if cfg.EndpointOverride != "" {
		opts = append(opts, sdkconfig.WithBaseEndpoint(cfg.EndpointOverride))
	}

	awsCfg, err := sdkconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awsCfg, fmt.Errorf("load aws config (region %s): %w", region, err)
	}
	return awsCfg, nil
}
