// Package aws holds the AWS clients the storefront talks to: SNS for order
// events, CloudWatch for metrics and CloudWatch Logs for log shipping.
package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"go.uber.org/zap"
)

// LoadAWSConfig loads the default credential chain. A non-empty endpoint
// (LocalStack, for example) overrides the base endpoint of every client
// built from the returned config. logger may be nil.
func LoadAWSConfig(ctx context.Context, region, endpoint string, logger *zap.Logger) (sdkaws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if endpoint != "" {
		cfg.BaseEndpoint = sdkaws.String(endpoint)
	}

	if logger != nil {
		logger.Debug("Loaded AWS config",
			zap.String("region", cfg.Region),
			zap.String("endpoint", endpoint),
		)
	}
	return cfg, nil
}
