package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParametersByPathAPI is the subset of the SSM client used to read parameters.
type ParametersByPathAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadAWSConfig resolves credentials from the default AWS chain.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewSSMClient builds an SSM client from the default AWS credential chain.
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	cfg, err := LoadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return ssm.NewFromConfig(cfg), nil
}

// LoadSSM reads every parameter below parameterPath and returns them keyed the way
// environment variables are: "/portfolio/prod/contact-relay-url" becomes CONTACT_RELAY_URL.
func LoadSSM(ctx context.Context, client ParametersByPathAPI, parameterPath string) (map[string]string, error) {
	values := make(map[string]string)

	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSM parameters under %s: %w", parameterPath, err)
		}
		for _, param := range page.Parameters {
			name := aws.ToString(param.Name)
			if name == "" {
				continue
			}
			values[envKey(name)] = aws.ToString(param.Value)
		}
	}

	return values, nil
}

func envKey(parameterName string) string {
	key := path.Base(parameterName)
	key = strings.NewReplacer("-", "_", ".", "_").Replace(key)
	return strings.ToUpper(key)
}
