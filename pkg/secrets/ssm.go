// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

// Package secrets fetches store credentials from SSM Parameter Store.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

var ErrCredentialNotFound = errors.New("credential parameter not found")

// ParameterClient is the slice of the SSM API the provider needs.
type ParameterClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMProvider reads decrypted parameters from SSM Parameter Store.
type SSMProvider struct {
	client ParameterClient
}

// NewSSMProvider creates a provider in the given region using the default
// AWS credential chain.
func NewSSMProvider(ctx context.Context, region string) (*SSMProvider, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SSMProvider{client: ssm.NewFromConfig(awsCfg)}, nil
}

// NewSSMProviderWithClient wraps an existing client.
func NewSSMProviderWithClient(client ParameterClient) *SSMProvider {
	return &SSMProvider{client: client}
}

// Get returns the decrypted value of the named parameter. A missing
// parameter surfaces as ErrCredentialNotFound.
func (p *SSMProvider) Get(ctx context.Context, name string) (string, error) {
	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", ErrCredentialNotFound, name)
		}
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("%w: %s", ErrCredentialNotFound, name)
	}
	return *out.Parameter.Value, nil
}
