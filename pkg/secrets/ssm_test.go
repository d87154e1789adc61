// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParameterClient struct {
	params map[string]string
	err    error

	decryptRequested bool
}

func (f *fakeParameterClient) GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.decryptRequested = in.WithDecryption != nil && *in.WithDecryption

	value, ok := f.params[aws.ToString(in.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{
		Parameter: &types.Parameter{
			Name:  in.Name,
			Value: aws.String(value),
		},
	}, nil
}

func TestGet(t *testing.T) {
	client := &fakeParameterClient{params: map[string]string{
		"acl-log-cluster1-user": "acl-reader",
	}}
	provider := NewSSMProviderWithClient(client)

	value, err := provider.Get(context.Background(), "acl-log-cluster1-user")
	require.NoError(t, err)
	assert.Equal(t, "acl-reader", value)
	assert.True(t, client.decryptRequested, "credentials are SecureString parameters")
}

func TestGet_NotFound(t *testing.T) {
	provider := NewSSMProviderWithClient(&fakeParameterClient{})

	_, err := provider.Get(context.Background(), "acl-log-cluster1-pwd")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestGet_OtherError(t *testing.T) {
	provider := NewSSMProviderWithClient(&fakeParameterClient{err: errors.New("throttled")})

	_, err := provider.Get(context.Background(), "acl-log-cluster1-user")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialNotFound)
}

func TestGet_EmptyParameter(t *testing.T) {
	client := &fakeParameterClient{params: map[string]string{}}
	client.params["present"] = ""
	provider := NewSSMProviderWithClient(client)

	value, err := provider.Get(context.Background(), "present")
	require.NoError(t, err)
	assert.Empty(t, value)
}
