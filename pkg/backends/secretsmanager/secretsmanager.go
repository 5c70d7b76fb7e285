/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package secretsmanager implements the AWS Secrets Manager backend.
// Descriptors carrying a role ARN are fetched with temporary credentials
// obtained via STS AssumeRole; the namespace-level permission check has
// already run by the time this backend is invoked.
package secretsmanager

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	"github.com/anarcher/kubernetes-external-secrets/pkg/backends"
)

// Client is the subset of the Secrets Manager API this backend uses.
type Client interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ClientFactory returns a client for the given role ARN. An empty ARN means
// the process's default credential chain.
type ClientFactory func(roleArn string) Client

// Backend fetches secret material from AWS Secrets Manager.
type Backend struct {
	newClient ClientFactory
}

// New creates a Secrets Manager backend from a resolved AWS config.
func New(cfg aws.Config) *Backend {
	return &Backend{
		newClient: func(roleArn string) Client {
			if roleArn == "" {
				return secretsmanager.NewFromConfig(cfg)
			}
			provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), roleArn)
			return secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
				o.Credentials = aws.NewCredentialsCache(provider)
			})
		},
	}
}

// NewWithClientFactory creates a backend with a custom client factory.
// Intended for tests.
func NewWithClientFactory(factory ClientFactory) *Backend {
	return &Backend{newClient: factory}
}

// GetSecretManifestData resolves every property mapping of the descriptor
// against Secrets Manager and returns the data keyed by destination name.
func (b *Backend) GetSecretManifestData(ctx context.Context, descriptor v1alpha1.SecretDescriptor) (map[string][]byte, error) {
	client := b.newClient(descriptor.RoleArn)

	data := make(map[string][]byte, len(descriptor.Properties))
	for _, property := range descriptor.Properties {
		out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(property.Key),
		})
		if err != nil {
			return nil, fmt.Errorf("fetching %q: %w", property.Key, err)
		}

		var raw []byte
		if out.SecretString != nil {
			raw = []byte(*out.SecretString)
		} else {
			raw = out.SecretBinary
		}

		if property.Property != "" {
			raw, err = backends.JSONProperty(raw, property.Property)
			if err != nil {
				return nil, fmt.Errorf("extracting property from %q: %w", property.Key, err)
			}
		}
		data[property.DataKey()] = raw
	}
	return data, nil
}
