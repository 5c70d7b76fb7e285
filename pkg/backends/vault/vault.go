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

// Package vault implements the HashiCorp Vault backend. Property keys are
// Vault paths; KV version 2 responses are unwrapped transparently.
package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	"github.com/anarcher/kubernetes-external-secrets/pkg/backends"
)

// Client is the subset of the Vault logical API this backend uses.
type Client interface {
	ReadWithContext(ctx context.Context, path string) (*api.Secret, error)
}

// Config holds configuration for creating a Vault backend.
type Config struct {
	Address string
	Token   string
	Timeout time.Duration
}

// Backend fetches secret material from Vault.
type Backend struct {
	client Client
}

// New creates a Vault backend from configuration.
func New(cfg Config) (*Backend, error) {
	apiConfig := api.DefaultConfig()
	if cfg.Address != "" {
		apiConfig.Address = cfg.Address
	}
	if cfg.Timeout > 0 {
		apiConfig.Timeout = cfg.Timeout
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("creating vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	return &Backend{client: client.Logical()}, nil
}

// NewWithClient creates a backend with a custom logical client.
// Intended for tests.
func NewWithClient(client Client) *Backend {
	return &Backend{client: client}
}

// GetSecretManifestData resolves every property mapping of the descriptor
// against Vault and returns the data keyed by destination name.
func (b *Backend) GetSecretManifestData(ctx context.Context, descriptor v1alpha1.SecretDescriptor) (map[string][]byte, error) {
	data := make(map[string][]byte, len(descriptor.Properties))
	for _, property := range descriptor.Properties {
		secret, err := b.client.ReadWithContext(ctx, property.Key)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", property.Key, err)
		}
		if secret == nil || secret.Data == nil {
			return nil, fmt.Errorf("no secret at path %q", property.Key)
		}

		fields := unwrapKVv2(secret.Data)
		raw, err := encodeField(fields, property)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", property.Key, err)
		}
		data[property.DataKey()] = raw
	}
	return data, nil
}

// unwrapKVv2 unwraps the nested "data" object of a KV version 2 read.
// KV version 1 responses are returned unchanged.
func unwrapKVv2(fields map[string]interface{}) map[string]interface{} {
	nested, ok := fields["data"].(map[string]interface{})
	if ok && fields["metadata"] != nil {
		return nested
	}
	return fields
}

func encodeField(fields map[string]interface{}, property v1alpha1.PropertyMapping) ([]byte, error) {
	if property.Property == "" {
		return backends.EncodeValue(fields)
	}
	value, ok := fields[property.Property]
	if !ok {
		return nil, fmt.Errorf("property %q not found", property.Property)
	}
	return backends.EncodeValue(value)
}
