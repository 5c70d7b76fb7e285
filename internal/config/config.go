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

// Package config loads and validates the poller configuration file.
//
// The file is YAML with Kubernetes-style field names. A minimal example:
//
//	pollInterval: 10s
//	namespace: team-a
//	owner:
//	  apiVersion: externalsecrets.kubernetes-client.io/v1alpha1
//	  kind: ExternalSecret
//	  name: db-credentials
//	  uid: 7c4e81ab-3a5b-4c8f-a1cd-8f4f3e1a9b12
//	secrets:
//	  - backendType: secretsManager
//	    name: db-credentials
//	    properties:
//	      - key: prod/db
package config

import (
	"fmt"
	"os"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	infraerrors "github.com/anarcher/kubernetes-external-secrets/shared/infrastructure/errors"
)

// DefaultPollInterval is used when the file does not set pollInterval.
const DefaultPollInterval = 10 * time.Second

// VaultConfig carries the connection settings for the Vault backend. The
// token is deliberately not part of the file; it is read from the VAULT_TOKEN
// environment variable so secrets never land in a ConfigMap.
type VaultConfig struct {
	// Address of the Vault server, e.g. "https://vault.internal:8200".
	Address string `json:"address,omitempty"`

	// Timeout for Vault requests. Zero means the client default.
	Timeout metav1.Duration `json:"timeout,omitempty"`
}

// Config is the full poller configuration.
type Config struct {
	// PollInterval is the synchronization period shared by all descriptors.
	PollInterval metav1.Duration `json:"pollInterval,omitempty"`

	// Namespace where all managed Secrets are created.
	Namespace string `json:"namespace"`

	// Owner is embedded into every managed Secret so cluster garbage
	// collection ties their lifetime to the controlling resource.
	Owner metav1.OwnerReference `json:"owner"`

	// Secrets lists the descriptors to keep synchronized.
	Secrets []v1alpha1.SecretDescriptor `json:"secrets"`

	// Vault configures the Vault backend. Required only when a descriptor
	// selects the vault backend type.
	Vault VaultConfig `json:"vault,omitempty"`
}

// Load reads, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PollInterval.Duration == 0 {
		c.PollInterval.Duration = DefaultPollInterval
	}
}

// Validate checks the configuration for completeness. Field paths in the
// returned errors use the YAML names so they can be matched to the file.
func (c *Config) Validate() error {
	if c.PollInterval.Duration < 0 {
		return infraerrors.NewValidationError("pollInterval", c.PollInterval.Duration.String(), "must be positive")
	}
	if c.Namespace == "" {
		return infraerrors.NewValidationError("namespace", "", "is required")
	}
	if c.Owner.APIVersion == "" || c.Owner.Kind == "" || c.Owner.Name == "" || c.Owner.UID == "" {
		return infraerrors.NewValidationError("owner", c.Owner.Name,
			"apiVersion, kind, name and uid are all required")
	}
	if len(c.Secrets) == 0 {
		return infraerrors.NewValidationError("secrets", "", "at least one descriptor is required")
	}

	seen := make(map[string]struct{}, len(c.Secrets))
	needsVault := false
	for i, d := range c.Secrets {
		field := fmt.Sprintf("secrets[%d]", i)
		if d.Name == "" {
			return infraerrors.NewValidationError(field+".name", "", "is required")
		}
		if _, dup := seen[d.Name]; dup {
			return infraerrors.NewValidationError(field+".name", d.Name, "duplicates an earlier descriptor")
		}
		seen[d.Name] = struct{}{}

		switch d.BackendType {
		case v1alpha1.BackendSecretsManager, v1alpha1.BackendSystemManager:
		case v1alpha1.BackendVault:
			needsVault = true
		default:
			return infraerrors.NewValidationError(field+".backendType", d.BackendType,
				fmt.Sprintf("must be one of %q, %q, %q",
					v1alpha1.BackendSecretsManager, v1alpha1.BackendSystemManager, v1alpha1.BackendVault))
		}

		if len(d.Properties) == 0 {
			return infraerrors.NewValidationError(field+".properties", "", "at least one mapping is required")
		}
		for j, p := range d.Properties {
			if p.Key == "" {
				return infraerrors.NewValidationError(
					fmt.Sprintf("%s.properties[%d].key", field, j), "", "is required")
			}
		}
	}

	if needsVault && c.Vault.Address == "" {
		return infraerrors.NewValidationError("vault.address", "",
			"is required when a descriptor uses the vault backend")
	}
	return nil
}

// UsesBackend reports whether any descriptor selects the given backend type.
func (c *Config) UsesBackend(backendType string) bool {
	for _, d := range c.Secrets {
		if d.BackendType == backendType {
			return true
		}
	}
	return false
}
