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

// Package v1alpha1 defines the configuration schema for externally sourced
// secrets. A SecretDescriptor is an immutable value describing one Kubernetes
// Secret to keep synchronized with a backing secret store; it is loaded from
// configuration at startup and never mutated afterwards.
package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
)

// Backend identifiers understood by the backend registry.
const (
	BackendSecretsManager = "secretsManager"
	BackendSystemManager  = "systemManager"
	BackendVault          = "vault"
)

// Annotation keys used on remote objects.
const (
	// AnnotationLastSync is set on every managed Secret and holds the wall-clock
	// time of the last successful materialization as decimal epoch milliseconds.
	// It is the only scheduling state that survives a process restart.
	AnnotationLastSync = "externalsecrets.kubernetes-client.io/last-sync"

	// AnnotationPermittedKeyName is read from the Namespace housing a managed
	// Secret. Its value is a regular expression constraining which role ARNs may
	// be assumed for fetches performed on the namespace's behalf.
	AnnotationPermittedKeyName = "externalsecrets.kubernetes-client.io/permitted-key-name"
)

// PropertyMapping maps one backend-held value into the managed Secret's data.
type PropertyMapping struct {
	// Key is the identifier of the secret in the backend (name, path or ARN).
	Key string `json:"key"`

	// Property optionally selects a single field out of a structured backend
	// secret. When empty the whole secret value is used.
	Property string `json:"property,omitempty"`

	// Name is the data key in the managed Secret. Defaults to Key.
	Name string `json:"name,omitempty"`
}

// SecretDescriptor specifies one Secret to synchronize. Immutable after
// construction; ownership stays with whoever builds the poller.
type SecretDescriptor struct {
	// BackendType selects the backend implementation, e.g. "secretsManager".
	BackendType string `json:"backendType"`

	// Name is the metadata.name of the managed Secret.
	Name string `json:"name"`

	// Type is the Kubernetes Secret type. Defaults to Opaque when empty.
	Type corev1.SecretType `json:"type,omitempty"`

	// Properties lists the backend values to materialize, in order.
	Properties []PropertyMapping `json:"properties"`

	// RoleArn optionally names an external credential role the backend should
	// assume for this descriptor's fetches. Subject to the namespace's
	// permitted-key-name annotation.
	RoleArn string `json:"roleArn,omitempty"`
}

// SecretType returns the declared Secret type, defaulting to Opaque.
func (d *SecretDescriptor) SecretType() corev1.SecretType {
	if d.Type == "" {
		return corev1.SecretTypeOpaque
	}
	return d.Type
}

// DataKey returns the destination data key for a property mapping,
// falling back to the backend key when no name is set.
func (p *PropertyMapping) DataKey() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Key
}
