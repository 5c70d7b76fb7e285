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

// Package backends defines the pluggable secret backend contract and the
// registry used to dispatch descriptors to backend implementations by
// identifier. One implementation exists per backend type; all of them are
// registered at startup and looked up per synchronization cycle.
package backends

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
)

// Backend resolves a descriptor's property mappings into secret material.
// Implementations must be safe for concurrent use; one backend instance
// serves every poller of its type.
type Backend interface {
	// GetSecretManifestData fetches the backend values named by the
	// descriptor's properties and returns them keyed by destination data key.
	// Failures propagate unchanged; the caller decides retry policy.
	GetSecretManifestData(ctx context.Context, descriptor v1alpha1.SecretDescriptor) (map[string][]byte, error)
}

// Registry maps backend identifiers to implementations.
// It is thread-safe.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
	}
}

// Register adds a backend under the given identifier, replacing any
// previous registration.
func (r *Registry) Register(backendType string, backend Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[backendType] = backend
}

// Get returns the backend registered under the given identifier.
func (r *Registry) Get(backendType string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backend, ok := r.backends[backendType]
	if !ok {
		return nil, fmt.Errorf("unknown backend type %q (registered: %v)", backendType, r.names())
	}
	return backend, nil
}

// Names returns the registered backend identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
