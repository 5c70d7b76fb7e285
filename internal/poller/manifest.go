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

package poller

import (
	"context"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/clock"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	"github.com/anarcher/kubernetes-external-secrets/pkg/backends"
)

// Builder assembles the full desired-state manifest of a managed Secret.
// It is a pure transformation of backend output plus the current wall-clock
// time; it performs no retries and no writes.
type Builder struct {
	Backends *backends.Registry
	Clock    clock.PassiveClock
}

// Build resolves the descriptor's properties through its backend and returns
// the Secret manifest, stamped with the last-sync annotation at build time.
// Backend failures propagate unchanged to the caller.
func (b *Builder) Build(ctx context.Context, descriptor v1alpha1.SecretDescriptor, owner metav1.OwnerReference) (*corev1.Secret, error) {
	backend, err := b.Backends.Get(descriptor.BackendType)
	if err != nil {
		return nil, err
	}

	data, err := backend.GetSecretManifestData(ctx, descriptor)
	if err != nil {
		return nil, err
	}

	lastSync := strconv.FormatInt(b.Clock.Now().UnixMilli(), 10)
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Secret",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            descriptor.Name,
			OwnerReferences: []metav1.OwnerReference{owner},
			Annotations: map[string]string{
				v1alpha1.AnnotationLastSync: lastSync,
			},
		},
		Type: descriptor.SecretType(),
		Data: data,
	}, nil
}
