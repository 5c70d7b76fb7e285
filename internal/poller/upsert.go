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

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	"github.com/anarcher/kubernetes-external-secrets/internal/permissions"
	"github.com/anarcher/kubernetes-external-secrets/pkg/logger"
	infraerrors "github.com/anarcher/kubernetes-external-secrets/shared/infrastructure/errors"
)

// Upserter applies the desired state of one managed Secret to the cluster
// with create-or-replace semantics.
type Upserter struct {
	Client  client.Client
	Builder *Builder
}

// Upsert materializes the descriptor as a Secret in the given namespace.
//
// The namespace's annotations are read first so that role assumption is
// denied before the backend is ever contacted. The write itself is an
// unconditional create; an already-exists conflict falls back to a wholesale
// replace of the existing object. Racing a concurrent first creation costs
// one extra round trip instead of a distributed lock, and a near-simultaneous
// replace is a non-corrupting last-write-wins.
func (u *Upserter) Upsert(ctx context.Context, descriptor v1alpha1.SecretDescriptor, namespace string, owner metav1.OwnerReference) error {
	ns := &corev1.Namespace{}
	if err := u.Client.Get(ctx, types.NamespacedName{Name: namespace}, ns); err != nil {
		return infraerrors.NewRemoteReadError("Namespace", namespace, "", err)
	}

	decision, err := permissions.Evaluate(ns.Annotations, descriptor.Name, namespace, descriptor.RoleArn)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return infraerrors.NewPermissionDeniedError(descriptor.Name, namespace, descriptor.RoleArn)
	}

	manifest, err := u.Builder.Build(ctx, descriptor, owner)
	if err != nil {
		return infraerrors.NewBackendError(descriptor.BackendType, descriptor.Name, err)
	}
	manifest.Namespace = namespace

	if err := u.Client.Create(ctx, manifest); err == nil {
		return nil
	} else if !apierrors.IsAlreadyExists(err) {
		return infraerrors.NewRemoteWriteError(logger.OpCreate, descriptor.Name, namespace, err)
	}

	// The object beat us to existence; replace it wholesale. The read exists
	// only to satisfy optimistic concurrency on the update.
	existing := &corev1.Secret{}
	if err := u.Client.Get(ctx, client.ObjectKeyFromObject(manifest), existing); err != nil {
		return infraerrors.NewRemoteWriteError(logger.OpUpdate, descriptor.Name, namespace, err)
	}
	manifest.ResourceVersion = existing.ResourceVersion
	if err := u.Client.Update(ctx, manifest); err != nil {
		return infraerrors.NewRemoteWriteError(logger.OpUpdate, descriptor.Name, namespace, err)
	}
	return nil
}
