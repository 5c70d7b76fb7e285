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

// Package utils provides shared fixtures for tests across the module.
package utils

import (
	"strconv"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
)

// NewTestDescriptor creates a descriptor backed by AWS Secrets Manager.
func NewTestDescriptor(name string) v1alpha1.SecretDescriptor {
	return v1alpha1.SecretDescriptor{
		BackendType: v1alpha1.BackendSecretsManager,
		Name:        name,
		Properties: []v1alpha1.PropertyMapping{
			{Key: "prod/" + name},
		},
	}
}

// NewTestDescriptorWithRole creates a descriptor that assumes a role for
// its backend fetches.
func NewTestDescriptorWithRole(name, roleArn string) v1alpha1.SecretDescriptor {
	descriptor := NewTestDescriptor(name)
	descriptor.RoleArn = roleArn
	return descriptor
}

// NewTestOwner creates the owner reference embedded into managed Secrets.
func NewTestOwner(name string) metav1.OwnerReference {
	return metav1.OwnerReference{
		APIVersion: "externalsecrets.kubernetes-client.io/v1alpha1",
		Kind:       "ExternalSecret",
		Name:       name,
		UID:        "7c4e81ab-3a5b-4c8f-a1cd-8f4f3e1a9b12",
	}
}

// NewTestNamespace creates a Namespace. A non-empty permittedKeyName regex
// is set as the permitted-key-name annotation.
func NewTestNamespace(name, permittedKeyName string) *corev1.Namespace {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	if permittedKeyName != "" {
		ns.Annotations = map[string]string{
			v1alpha1.AnnotationPermittedKeyName: permittedKeyName,
		}
	}
	return ns
}

// NewTestSecret creates a managed Secret carrying a last-sync annotation.
func NewTestSecret(name, namespace string, lastSync time.Time) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Annotations: map[string]string{
				v1alpha1.AnnotationLastSync: strconv.FormatInt(lastSync.UnixMilli(), 10),
			},
		},
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{"password": []byte("hunter2")},
	}
}
