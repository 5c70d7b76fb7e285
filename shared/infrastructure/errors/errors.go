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

// Package errors provides domain-specific error types for the poller.
// These errors distinguish the failure modes of a synchronization cycle
// (backend fetch, permission check, remote store reads and writes) so that
// callers can log and meter them appropriately.
package errors

import (
	"errors"
	"fmt"
)

// BackendError indicates the backend fetch for a descriptor failed and the
// secret's property data is unavailable. The underlying backend error is
// preserved as the cause.
type BackendError struct {
	Backend string // Backend identifier, e.g. "secretsManager"
	Secret  string // Name of the secret being synchronized
	Cause   error  // The underlying error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend %q failed fetching data for secret %q: %v", e.Backend, e.Secret, e.Cause)
	}
	return fmt.Sprintf("backend %q failed fetching data for secret %q", e.Backend, e.Secret)
}

// Unwrap returns the underlying cause for errors.As/Is support.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// NewBackendError creates a BackendError.
func NewBackendError(backend, secret string, cause error) *BackendError {
	return &BackendError{
		Backend: backend,
		Secret:  secret,
		Cause:   cause,
	}
}

// IsBackendError returns true if the error is a BackendError.
func IsBackendError(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr)
}

// PermissionDeniedError indicates role assumption is not allowed for the
// namespace housing the managed Secret. The backend fetch was never attempted.
type PermissionDeniedError struct {
	Secret    string // Name of the secret being synchronized
	Namespace string // Namespace housing the managed Secret
	RoleArn   string // The role that was requested
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf(
		"not allowed to fetch secret %q: namespace %q does not permit role %q",
		e.Secret, e.Namespace, e.RoleArn,
	)
}

// NewPermissionDeniedError creates a PermissionDeniedError.
func NewPermissionDeniedError(secret, namespace, roleArn string) *PermissionDeniedError {
	return &PermissionDeniedError{
		Secret:    secret,
		Namespace: namespace,
		RoleArn:   roleArn,
	}
}

// IsPermissionDeniedError returns true if the error is a PermissionDeniedError.
func IsPermissionDeniedError(err error) bool {
	var deniedErr *PermissionDeniedError
	return errors.As(err, &deniedErr)
}

// RemoteReadError indicates a lookup against the cluster API failed for a
// reason other than "not found".
type RemoteReadError struct {
	Resource  string // e.g. "Namespace", "Secret"
	Name      string // Name of the object being read
	Namespace string // Namespace (empty for cluster-scoped)
	Cause     error  // The underlying error
}

func (e *RemoteReadError) Error() string {
	if e.Namespace != "" {
		return fmt.Sprintf("reading %s %s/%s failed: %v", e.Resource, e.Namespace, e.Name, e.Cause)
	}
	return fmt.Sprintf("reading %s %s failed: %v", e.Resource, e.Name, e.Cause)
}

// Unwrap returns the underlying cause for errors.As/Is support.
func (e *RemoteReadError) Unwrap() error {
	return e.Cause
}

// NewRemoteReadError creates a RemoteReadError.
func NewRemoteReadError(resource, name, namespace string, cause error) *RemoteReadError {
	return &RemoteReadError{
		Resource:  resource,
		Name:      name,
		Namespace: namespace,
		Cause:     cause,
	}
}

// IsRemoteReadError returns true if the error is a RemoteReadError.
func IsRemoteReadError(err error) bool {
	var readErr *RemoteReadError
	return errors.As(err, &readErr)
}

// RemoteWriteError indicates a create or replace of the managed Secret failed
// for a reason other than the expected already-exists conflict.
type RemoteWriteError struct {
	Operation string // "create" or "update"
	Name      string // Name of the managed Secret
	Namespace string // Namespace of the managed Secret
	Cause     error  // The underlying status error from the cluster API
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("%s of secret %s/%s failed: %v", e.Operation, e.Namespace, e.Name, e.Cause)
}

// Unwrap returns the underlying cause for errors.As/Is support.
func (e *RemoteWriteError) Unwrap() error {
	return e.Cause
}

// NewRemoteWriteError creates a RemoteWriteError.
func NewRemoteWriteError(operation, name, namespace string, cause error) *RemoteWriteError {
	return &RemoteWriteError{
		Operation: operation,
		Name:      name,
		Namespace: namespace,
		Cause:     cause,
	}
}

// IsRemoteWriteError returns true if the error is a RemoteWriteError.
func IsRemoteWriteError(err error) bool {
	var writeErr *RemoteWriteError
	return errors.As(err, &writeErr)
}

// ValidationError indicates invalid configuration or input, for example a
// malformed permitted-key-name regular expression on a namespace. This is a
// permanent error - retrying won't help without user correction.
type ValidationError struct {
	Field   string // The field or annotation that failed validation
	Value   string // The invalid value (may be redacted for sensitive data)
	Message string // Why validation failed
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AnnotationField formats an annotation key as a ValidationError field name.
func AnnotationField(key string) string {
	return "annotation " + key
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
