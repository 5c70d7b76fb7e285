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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBackendError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("AccessDeniedException")
		err := NewBackendError("secretsManager", "db-credentials", cause)
		expected := `backend "secretsManager" failed fetching data for secret "db-credentials": AccessDeniedException`
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("without cause", func(t *testing.T) {
		err := &BackendError{Backend: "vault", Secret: "api-token"}
		expected := `backend "vault" failed fetching data for secret "api-token"`
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewBackendError("vault", "api-token", cause)
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to match underlying cause")
		}
	})

	t.Run("IsBackendError", func(t *testing.T) {
		backendErr := NewBackendError("secretsManager", "test", nil)
		wrappedErr := fmt.Errorf("cycle failed: %w", backendErr)

		if !IsBackendError(backendErr) {
			t.Error("expected IsBackendError to return true for BackendError")
		}
		if !IsBackendError(wrappedErr) {
			t.Error("expected IsBackendError to return true for wrapped BackendError")
		}
		if IsBackendError(errors.New("random error")) {
			t.Error("expected IsBackendError to return false for non-BackendError")
		}
	})
}

func TestPermissionDeniedError(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		err := NewPermissionDeniedError("db-credentials", "team-a", "arn:aws:iam::123456789012:role/other")
		expected := `not allowed to fetch secret "db-credentials": namespace "team-a" does not permit role "arn:aws:iam::123456789012:role/other"`
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("IsPermissionDeniedError", func(t *testing.T) {
		deniedErr := NewPermissionDeniedError("s", "ns", "role")
		wrappedErr := fmt.Errorf("upsert failed: %w", deniedErr)

		if !IsPermissionDeniedError(deniedErr) {
			t.Error("expected IsPermissionDeniedError to return true for PermissionDeniedError")
		}
		if !IsPermissionDeniedError(wrappedErr) {
			t.Error("expected IsPermissionDeniedError to return true for wrapped PermissionDeniedError")
		}
		if IsPermissionDeniedError(errors.New("random error")) {
			t.Error("expected IsPermissionDeniedError to return false for non-PermissionDeniedError")
		}
	})
}

func TestRemoteReadError(t *testing.T) {
	t.Run("namespaced resource", func(t *testing.T) {
		cause := errors.New("etcdserver: request timed out")
		err := NewRemoteReadError("Secret", "db-credentials", "team-a", cause)
		expected := "reading Secret team-a/db-credentials failed: etcdserver: request timed out"
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("cluster-scoped resource", func(t *testing.T) {
		cause := errors.New("Unauthorized")
		err := NewRemoteReadError("Namespace", "team-a", "", cause)
		expected := "reading Namespace team-a failed: Unauthorized"
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewRemoteReadError("Namespace", "team-a", "", cause)
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to match underlying cause")
		}
	})

	t.Run("IsRemoteReadError", func(t *testing.T) {
		readErr := NewRemoteReadError("Secret", "s", "ns", errors.New("x"))
		if !IsRemoteReadError(readErr) {
			t.Error("expected IsRemoteReadError to return true for RemoteReadError")
		}
		if IsRemoteReadError(errors.New("random error")) {
			t.Error("expected IsRemoteReadError to return false for non-RemoteReadError")
		}
	})
}

func TestRemoteWriteError(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		cause := errors.New("Internal error occurred")
		err := NewRemoteWriteError("create", "db-credentials", "team-a", cause)
		expected := "create of secret team-a/db-credentials failed: Internal error occurred"
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Unwrap preserves the status error", func(t *testing.T) {
		cause := errors.New("Internal error occurred")
		err := NewRemoteWriteError("update", "db-credentials", "team-a", cause)
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to match underlying cause")
		}
	})

	t.Run("IsRemoteWriteError", func(t *testing.T) {
		writeErr := NewRemoteWriteError("create", "s", "ns", errors.New("x"))
		wrappedErr := fmt.Errorf("cycle failed: %w", writeErr)

		if !IsRemoteWriteError(wrappedErr) {
			t.Error("expected IsRemoteWriteError to return true for wrapped RemoteWriteError")
		}
		if IsRemoteWriteError(errors.New("random error")) {
			t.Error("expected IsRemoteWriteError to return false for non-RemoteWriteError")
		}
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := NewValidationError(AnnotationField("externalsecrets.kubernetes-client.io/permitted-key-name"), "[invalid", "error parsing regexp")
		expected := "validation error on annotation externalsecrets.kubernetes-client.io/permitted-key-name: error parsing regexp"
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("without field", func(t *testing.T) {
		err := &ValidationError{Message: "invalid configuration"}
		expected := "validation error: invalid configuration"
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("IsValidationError", func(t *testing.T) {
		validationErr := NewValidationError("properties", "[]", "at least one property is required")
		wrappedErr := fmt.Errorf("failed: %w", validationErr)

		if !IsValidationError(validationErr) {
			t.Error("expected IsValidationError to return true for ValidationError")
		}
		if !IsValidationError(wrappedErr) {
			t.Error("expected IsValidationError to return true for wrapped ValidationError")
		}
		if IsValidationError(errors.New("random error")) {
			t.Error("expected IsValidationError to return false for non-ValidationError")
		}
	})
}
