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

// Package logger provides structured logging utilities for the poller.
// It defines standard log fields and helper functions so that every
// synchronization cycle logs with a consistent shape.
package logger

import (
	"time"

	"github.com/go-logr/logr"
)

// Standard log field keys for consistent structured logging.
// Using consistent keys makes log aggregation and querying much easier.
const (
	// KeySecret identifies the managed Secret being synchronized (name)
	KeySecret = "secret"

	// KeyNamespace identifies the namespace of the managed Secret
	KeyNamespace = "namespace"

	// KeyBackend identifies the backend the secret data is fetched from
	KeyBackend = "backend"

	// KeyRoleArn identifies the external role requested for the fetch
	KeyRoleArn = "roleArn"

	// KeyOperation identifies the operation being performed (create, update, poll)
	KeyOperation = "operation"

	// KeyDuration records the time taken for an operation
	KeyDuration = "duration"

	// KeyNextPoll records when the next synchronization cycle is due
	KeyNextPoll = "nextPoll"
)

// Operation types for logging
const (
	OpCreate = "create"
	OpUpdate = "update"
)

// SyncLogger wraps a logr.Logger with timing for one synchronization cycle.
type SyncLogger struct {
	logr.Logger
	startTime time.Time
}

// NewSyncLogger creates a logger carrying the standard per-secret fields.
// Call it at the start of each synchronization cycle.
func NewSyncLogger(l logr.Logger, secret, namespace, backend string) *SyncLogger {
	return &SyncLogger{
		Logger: l.WithValues(
			KeySecret, secret,
			KeyNamespace, namespace,
			KeyBackend, backend,
		),
		startTime: time.Now(),
	}
}

// Duration returns the elapsed time since the logger was created.
func (s *SyncLogger) Duration() time.Duration {
	return time.Since(s.startTime)
}

// LogCycleStart logs the start of a synchronization cycle.
func (s *SyncLogger) LogCycleStart() {
	s.V(1).Info("starting sync cycle")
}

// LogCycleSuccess logs successful completion of a synchronization cycle.
func (s *SyncLogger) LogCycleSuccess() {
	s.Info("sync cycle completed", KeyDuration, s.Duration().String())
}

// LogCycleError logs a failed synchronization cycle.
func (s *SyncLogger) LogCycleError(err error) {
	s.Error(err, "sync cycle failed", KeyDuration, s.Duration().String())
}

// WithOperation adds operation context to an existing logger.
func WithOperation(l logr.Logger, op string) logr.Logger {
	return l.WithValues(KeyOperation, op)
}
