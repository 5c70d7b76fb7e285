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

package events

// Sync event type constants.
const (
	SecretSyncedType     = "secret.synced"
	SecretSyncFailedType = "secret.sync_failed"
)

// SecretSynced is published after a synchronization cycle materializes the
// managed Secret successfully.
type SecretSynced struct {
	BaseEvent
	// Secret contains managed Secret metadata
	Secret SecretInfo
}

// Type returns the event type identifier.
func (e SecretSynced) Type() string {
	return SecretSyncedType
}

// NewSecretSynced creates a SecretSynced event.
func NewSecretSynced(secret SecretInfo) SecretSynced {
	return SecretSynced{
		BaseEvent: NewBaseEvent(SecretSyncedType),
		Secret:    secret,
	}
}

// SecretSyncFailed is published after a synchronization cycle fails. Failed
// cycles are rescheduled regardless, so this event is observational only.
type SecretSyncFailed struct {
	BaseEvent
	// Secret contains managed Secret metadata
	Secret SecretInfo
	// Reason is the error string of the failed cycle
	Reason string
}

// Type returns the event type identifier.
func (e SecretSyncFailed) Type() string {
	return SecretSyncFailedType
}

// NewSecretSyncFailed creates a SecretSyncFailed event.
func NewSecretSyncFailed(secret SecretInfo, reason string) SecretSyncFailed {
	return SecretSyncFailed{
		BaseEvent: NewBaseEvent(SecretSyncFailedType),
		Secret:    secret,
		Reason:    reason,
	}
}
