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

// Package poller periodically synchronizes one externally sourced secret into
// the cluster. Each Poller owns the lifecycle for a single descriptor: it
// fetches the secret material through a backend, materializes it as a managed
// Secret, and persists a last-sync timestamp on that Secret so restarts
// resume the previous period instead of re-fetching immediately.
package poller

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/clock"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	"github.com/anarcher/kubernetes-external-secrets/pkg/logger"
	"github.com/anarcher/kubernetes-external-secrets/pkg/metrics"
	"github.com/anarcher/kubernetes-external-secrets/shared/events"
	infraerrors "github.com/anarcher/kubernetes-external-secrets/shared/infrastructure/errors"
)

// Options configure a Poller. All collaborators are injected; the Poller
// itself holds no state beyond the pending timer handle.
type Options struct {
	// Descriptor specifies the secret to synchronize. Never mutated.
	Descriptor v1alpha1.SecretDescriptor

	// Namespace is where the managed Secret lives.
	Namespace string

	// Owner is embedded verbatim into every manifest, establishing
	// garbage-collection linkage to the controlling parent resource.
	Owner metav1.OwnerReference

	// Interval is the synchronization period.
	Interval time.Duration

	// Upserter applies desired state to the cluster.
	Upserter *Upserter

	// Bus optionally receives a sync outcome event after every cycle.
	Bus *events.EventBus

	// Log receives cycle start/end and error events.
	Log logr.Logger

	// Clock drives scheduling; tests inject a fake.
	Clock clock.WithDelayedExecution
}

// Poller runs the periodic synchronization loop for one secret.
//
// Scheduling is self-correcting: the next delay is derived from the last-sync
// annotation persisted on the managed Secret, not from in-process memory, so
// a fleet of restarted pollers does not stampede the backend.
type Poller struct {
	opts Options

	mu    sync.Mutex
	timer clock.Timer // non-nil while a timer is pending
}

// New creates a Poller. It does nothing until Start is called.
func New(opts Options) *Poller {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Poller{opts: opts}
}

// Start begins the synchronization lifecycle. It is a no-op while a timer is
// already pending. With forcePoll a cycle runs immediately; otherwise the
// remaining wait is recomputed from the managed Secret's last-sync
// annotation. A freshness-check read failure other than "not found" is
// logged and leaves the poller idle, so a store that is failing reads at
// startup is not hammered in a tight loop; restarting the poller retries
// the check.
func (p *Poller) Start(ctx context.Context, forcePoll bool) {
	p.mu.Lock()
	if p.timer != nil {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	if forcePoll {
		p.runCycle(ctx)
		return
	}

	secret := &corev1.Secret{}
	key := types.NamespacedName{Name: p.opts.Descriptor.Name, Namespace: p.opts.Namespace}
	err := p.opts.Upserter.Client.Get(ctx, key, secret)
	switch {
	case apierrors.IsNotFound(err):
		p.runCycle(ctx)
	case err != nil:
		readErr := infraerrors.NewRemoteReadError("Secret", key.Name, key.Namespace, err)
		p.opts.Log.Error(readErr, "freshness check failed, poller left idle",
			logger.KeySecret, key.Name, logger.KeyNamespace, key.Namespace)
	default:
		p.arm(ctx, nextSyncDelay(secret, p.opts.Interval, p.opts.Clock.Now()))
	}
}

// Stop cancels any pending timer. Idempotent. A cycle already in flight
// cannot be interrupted and will still arm a new timer when it completes.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// runCycle performs one synchronization attempt and unconditionally schedules
// the next one. Failures are logged and metered, never propagated: a failed
// cycle must not stop the poller.
func (p *Poller) runCycle(ctx context.Context) {
	d := p.opts.Descriptor
	log := logger.NewSyncLogger(p.opts.Log, d.Name, p.opts.Namespace, d.BackendType)
	if d.RoleArn != "" {
		log.Logger = log.WithValues(logger.KeyRoleArn, d.RoleArn)
	}
	log.LogCycleStart()

	err := p.opts.Upserter.Upsert(ctx, d, p.opts.Namespace, p.opts.Owner)
	if err != nil {
		log.LogCycleError(err)
	} else {
		log.LogCycleSuccess()
	}

	p.observe(ctx, err)
	p.arm(ctx, p.opts.Interval)
}

// observe reports the cycle outcome to the metrics and event collaborators.
func (p *Poller) observe(ctx context.Context, err error) {
	d := p.opts.Descriptor
	metrics.ObserveSyncCall(d.Name, p.opts.Namespace, d.BackendType, err == nil)
	if err == nil {
		metrics.SetLastSyncTime(d.Name, p.opts.Namespace, float64(p.opts.Clock.Now().Unix()))
	}

	if p.opts.Bus == nil {
		return
	}
	info := events.SecretInfo{Name: d.Name, Namespace: p.opts.Namespace, Backend: d.BackendType}
	if err != nil {
		_ = p.opts.Bus.Publish(ctx, events.NewSecretSyncFailed(info, err.Error()))
	} else {
		_ = p.opts.Bus.Publish(ctx, events.NewSecretSynced(info))
	}
}

// arm schedules the next cycle, replacing any pending timer so the poller
// never holds two live timers.
func (p *Poller) arm(ctx context.Context, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = p.opts.Clock.AfterFunc(delay, func() {
		// The cycle runs on its own goroutine; timer callbacks must not
		// block or re-enter the timer mutex.
		go p.fire(ctx)
	})

	d := p.opts.Descriptor
	p.opts.Log.V(1).Info("next sync cycle scheduled",
		logger.KeySecret, d.Name,
		logger.KeyNamespace, p.opts.Namespace,
		logger.KeyNextPoll, delay.String(),
	)
}

// fire is the timer callback: clear the handle, then run the cycle.
func (p *Poller) fire(ctx context.Context) {
	p.mu.Lock()
	p.timer = nil
	p.mu.Unlock()
	p.runCycle(ctx)
}

// nextSyncDelay computes how long to wait before the next cycle given the
// last-sync annotation persisted on the managed Secret. An absent or
// unparseable annotation counts as epoch zero, which schedules an immediate
// cycle.
func nextSyncDelay(secret *corev1.Secret, interval time.Duration, now time.Time) time.Duration {
	var lastSync int64
	if value, ok := secret.Annotations[v1alpha1.AnnotationLastSync]; ok {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			lastSync = parsed
		}
	}

	elapsed := time.Duration(now.UnixMilli()-lastSync) * time.Millisecond
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}
