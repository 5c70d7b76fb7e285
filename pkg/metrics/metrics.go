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

// Package metrics provides Prometheus metrics for the external secrets poller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Status labels for metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// SyncCallsTotal counts synchronization cycles per managed secret.
	SyncCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kubernetes_external_secrets",
			Subsystem: "poller",
			Name:      "sync_calls_total",
			Help:      "Total number of synchronization cycles",
		},
		[]string{"name", "namespace", "backend", "status"},
	)

	// LastSyncStatusGauge tracks the outcome of the most recent cycle.
	// Value is 1 for success, 0 for error.
	LastSyncStatusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kubernetes_external_secrets",
			Subsystem: "poller",
			Name:      "last_sync_status",
			Help:      "Outcome of the most recent synchronization cycle (1=success, 0=error)",
		},
		[]string{"name", "namespace"},
	)

	// LastSyncTimestampGauge tracks when a secret was last successfully synchronized.
	LastSyncTimestampGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kubernetes_external_secrets",
			Subsystem: "poller",
			Name:      "last_sync_timestamp_seconds",
			Help:      "Unix time of the last successful synchronization",
		},
		[]string{"name", "namespace"},
	)
)

func init() {
	// Register all metrics with the controller-runtime metrics registry
	metrics.Registry.MustRegister(
		SyncCallsTotal,
		LastSyncStatusGauge,
		LastSyncTimestampGauge,
	)
}

// ObserveSyncCall records the outcome of one synchronization cycle.
func ObserveSyncCall(name, namespace, backend string, success bool) {
	status := StatusError
	val := 0.0
	if success {
		status = StatusSuccess
		val = 1.0
	}
	SyncCallsTotal.WithLabelValues(name, namespace, backend, status).Inc()
	LastSyncStatusGauge.WithLabelValues(name, namespace).Set(val)
}

// SetLastSyncTime records the wall-clock time of a successful synchronization.
func SetLastSyncTime(name, namespace string, unixSeconds float64) {
	LastSyncTimestampGauge.WithLabelValues(name, namespace).Set(unixSeconds)
}
