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

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	"github.com/anarcher/kubernetes-external-secrets/internal/config"
	"github.com/anarcher/kubernetes-external-secrets/internal/poller"
	"github.com/anarcher/kubernetes-external-secrets/pkg/backends"
	"github.com/anarcher/kubernetes-external-secrets/pkg/backends/parameterstore"
	"github.com/anarcher/kubernetes-external-secrets/pkg/backends/secretsmanager"
	"github.com/anarcher/kubernetes-external-secrets/pkg/backends/vault"
	"github.com/anarcher/kubernetes-external-secrets/pkg/logger"
	"github.com/anarcher/kubernetes-external-secrets/shared/events"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

func main() {
	var configPath string
	var metricsAddr string
	var forcePoll bool
	flag.StringVar(&configPath, "config", "/etc/external-secrets/config.yaml",
		"Path to the poller configuration file.")
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080",
		"The address the metric endpoint binds to.")
	flag.BoolVar(&forcePoll, "force-poll", false,
		"Run an immediate synchronization cycle for every secret on startup, "+
			"ignoring persisted last-sync timestamps.")
	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	cfg, err := config.Load(configPath)
	if err != nil {
		setupLog.Error(err, "unable to load configuration", "path", configPath)
		os.Exit(1)
	}

	k8sClient, err := client.New(ctrl.GetConfigOrDie(), client.Options{Scheme: scheme})
	if err != nil {
		setupLog.Error(err, "unable to create cluster client")
		os.Exit(1)
	}

	ctx := ctrl.SetupSignalHandler()

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		setupLog.Error(err, "unable to initialize backends")
		os.Exit(1)
	}
	setupLog.Info("backends registered", "backends", registry.Names())

	bus := events.NewEventBus(ctrl.Log.WithName("events"))
	subscribeOutcomeLogging(bus)

	upserter := &poller.Upserter{
		Client:  k8sClient,
		Builder: &poller.Builder{Backends: registry, Clock: clock.RealClock{}},
	}

	pollers := make([]*poller.Poller, 0, len(cfg.Secrets))
	for _, descriptor := range cfg.Secrets {
		p := poller.New(poller.Options{
			Descriptor: descriptor,
			Namespace:  cfg.Namespace,
			Owner:      cfg.Owner,
			Interval:   cfg.PollInterval.Duration,
			Upserter:   upserter,
			Bus:        bus,
			Log:        ctrl.Log.WithName("poller"),
		})
		pollers = append(pollers, p)
		p.Start(ctx, forcePoll)
	}
	setupLog.Info("pollers started",
		"count", len(pollers),
		"interval", cfg.PollInterval.Duration.String(),
		"forcePoll", forcePoll,
	)

	metricsServer := &http.Server{
		Addr: metricsAddr,
		Handler: promhttp.HandlerFor(crmetrics.Registry, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		setupLog.Info("serving metrics", "addr", metricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			setupLog.Error(err, "metrics server failed")
		}
	}()

	<-ctx.Done()
	setupLog.Info("shutting down")
	for _, p := range pollers {
		p.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		setupLog.Error(err, "metrics server shutdown failed")
	}
}

// buildRegistry constructs only the backends the configuration references.
// The vault token comes from VAULT_TOKEN so it never appears in the file.
func buildRegistry(ctx context.Context, cfg *config.Config) (*backends.Registry, error) {
	registry := backends.NewRegistry()

	if cfg.UsesBackend(v1alpha1.BackendSecretsManager) || cfg.UsesBackend(v1alpha1.BackendSystemManager) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS configuration: %w", err)
		}
		registry.Register(v1alpha1.BackendSecretsManager, secretsmanager.New(awsCfg))
		registry.Register(v1alpha1.BackendSystemManager, parameterstore.New(awsCfg))
	}

	if cfg.UsesBackend(v1alpha1.BackendVault) {
		backend, err := vault.New(vault.Config{
			Address: cfg.Vault.Address,
			Token:   os.Getenv("VAULT_TOKEN"),
			Timeout: cfg.Vault.Timeout.Duration,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing vault backend: %w", err)
		}
		registry.Register(v1alpha1.BackendVault, backend)
	}

	return registry, nil
}

// subscribeOutcomeLogging attaches handlers that surface every cycle outcome
// in one place, independent of the per-poller cycle logs.
func subscribeOutcomeLogging(bus *events.EventBus) {
	log := ctrl.Log.WithName("sync")
	events.Subscribe[events.SecretSynced](bus, func(_ context.Context, e events.SecretSynced) error {
		log.Info("secret synchronized",
			logger.KeySecret, e.Secret.Name,
			logger.KeyNamespace, e.Secret.Namespace,
			logger.KeyBackend, e.Secret.Backend,
		)
		return nil
	})
	events.Subscribe[events.SecretSyncFailed](bus, func(_ context.Context, e events.SecretSyncFailed) error {
		log.Info("secret synchronization failed",
			logger.KeySecret, e.Secret.Name,
			logger.KeyNamespace, e.Secret.Namespace,
			logger.KeyBackend, e.Secret.Backend,
			"reason", e.Reason,
		)
		return nil
	})
}
