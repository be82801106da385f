// Package main wires the ecometl batch run end-to-end: configuration in,
// repository from the storage factory, pipeline driver out. This file keeps
// the CLI layer thin: it depends only on the storage-agnostic Repository
// interface and never imports database drivers or backend-specific packages
// directly.
package main

import (
	"context"
	"fmt"
	"strings"

	"ecometl/internal/config"
	"ecometl/internal/logging"
	"ecometl/internal/metrics"
	"ecometl/internal/metrics/datadog"
	"ecometl/internal/metrics/prompush"
	"ecometl/internal/pipeline"
	"ecometl/internal/resolve"
	"ecometl/internal/storage"
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}
)

// run builds the repository and pipeline from cfg and executes one batch run.
//
// The returned report is non-nil whenever the pipeline itself ran, even when
// it failed partway; callers can pull per-stage diagnostics from it.
func run(ctx context.Context, cfg config.Config, log *logging.Logger) (*pipeline.Report, error) {
	repo, err := newRepositoryFn(ctx, storageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}
	defer repo.Close()

	return pipeline.New(repo, pipelineConfig(cfg), log).Run(ctx)
}

// storageConfig maps the run configuration onto the storage factory config.
func storageConfig(cfg config.Config) storage.Config {
	return storage.Config{
		Kind:           cfg.Database.Kind,
		DSN:            cfg.Database.DSN,
		BatchSize:      cfg.Database.BatchSize,
		ConnectTimeout: cfg.Database.ConnectTimeout(),
	}
}

// pipelineConfig maps the run configuration onto the pipeline driver config.
func pipelineConfig(cfg config.Config) pipeline.Config {
	return pipeline.Config{
		Job: cfg.Job,
		Sources: pipeline.Sources{
			Customers: cfg.Sources.Customers,
			Products:  cfg.Sources.Products,
			Events:    cfg.Sources.Events,
		},
		ApplySchema: cfg.Database.ApplySchema,
		Resolver: resolve.Config{
			IntegrityThreshold: cfg.Resolver.Threshold(),
			TransactionIDSeed:  cfg.Resolver.TransactionIDSeed,
		},
		Loader: storage.LoaderConfig{
			MaxRetries: cfg.Database.MaxRetries,
			BaseDelay:  cfg.Database.RetryBaseDelay(),
		},
	}
}

// initMetrics installs the configured metrics backend and returns a flush
// function for the end of the run. A backend that fails to initialize
// downgrades to the discarding default with a warning instead of aborting
// the run.
func initMetrics(cfg config.Config, log *logging.Logger) func() {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(cfg.Metrics.Backend)) {
	case "", "none":
		return noop

	case "prometheus":
		b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			log.Warn("metrics backend init failed; metrics disabled", "backend", "prometheus", "error", err)
			return noop
		}
		metrics.SetBackend(b)
		log.Info("metrics enabled", "backend", "prometheus", "url", cfg.Metrics.PushgatewayURL)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  cfg.Metrics.Namespace,
			GlobalTags: cfg.Metrics.Tags,
		})
		if err != nil {
			log.Warn("metrics backend init failed; metrics disabled", "backend", "datadog", "error", err)
			return noop
		}
		metrics.SetBackend(b)
		log.Info("metrics enabled", "backend", "datadog", "addr", cfg.Metrics.DatadogAddr)

	default:
		log.Warn("unknown metrics backend; metrics disabled", "backend", cfg.Metrics.Backend)
		return noop
	}

	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "error", err)
		}
	}
}
