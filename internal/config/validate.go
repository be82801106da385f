// This file adds a lightweight linter/validator for Config values. Lint
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests; Validate
// reduces them to a hard error.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not
	// block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "database.kind",
// "sources.customers"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate reduces Lint to a hard error: it joins every error-severity
// issue and ignores warnings. Nil means the config is runnable.
func (c Config) Validate() error {
	var errs []error
	for _, iss := range c.Lint() {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}

// Lint performs static validation of a Config. It does not mutate the
// config; callers decide whether warnings are fatal.
func (c Config) Lint() []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  `job is empty; runs will be labeled "ecometl"`,
		})
	}

	issues = append(issues, lintDatabase(c.Database)...)
	issues = append(issues, lintSources(c.Sources)...)
	issues = append(issues, lintResolver(c.Resolver)...)
	issues = append(issues, lintLogging(c.Logging)...)
	issues = append(issues, lintMetrics(c.Metrics)...)

	return issues
}

func lintDatabase(d Database) []Issue {
	var issues []Issue

	if strings.TrimSpace(d.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.kind",
			Message:  "database.kind must not be empty",
		})
	} else {
		// Unknown kinds are warnings for forward compatibility; the storage
		// factory gives the hard error at connect time.
		known := map[string]struct{}{
			"postgres": {},
			"sqlite":   {},
			"mssql":    {},
			"mysql":    {},
		}
		if _, ok := known[d.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "database.kind",
				Message:  fmt.Sprintf("unknown database kind %q; ensure a matching backend is registered", d.Kind),
			})
		}
	}

	if strings.TrimSpace(d.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.dsn",
			Message:  "database.dsn must not be empty",
		})
	}
	if d.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	if d.ConnectTimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.connect_timeout_seconds",
			Message:  "connect_timeout_seconds must not be negative",
		})
	}
	if d.RetryBaseDelayMS < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.retry_base_delay_ms",
			Message:  "retry_base_delay_ms must not be negative",
		})
	}

	return issues
}

func lintSources(s Sources) []Issue {
	var issues []Issue
	for _, src := range []struct{ path, value string }{
		{"sources.customers", s.Customers},
		{"sources.products", s.Products},
		{"sources.events", s.Events},
	} {
		if strings.TrimSpace(src.value) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     src.path,
				Message:  "source path must not be empty",
			})
		}
	}
	return issues
}

func lintResolver(r Resolver) []Issue {
	var issues []Issue
	if r.IntegrityThreshold != nil {
		if v := *r.IntegrityThreshold; v < 0 || v > 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "resolver.integrity_threshold",
				Message:  fmt.Sprintf("integrity_threshold=%v; must be a rate within [0,1]", v),
			})
		}
	}
	if r.TransactionIDSeed < 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "resolver.transaction_id_seed",
			Message:  "negative seed generates non-positive transaction ids",
		})
	}
	return issues
}

func lintLogging(l Logging) []Issue {
	switch strings.ToLower(strings.TrimSpace(l.Mode)) {
	case "", "dev", "development", "prod", "production":
		return nil
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "logging.mode",
			Message:  fmt.Sprintf("unknown logging mode %q; falling back to dev", l.Mode),
		}}
	}
}

func lintMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(strings.TrimSpace(m.Backend)) {
	case "", "none":
	case "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires datadog_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be discarded", m.Backend),
		})
	}
	return issues
}
