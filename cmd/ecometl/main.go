package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"ecometl/internal/config"
	"ecometl/internal/logging"

	// register all backends with the storage factory.
	// config specifies which to use but we build in support for all of them.
	_ "ecometl/internal/storage/all"
)

// main is the entry point for the ecometl binary. It loads the run config,
// optionally initializes a metrics backend, and executes one batch run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/ecometl.yaml", "run config path (.yaml or .json)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend override (none, prometheus, datadog)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL override")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	// Flags outrank the file and environment.
	if metricsBackendFlg != "" {
		cfg.Metrics.Backend = metricsBackendFlg
	}
	if pushGatewayURLFlg != "" {
		cfg.Metrics.PushgatewayURL = pushGatewayURLFlg
	}

	hasError := false
	for _, iss := range cfg.Lint() {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid: %v", cfgPath)
	}
	if validate {
		fmt.Printf("configuration is valid: %v\n", cfgPath)
		return
	}

	log, err := logging.New(cfg.Logging.Mode)
	if err != nil {
		fatalf("init logging: %v", err)
	}
	defer log.Sync()

	flush := initMetrics(cfg, log)
	defer flush()

	rep, err := run(context.Background(), cfg, log)
	if err != nil {
		if rep != nil {
			log.Error("run failed", "run_id", rep.RunID, "stage", rep.FailedAt.String(), "error", err)
		} else {
			log.Error("run failed", "error", err)
		}
		flush()
		log.Sync()
		os.Exit(1)
	}

	log.Info("done",
		"run_id", rep.RunID,
		"rows_loaded", rep.RowsLoaded(),
		"elapsed", rep.Elapsed.Truncate(time.Millisecond).String(),
	)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
