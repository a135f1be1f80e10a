package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"costline-hq/costline/pkg/cli"
	"costline-hq/costline/pkg/config"
	"costline-hq/costline/pkg/pricing"
	"costline-hq/costline/pkg/reconcile"
	"costline-hq/costline/pkg/server"
	"costline-hq/costline/pkg/takeoff"
	"costline-hq/costline/pkg/telemetry/logging"
	"costline-hq/costline/pkg/telemetry/metrics"
	"costline-hq/costline/pkg/webhook"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the costline estimator",
	Long: `Start the costline estimator with the specified configuration.

The server listens on the configured address, accepts change
notifications from the takeoff service, and serves priced estimates.

Examples:
  # Start with default config
  costline run

  # Start with custom config
  costline run --config /etc/costline/config.yaml

  # Override listen address
  costline run --listen 0.0.0.0:8090

  # Validate config without starting server
  costline run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Costline v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Pricing rules, optionally hot-reloaded
	logger.Info("loading pricing rules", "path", cfg.Pricing.RulesPath)
	manager, err := pricing.NewManager(pricing.ManagerConfig{
		Path:             cfg.Pricing.RulesPath,
		Watch:            cfg.Pricing.Watch,
		DebounceInterval: cfg.Pricing.DebounceInterval,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load pricing rules: %w", err))
	}
	defer manager.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Pricing.Watch {
		if err := manager.Start(ctx); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to start rules watcher: %w", err))
		}
	}
	fmt.Printf("✓ Pricing rules loaded (%d rules)\n", manager.Registry().Len())

	// Metrics
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	// Takeoff client
	client := takeoff.NewClient(takeoff.ClientConfig{
		BaseURL:             cfg.Takeoff.BaseURL,
		Timeout:             cfg.Takeoff.Timeout,
		MaxRetries:          cfg.Takeoff.MaxRetries,
		MaxIdleConns:        cfg.Takeoff.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Takeoff.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Takeoff.IdleConnTimeout,
	})
	client.OnRetry(collector.ObserveFetchRetry)

	// Reconciliation pipeline
	store := reconcile.NewStore()
	controller := reconcile.NewController(client, manager, store, collector, reconcile.ControllerConfig{
		FetchTimeout: cfg.Reconcile.FetchTimeout,
	})

	scheduler := reconcile.NewScheduler(controller, store, reconcile.ResyncConfig{
		Schedule: cfg.Reconcile.ResyncSchedule,
	})
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to start resync scheduler: %w", err))
	}
	defer scheduler.Stop()
	if next := scheduler.NextRun(); next != nil {
		logger.Debug("resync scheduler started", "next_run", next)
	}

	// HTTP server
	deps := server.Deps{
		Webhook:       webhook.NewHandler(controller),
		Store:         store,
		Controller:    controller,
		TakeoffHealth: client,
	}
	if cfg.Telemetry.Metrics.Enabled {
		deps.MetricsHandler = collector.Handler()
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
	}
	srv := server.NewServer(&cfg.Server, deps)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Webhook endpoint: http://%s/api/Conditions/PostConditionsChange\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}
		if err := controller.Shutdown(shutdownCtx); err != nil {
			slog.Error("reconciliation drain failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}
