package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pk0202/graphmailer/internal/auth"
	"github.com/pk0202/graphmailer/internal/config"
	"github.com/pk0202/graphmailer/internal/graph"
	"github.com/pk0202/graphmailer/internal/instrumentation"
	"github.com/pk0202/graphmailer/internal/logging"
	"github.com/pk0202/graphmailer/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		listenAddr     string
		authMode       string
		tokenCacheFile string
		defaultSender  string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mail relay HTTP server",
		Long: `Start the HTTP server that accepts send-email requests and relays them
to Microsoft Graph.

Authentication:
  app mode (default):
    CLIENT_ID, CLIENT_SECRET and TENANT_ID env vars are required. Tokens are
    acquired with the client-credentials grant; no user interaction.

  delegated mode:
    CLIENT_ID and TENANT_ID env vars are required. The token cache must be
    seeded first with 'graphmailer login'; the serve path only reads the
    cache silently and refreshes via the stored refresh token. It never
    blocks a request waiting for a sign-in.

Callers authenticate with the X-Api-Key header when EMAIL_API_KEY is set;
an unset key leaves the endpoint open.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Flags override the environment when set.
			if cmd.Flags().Changed("listen-addr") {
				cfg.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("auth-mode") {
				cfg.Mode = config.AuthMode(authMode)
			}
			if cmd.Flags().Changed("token-cache-file") {
				cfg.TokenCacheFile = tokenCacheFile
			}
			if cmd.Flags().Changed("default-sender") {
				cfg.DefaultSender = defaultSender
			}
			if cmd.Flags().Changed("metrics-enabled") {
				cfg.MetricsEnabled = metricsEnabled
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return runServe(cfg, debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&listenAddr, "listen-addr", ":8080", "HTTP listen address. Can also use LISTEN_ADDR env var.")
	cmd.Flags().StringVar(&authMode, "auth-mode", string(config.AuthModeApp), "Authentication mode: app or delegated. Can also use AUTH_MODE env var.")
	cmd.Flags().StringVar(&tokenCacheFile, "token-cache-file", "token_cache.json", "Path of the persisted token cache. Can also use TOKEN_CACHE_FILE env var.")
	cmd.Flags().StringVar(&defaultSender, "default-sender", "", "Fallback sender mailbox for app mode. Can also use DEFAULT_SENDER env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cfg *config.Config, debugMode bool) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.New(os.Stderr, debugMode)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("auth_mode", string(cfg.Mode)),
		slog.String("authority", cfg.Authority()),
		slog.String("token_cache_file", cfg.TokenCacheFile))

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	cache := auth.NewCache(cfg.TokenCacheFile)

	var acquirer auth.TokenAcquirer
	switch cfg.Mode {
	case config.AuthModeDelegated:
		acquirer = auth.NewDelegatedAcquirer(cfg, cache, logger)
	default:
		acquirer = auth.NewClientCredentialsAcquirer(cfg, cache, logger)
	}

	relay := graph.NewClient(logger, graph.WithBaseURL(cfg.GraphBaseURL))
	apiServer := server.New(cfg, acquirer, relay, logger, provider.Metrics())

	errCh := make(chan error, 2)

	if cfg.MetricsEnabled && provider.HasPrometheusExporter() {
		metricsServer, err := server.NewMetricsServer(cfg.MetricsAddr, provider, logger)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				errCh <- err
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	go func() {
		if err := apiServer.Start(); err != nil {
			errCh <- err
		}
	}()

	// The API server drains on every exit path, including a metrics server
	// failure after it has already started listening.
	defer func() {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer drainCancel()
		if err := apiServer.Shutdown(drainCtx); err != nil {
			logger.Warn("api server shutdown failed", logging.Err(err))
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, draining")
	case err := <-errCh:
		return err
	}

	logger.Info("server stopped")
	return nil
}
