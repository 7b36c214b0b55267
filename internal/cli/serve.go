package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"emergency-guidance/internal/cache"
	"emergency-guidance/internal/config"
	"emergency-guidance/internal/logger"
	"emergency-guidance/internal/metrics"
	"emergency-guidance/internal/pipeline"
	"emergency-guidance/internal/provider"
	"emergency-guidance/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the guidance HTTP service",
	Run: func(cmd *cobra.Command, _ []string) {
		cfg := config.Load()
		log := logger.New("SERVICE", cfg.LogLevel)
		ctx := cmd.Context()

		store, err := cache.Open(cfg.CacheBackend, cfg.CachePath)
		if err != nil {
			exitErr("open cache", err)
		}
		defer store.Close() //nolint:errcheck // best-effort close on shutdown

		providers := buildProviders(ctx, cfg)
		orch := provider.NewOrchestrator(providers, cfg.LogLevel)
		log.Infof("startup", "providers configured: %v", orch.Providers())

		met := metrics.New()
		pipe := pipeline.New(cfg, store, orch, met)

		// Hot-reload runtime settings (log level, feature flags, TTL) on
		// config file changes. Watch failure is non-fatal: the service just
		// runs with the settings it started with.
		watchCtx, cancelWatch := context.WithCancel(ctx)
		defer cancelWatch()
		if err := config.Watch(watchCtx, config.DefaultConfigFile, pipe.ApplyRuntime); err != nil {
			log.Warnf("startup", "config watch disabled: %v", err)
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port),
			Handler:           server.New(cfg, pipe, orch, met),
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.Infof("startup", "listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("serve", "%v", err)
		}
	},
}
