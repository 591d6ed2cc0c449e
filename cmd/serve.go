package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/jobscout/internal/adapters/http/api"
	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// HTTP server timeout constants. Writes are unbounded per request because
// the event stream stays open for a whole session.
const (
	readTimeout            = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func serveCmd() *cobra.Command {
	var cfgPath, addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfgPath, addr)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "YAML config file (overrides JOBSCOUT_CONFIG)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the addr setting)")
	return cmd
}

func serve(parent context.Context, cfgPath, addr string) error {
	if parent == nil {
		parent = context.Background()
	}
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Get()

	cfg, err := loadConfig(ctx, cfgPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	w, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Error(ctx, "failed to release resources", logger.Error(err))
		}
	}()

	svc := w.svc
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "service shutdown failed", logger.Error(err))
		}
	}()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc,
		api.WithDefaults(defaultParams(cfg)),
		api.WithLogger(log.Named("api")),
	)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater periodically records process level metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically refreshes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics reads service stats; GetStats refreshes the queue
// gauge itself.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
