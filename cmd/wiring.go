package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/okian/jobscout/internal/adapters/fetch"
	"github.com/okian/jobscout/internal/adapters/mq/events"
	"github.com/okian/jobscout/internal/adapters/repository"
	"github.com/okian/jobscout/internal/adapters/source"
	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/internal/config"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
)

// wiring holds what buildService opened so it can be released.
type wiring struct {
	svc     *service.Service
	closers []func() error
}

func (w *wiring) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i]())
	}
	return errors.Join(errs...)
}

// buildService turns configuration into a ready (not started) Service.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*wiring, error) {
	w := &wiring{}

	tuning, err := service.TuningFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	adapters, err := buildAdapters(cfg)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithTuning(tuning),
		service.WithAdapters(adapters...),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithPerSourceConcurrency(cfg.PerSourceConcurrency),
		service.WithRetryDelay(cfg.RetryDelay),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithEventBuffer(cfg.EventBuffer),
	}

	var client *redis.Client
	if cfg.Store == "redis" || cfg.PublishEvents {
		client, err = repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, client.Close)
	}
	if cfg.Store == "redis" {
		opts = append(opts, service.WithStore(repository.NewRedisStore(client, repository.WithTTL(cfg.RedisTTL))))
		log.Info(ctx, "using redis session store", logger.Duration("ttl", cfg.RedisTTL))
	}
	if cfg.PublishEvents {
		opts = append(opts, service.WithMirror(events.NewRedisPublisher(client)))
		log.Info(ctx, "publishing progress events to redis")
	}

	w.svc = service.New(opts...)
	return w, nil
}

func buildAdapters(cfg *config.Config) ([]source.Adapter, error) {
	acceptEmpty := make(map[string]bool, len(cfg.AcceptEmpty))
	for _, name := range cfg.AcceptEmpty {
		acceptEmpty[name] = true
	}
	deps := source.Deps{
		HTTP: fetch.NewHTTPFetcher(fetch.WithUserAgent(cfg.UserAgent)),
		Browser: fetch.NewBrowserFetcher(
			fetch.WithBrowserTimeout(cfg.BrowserTimeout),
			fetch.WithBrowserUserAgent(cfg.UserAgent),
		),
		StrategyTimeout: cfg.StrategyTimeout,
		BrowserTimeout:  cfg.BrowserTimeout,
		AcceptEmpty:     acceptEmpty,
	}
	adapters, err := source.DefaultRegistry().Build(cfg.Sources, deps)
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}
	return adapters, nil
}

// defaultParams are the session parameters requests fall back to.
func defaultParams(cfg *config.Config) model.Parameters {
	return model.Parameters{
		Location:      cfg.DefaultLocation,
		MinMatch:      cfg.DefaultMinMatch,
		MaxAgeDays:    cfg.DefaultMaxAgeDays,
		IncludeRemote: cfg.DefaultIncludeRemote,
		ScraperMode:   model.ScraperMode(cfg.DefaultScraperMode),
	}
}

// loadConfig loads configuration, honouring an explicit --config path, and
// applies the log level.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path != "" {
		if err := os.Setenv(config.EnvConfigFile, path); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
