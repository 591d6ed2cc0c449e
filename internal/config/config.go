// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/jobscout/internal/domain/location"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory task queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of source workers shared by all sessions.
	WorkerCount int `koanf:"worker_count"`

	// PerSourceConcurrency caps simultaneous outbound requests to one source.
	PerSourceConcurrency int `koanf:"per_source_concurrency"`

	// DedupeSize bounds the seen-set used for task and event idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// StrategyTimeout is the default timeout of one fallback strategy.
	StrategyTimeout time.Duration `koanf:"strategy_timeout"`

	// BrowserTimeout bounds a headless-browser render.
	BrowserTimeout time.Duration `koanf:"browser_timeout"`

	// SessionTimeout is the wall-clock ceiling of one search session.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// RetryDelay is an optional pause between tasks hitting the same source.
	RetryDelay time.Duration `koanf:"retry_delay"`

	// TitleSimilarity is the fuzzy title threshold used when merging postings.
	TitleSimilarity float64 `koanf:"title_similarity"`

	// TitleBlockPrefix is the blocking-key length used before fuzzy comparison.
	TitleBlockPrefix int `koanf:"title_block_prefix"`

	// ExperiencePenalty is the score lost per year of missing experience.
	ExperiencePenalty float64 `koanf:"experience_penalty"`

	// Weights maps scoring factor names to their weights.
	Weights map[string]float64 `koanf:"weights"`

	// SkillAliases maps canonical skill names to extra aliases.
	SkillAliases map[string][]string `koanf:"skill_aliases"`

	// Glossary adds or overrides local-language terms translated before
	// scoring, e.g. "tester oprogramowania": "software tester".
	Glossary map[string]string `koanf:"glossary"`

	// Locations replaces the built-in country and city table when set.
	Locations []location.Country `koanf:"locations"`

	// Sources lists the enabled source adapters, in invocation order.
	Sources []string `koanf:"sources"`

	// AcceptEmpty lists sources whose chains stop at the first strategy that
	// completes without error even when it found nothing.
	AcceptEmpty []string `koanf:"accept_empty"`

	// UserAgent is sent by the HTTP fetcher.
	UserAgent string `koanf:"user_agent"`

	// Store selects the session store: memory or redis.
	Store string `koanf:"store"`

	// RedisURL is used when Store is redis or PublishEvents is set.
	RedisURL string `koanf:"redis_url"`

	// RedisTTL is how long finished sessions stay in Redis.
	RedisTTL time.Duration `koanf:"redis_ttl"`

	// PublishEvents mirrors progress events to Redis pub/sub.
	PublishEvents bool `koanf:"publish_events"`

	// EventBuffer is the per-subscriber progress event buffer.
	EventBuffer int `koanf:"event_buffer"`

	// Defaults applied to search requests that omit a parameter.
	DefaultLocation      string `koanf:"default_location"`
	DefaultMinMatch      int    `koanf:"default_min_match"`
	DefaultMaxAgeDays    int    `koanf:"default_max_age_days"`
	DefaultIncludeRemote bool   `koanf:"default_include_remote"`
	DefaultScraperMode   string `koanf:"default_scraper_mode"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 4,
		PerSourceConcurrency: 2,
		DedupeSize:           50_000,
		StrategyTimeout:      20 * time.Second,
		BrowserTimeout:       45 * time.Second,
		SessionTimeout:       3 * time.Minute,
		RetryDelay:           0,
		TitleSimilarity:      0.8,
		TitleBlockPrefix:     4,
		ExperiencePenalty:    20,
		Weights: map[string]float64{
			"description_content":      0.35,
			"semantic_similarity":      0.25,
			"skills_match":             0.20,
			"keywords_match":           0.10,
			"experience_compatibility": 0.05,
			"role_relevance":           0.05,
		},
		SkillAliases:         map[string][]string{},
		Sources:              []string{"justjoinit", "nofluffjobs", "linkedin", "indeed", "pracuj"},
		AcceptEmpty:          []string{},
		UserAgent:            "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36",
		Store:                "memory",
		RedisURL:             "redis://localhost:6379/0",
		RedisTTL:             24 * time.Hour,
		PublishEvents:        false,
		EventBuffer:          64,
		DefaultLocation:      "Poland",
		DefaultMinMatch:      70,
		DefaultMaxAgeDays:    14,
		DefaultIncludeRemote: true,
		DefaultScraperMode:   "enhanced",
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TitleSimilarity <= 0 || c.TitleSimilarity > 1:
		return fmt.Errorf("%w: title_similarity must be in (0,1], got %v", ErrInvalidConfig, c.TitleSimilarity)
	case c.SessionTimeout <= 0:
		return fmt.Errorf("%w: session_timeout must be positive", ErrInvalidConfig)
	case c.StrategyTimeout <= 0:
		return fmt.Errorf("%w: strategy_timeout must be positive", ErrInvalidConfig)
	case c.Store != "memory" && c.Store != "redis":
		return fmt.Errorf("%w: store must be memory or redis, got %q", ErrInvalidConfig, c.Store)
	case c.DefaultMinMatch < 0 || c.DefaultMinMatch > 100:
		return fmt.Errorf("%w: default_min_match must be in [0,100]", ErrInvalidConfig)
	case c.DefaultMaxAgeDays < 0:
		return fmt.Errorf("%w: default_max_age_days must not be negative", ErrInvalidConfig)
	}
	for name, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("%w: weight %q is negative", ErrInvalidConfig, name)
		}
	}
	return nil
}
