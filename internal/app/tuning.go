package service

import (
	"fmt"
	"time"

	"github.com/okian/jobscout/internal/config"
	"github.com/okian/jobscout/internal/domain/dedupe"
	"github.com/okian/jobscout/internal/domain/location"
	"github.com/okian/jobscout/internal/domain/profile"
	"github.com/okian/jobscout/internal/domain/scoring"
	"github.com/okian/jobscout/internal/domain/textnorm"
)

// Tuning is the immutable set of matching parameters a Service is built
// with. It is loaded once and passed explicitly to every component.
type Tuning struct {
	Weights           scoring.Weights
	Taxonomy          *profile.Taxonomy
	Locations         *location.Table
	Glossary          *textnorm.Glossary
	TitleSimilarity   float64
	TitleBlockPrefix  int
	ExperiencePenalty float64
	SessionTimeout    time.Duration
}

// DefaultTuning returns the built-in tables and thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		Weights:           scoring.DefaultWeights(),
		Taxonomy:          profile.DefaultTaxonomy(),
		Locations:         location.DefaultTable(),
		Glossary:          textnorm.DefaultGlossary(),
		TitleSimilarity:   0.8,
		TitleBlockPrefix:  4,
		ExperiencePenalty: 20,
		SessionTimeout:    3 * time.Minute,
	}
}

// TuningFromConfig builds a Tuning from loaded configuration.
func TuningFromConfig(cfg *config.Config) (Tuning, error) {
	t := DefaultTuning()

	if len(cfg.Weights) > 0 {
		w, err := scoring.NewWeights(cfg.Weights)
		if err != nil {
			return Tuning{}, fmt.Errorf("tuning: %w", err)
		}
		t.Weights = w
	}
	if len(cfg.SkillAliases) > 0 {
		t.Taxonomy = t.Taxonomy.WithAliases(cfg.SkillAliases)
	}
	if len(cfg.Glossary) > 0 {
		t.Glossary = t.Glossary.With(cfg.Glossary)
	}
	if len(cfg.Locations) > 0 {
		t.Locations = location.NewTable(cfg.Locations)
	}
	if cfg.TitleSimilarity > 0 {
		t.TitleSimilarity = cfg.TitleSimilarity
	}
	if cfg.TitleBlockPrefix > 0 {
		t.TitleBlockPrefix = cfg.TitleBlockPrefix
	}
	if cfg.ExperiencePenalty > 0 {
		t.ExperiencePenalty = cfg.ExperiencePenalty
	}
	if cfg.SessionTimeout > 0 {
		t.SessionTimeout = cfg.SessionTimeout
	}
	return t, nil
}

func (t Tuning) extractor() *profile.Extractor {
	return profile.New(profile.WithTaxonomy(t.Taxonomy))
}

func (t Tuning) expander() *location.Expander {
	return location.NewExpander(t.Locations)
}

func (t Tuning) merger() *dedupe.Merger {
	return dedupe.NewMerger(
		dedupe.WithTitleThreshold(t.TitleSimilarity),
		dedupe.WithBlockPrefix(t.TitleBlockPrefix),
		dedupe.WithBucketer(t.Locations.Bucket),
	)
}

func (t Tuning) scorer(cacheSize int) scoring.Scorer {
	m := scoring.NewMatcher(
		scoring.WithWeights(t.Weights),
		scoring.WithTaxonomy(t.Taxonomy),
		scoring.WithGlossary(t.Glossary),
		scoring.WithExperiencePenalty(t.ExperiencePenalty),
	)
	return scoring.NewCachedScorer(m, scoring.WithCacheSize(cacheSize))
}
