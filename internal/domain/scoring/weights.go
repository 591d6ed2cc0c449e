package scoring

import (
	"fmt"
	"maps"
	"sort"
)

// Factor names, also used as sub-score keys.
const (
	FactorDescription = "description_content"
	FactorSemantic    = "semantic_similarity"
	FactorSkills      = "skills_match"
	FactorKeywords    = "keywords_match"
	FactorExperience  = "experience_compatibility"
	FactorRole        = "role_relevance"
)

// Factors lists every factor in reporting order.
var Factors = []string{
	FactorDescription,
	FactorSemantic,
	FactorSkills,
	FactorKeywords,
	FactorExperience,
	FactorRole,
}

// Weights is an immutable weight table summing to 1.
type Weights struct {
	w map[string]float64
}

// DefaultWeights returns the 35/25/20/10/5/5 table.
func DefaultWeights() Weights {
	w, _ := NewWeights(map[string]float64{
		FactorDescription: 0.35,
		FactorSemantic:    0.25,
		FactorSkills:      0.20,
		FactorKeywords:    0.10,
		FactorExperience:  0.05,
		FactorRole:        0.05,
	})
	return w
}

// NewWeights validates raw and scales it to sum to 1. Missing factors weigh
// zero. Negative or unknown entries and an all-zero table are rejected.
func NewWeights(raw map[string]float64) (Weights, error) {
	known := make(map[string]bool, len(Factors))
	for _, f := range Factors {
		known[f] = true
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum float64
	for _, k := range keys {
		v := raw[k]
		switch {
		case !known[k]:
			return Weights{}, fmt.Errorf("%w: unknown factor %q", ErrInvalidWeights, k)
		case v < 0:
			return Weights{}, fmt.Errorf("%w: factor %q is negative", ErrInvalidWeights, k)
		}
		sum += v
	}
	if sum <= 0 {
		return Weights{}, fmt.Errorf("%w: weights sum to zero", ErrInvalidWeights)
	}

	w := make(map[string]float64, len(Factors))
	for _, f := range Factors {
		w[f] = raw[f] / sum
	}
	return Weights{w: w}, nil
}

// Of returns the weight of factor.
func (w Weights) Of(factor string) float64 { return w.w[factor] }

// Map returns a copy of the table.
func (w Weights) Map() map[string]float64 { return maps.Clone(w.w) }
