// Package textnorm holds the text normalization shared by profile
// extraction, deduplication and scoring.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics ("Kraków" -> "krakow").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// ł has no decomposition.
	out = strings.NewReplacer("ł", "l", "Ł", "L").Replace(out)
	return strings.ToLower(out)
}

// Normalize folds s, turns punctuation into spaces and collapses runs of
// whitespace. '+' and '#' survive so "c++" and "c#" stay recognisable.
func Normalize(s string) string {
	s = Fold(s)
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#':
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits the normalized form of s into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Content drops stopwords from tokens.
func Content(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !IsStopword(t) {
			out = append(out, t)
		}
	}
	return out
}

// Meaningful keeps content tokens of at least three characters that are not
// plain numbers.
func Meaningful(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) < 3 || IsStopword(t) || isNumber(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// NGrams returns the space-joined n-grams of tokens.
func NGrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

// Set builds a membership set.
func Set(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Jaccard is |a∩b| / |a∪b|, 0 when both are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := Intersect(a, b)
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Intersect counts members shared by a and b.
func Intersect(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// ContainsPhrase reports whether phrase occurs in text on token boundaries.
// Both arguments must already be normalized.
func ContainsPhrase(text, phrase string) bool {
	if phrase == "" || text == "" {
		return false
	}
	padded := " " + text + " "
	return strings.Contains(padded, " "+phrase+" ")
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
