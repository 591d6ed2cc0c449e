package scoring

import (
	"math"
	"sort"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/textnorm"
)

// semanticSimilarity is the cosine of the TF-IDF vectors of the resume and
// the description over word uni-, bi- and trigrams.
func semanticSimilarity(p model.Profile, post posting) float64 {
	if post.description == "" {
		return 0
	}
	resume := terms(textnorm.Tokens(p.RawText))
	resume = append(resume, p.Keywords...)
	for _, s := range p.Skills {
		resume = append(resume, terms(textnorm.Tokens(s))...)
	}
	for _, r := range p.TargetRoles {
		resume = append(resume, terms(textnorm.Tokens(r))...)
	}
	if len(resume) == 0 {
		return 0
	}
	desc := terms(post.descTokens)
	if len(desc) == 0 {
		return 0
	}
	return capScore(100 * tfidfCosine(resume, desc))
}

// terms drops stopwords and expands tokens into 1-3 grams.
func terms(tokens []string) []string {
	content := textnorm.Content(tokens)
	out := make([]string, 0, len(content)*3)
	for n := 1; n <= 3; n++ {
		out = append(out, textnorm.NGrams(content, n)...)
	}
	return out
}

// tfidfCosine fits IDF on the two documents with smoothing
// idf = ln((1+n)/(1+df)) + 1 and returns the cosine of their vectors.
func tfidfCosine(a, b []string) float64 {
	tfA, tfB := counts(a), counts(b)

	vocab := make([]string, 0, len(tfA)+len(tfB))
	for t := range tfA {
		vocab = append(vocab, t)
	}
	for t := range tfB {
		if _, ok := tfA[t]; !ok {
			vocab = append(vocab, t)
		}
	}
	// Fixed summation order keeps the float result reproducible.
	sort.Strings(vocab)

	const docs = 2.0
	var dot, normA, normB float64
	for _, t := range vocab {
		df := 0.0
		if tfA[t] > 0 {
			df++
		}
		if tfB[t] > 0 {
			df++
		}
		idf := math.Log((1+docs)/(1+df)) + 1
		wa := float64(tfA[t]) * idf
		wb := float64(tfB[t]) * idf
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func counts(terms []string) map[string]int {
	m := make(map[string]int, len(terms))
	for _, t := range terms {
		m[t]++
	}
	return m
}
