package textnorm

import (
	"maps"
	"slices"
	"strings"
	"unicode"
)

// Glossary rewrites local-language job terms into English so postings from
// Polish boards reach the same skill, keyword, role and seniority checks as
// English ones. Matching is on whole folded words; multi-word terms win over
// their prefixes. A nil Glossary only folds.
type Glossary struct {
	terms   map[string]string
	byFirst map[string][]glossEntry
}

type glossEntry struct {
	from []string
	to   string
}

// NewGlossary builds a glossary from term -> replacement pairs. Terms are
// folded and normalized, so "doświadczenie" and "DOSWIADCZENIE" are the same
// key. Empty terms and identity pairs are ignored.
func NewGlossary(terms map[string]string) *Glossary {
	g := &Glossary{terms: make(map[string]string, len(terms)), byFirst: map[string][]glossEntry{}}
	for from, to := range terms {
		from, to = Normalize(from), Normalize(to)
		if from == "" || from == to {
			continue
		}
		g.terms[from] = to
	}
	for from, to := range g.terms {
		words := strings.Fields(from)
		g.byFirst[words[0]] = append(g.byFirst[words[0]], glossEntry{from: words, to: to})
	}
	for _, list := range g.byFirst {
		slices.SortFunc(list, func(a, b glossEntry) int {
			if len(a.from) != len(b.from) {
				return len(b.from) - len(a.from)
			}
			return strings.Compare(strings.Join(a.from, " "), strings.Join(b.from, " "))
		})
	}
	return g
}

// With returns a copy with extra overriding the existing entries.
func (g *Glossary) With(extra map[string]string) *Glossary {
	if len(extra) == 0 {
		return g
	}
	merged := map[string]string{}
	if g != nil {
		maps.Copy(merged, g.terms)
	}
	maps.Copy(merged, extra)
	return NewGlossary(merged)
}

// Len is the number of terms.
func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.terms)
}

// Translate folds s and replaces every glossary term. Punctuation and
// spacing outside replaced terms are kept, so digit ranges such as "3–5"
// survive for the experience patterns.
func (g *Glossary) Translate(s string) string {
	folded := Fold(s)
	if g.Len() == 0 {
		return folded
	}
	segs := splitWords(folded)
	var b strings.Builder
	b.Grow(len(folded))
	for i := 0; i < len(segs); {
		if segs[i].word {
			if to, next, ok := g.match(segs, i); ok {
				b.WriteString(to)
				i = next
				continue
			}
		}
		b.WriteString(segs[i].text)
		i++
	}
	return b.String()
}

func (g *Glossary) match(segs []segment, i int) (string, int, bool) {
	for _, e := range g.byFirst[segs[i].text] {
		j, ok := i, true
		for k, w := range e.from {
			if k > 0 {
				if j >= len(segs) || segs[j].word || strings.TrimSpace(segs[j].text) != "" {
					ok = false
					break
				}
				j++
			}
			if j >= len(segs) || !segs[j].word || segs[j].text != w {
				ok = false
				break
			}
			j++
		}
		if ok {
			return e.to, j, true
		}
	}
	return "", i, false
}

type segment struct {
	text string
	word bool
}

// splitWords cuts s into alternating word and separator runs. Word runes
// are the ones Normalize keeps.
func splitWords(s string) []segment {
	var out []segment
	start, inWord := 0, false
	for i, r := range s {
		w := isWordRune(r)
		if i > 0 && w != inWord {
			out = append(out, segment{text: s[start:i], word: inWord})
			start = i
		}
		inWord = w
	}
	if start < len(s) {
		out = append(out, segment{text: s[start:], word: inWord})
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#'
}

// DefaultGlossary covers the Polish titles, seniority levels, requirement
// and employment wording seen on pracuj.pl, justjoin.it and nofluffjobs.
func DefaultGlossary() *Glossary {
	return NewGlossary(map[string]string{
		// titles
		"programista":     "programmer",
		"programistka":    "programmer",
		"programisty":     "programmer",
		"deweloper":       "developer",
		"developerka":     "developer",
		"inżynier":        "engineer",
		"inżyniera":       "engineer",
		"specjalista":     "specialist",
		"specjalistka":    "specialist",
		"kierownik":       "manager",
		"analityk":        "analyst",
		"analityczka":     "analyst",
		"konsultant":      "consultant",
		"architekt":       "architect",
		"testerka":        "tester",
		"administratorka": "administrator",

		// seniority
		"młodszy":      "junior",
		"młodsza":      "junior",
		"starszy":      "senior",
		"starsza":      "senior",
		"główny":       "lead",
		"praktykant":   "intern",
		"praktykantka": "intern",
		"stażysta":     "trainee",
		"stażystka":    "trainee",

		// requirements
		"wymagania":      "requirements",
		"umiejętności":   "skills",
		"doświadczenie":  "experience",
		"doświadczenia":  "experience",
		"doświadczeniem": "experience",
		"wykształcenie":  "education",
		"języki":         "languages",
		"znajomość":      "knowledge",
		"biegła":         "fluent",
		"podstawowa":     "basic",
		"zaawansowana":   "advanced",
		"co najmniej":    "at least",
		"lat":            "years",
		"lata":           "years",
		"rok":            "year",
		"roku":           "year",
		"oprogramowania": "software",
		"oprogramowanie": "software",
		"baz danych":     "databases",
		"bazy danych":    "databases",
		"zespół":         "team",
		"zespole":        "team",

		// employment
		"umowa o pracę":  "employment contract",
		"umowa zlecenie": "contract work",
		"pełny etat":     "full time",
		"część etatu":    "part time",
		"praca zdalna":   "remote work",
		"zdalnie":        "remote",
		"hybrydowo":      "hybrid",
		"stacjonarnie":   "on site",

		// benefits
		"benefity":      "benefits",
		"wynagrodzenie": "salary",
		"pensja":        "salary",
		"premie":        "bonuses",
		"urlop":         "vacation",
		"szkolenia":     "training",
		"rozwój":        "development",
	})
}
