package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/jobscout/internal/domain/textnorm"
)

var (
	yearsRange   = regexp.MustCompile(`\b(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\s*(?:years?|yrs?)\b`)
	yearsPlus    = regexp.MustCompile(`\b(\d{1,2})\s*\+\s*(?:years?|yrs?)\b`)
	yearsMinimum = regexp.MustCompile(`\b(?:minimum|min\.?|at\s+least)\s*(?:of\s+)?(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)
	yearsOfExp   = regexp.MustCompile(`\b(\d{1,2})\s*(?:years?|yrs?)\s+(?:of\s+)?(?:professional\s+|commercial\s+|relevant\s+)?(?:experience|exp)\b`)

	defaultGlossary = textnorm.DefaultGlossary()

	internWords = []string{"intern", "internship", "trainee", "traineeship", "working student", "apprentice", "staz", "praktyki"}

	// seniorityYears applies to titles only and is checked in order.
	seniorityYears = []struct {
		word  string
		years float64
	}{
		{"principal", 8},
		{"staff", 8},
		{"lead", 7},
		{"senior", 5},
		{"sr", 5},
		{"mid", 3},
		{"regular", 3},
		{"junior", 1},
		{"jr", 1},
	}
)

// RequiredYears extracts the minimum experience a posting asks for. Explicit
// year counts in the description win; otherwise seniority wording in the
// title is used. Intern and trainee postings require nothing. Polish wording
// is translated with the default glossary first.
func RequiredYears(title, description string) (float64, bool) {
	return requiredYears(defaultGlossary.Translate(title), defaultGlossary.Translate(description))
}

// requiredYears works on folded, already translated text.
func requiredYears(title, description string) (float64, bool) {
	normTitle := textnorm.Normalize(title)
	normDesc := textnorm.Normalize(description)
	for _, w := range internWords {
		if textnorm.ContainsPhrase(normTitle, w) || textnorm.ContainsPhrase(normDesc, w) {
			return 0, true
		}
	}

	lower := strings.ToLower(description)
	for _, re := range []*regexp.Regexp{yearsRange, yearsMinimum, yearsPlus, yearsOfExp} {
		if m := re.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return float64(n), true
			}
		}
	}

	for _, s := range seniorityYears {
		if textnorm.ContainsPhrase(normTitle, s.word) {
			return s.years, true
		}
	}
	return 0, false
}
