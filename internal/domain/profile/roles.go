package profile

import (
	"regexp"
	"strings"

	"github.com/okian/jobscout/internal/domain/textnorm"
)

const maxRoleWords = 6

var (
	roleHeader = regexp.MustCompile(`(?i)^\s*(objective|summary|professional summary|profile|target role|desired (?:role|position)|career goal)\s*:?\s*(.*)$`)
	roleSplit  = regexp.MustCompile(`\s*(?:\||–|—|•|,|\s-\s|\bat\b|@)\s*`)
)

var roleSuffixes = map[string]struct{}{
	"engineer": {}, "developer": {}, "analyst": {}, "manager": {}, "designer": {},
	"scientist": {}, "architect": {}, "consultant": {}, "specialist": {}, "lead": {},
	"administrator": {}, "programmer": {}, "technician": {}, "intern": {},
}

// targetRoles collects short role-like phrases in order of first appearance.
func targetRoles(text string, limit int) []string {
	var (
		roles []string
		seen  = map[string]struct{}{}
	)
	add := func(candidate string) {
		if len(roles) >= limit {
			return
		}
		role := strings.Join(roleTokens(candidate), " ")
		if role == "" {
			return
		}
		if _, ok := seen[role]; ok {
			return
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if m := roleHeader.FindStringSubmatch(line); m != nil {
			rest := strings.TrimSpace(m[2])
			if rest == "" {
				rest = nextNonEmpty(lines, i+1)
			}
			for _, seg := range roleSplit.Split(rest, -1) {
				if isRolePhrase(seg) {
					add(seg)
				}
			}
			continue
		}
		for _, seg := range roleSplit.Split(line, -1) {
			if isRolePhrase(seg) {
				add(seg)
			}
		}
	}
	return roles
}

// roleTokens normalizes seg and drops leading stopwords ("a", "as an").
func roleTokens(seg string) []string {
	tokens := textnorm.Tokens(seg)
	for len(tokens) > 0 && textnorm.IsStopword(tokens[0]) {
		tokens = tokens[1:]
	}
	return tokens
}

func isRolePhrase(seg string) bool {
	tokens := roleTokens(seg)
	if len(tokens) == 0 || len(tokens) > maxRoleWords {
		return false
	}
	_, ok := roleSuffixes[tokens[len(tokens)-1]]
	return ok
}

func nextNonEmpty(lines []string, from int) string {
	for j := from; j < len(lines); j++ {
		if s := strings.TrimSpace(lines[j]); s != "" {
			return s
		}
	}
	return ""
}
