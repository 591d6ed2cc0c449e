package profile

import (
	"sort"
	"strings"

	"github.com/okian/jobscout/internal/domain/textnorm"
)

// Skill is one canonical skill and the spellings that denote it.
type Skill struct {
	Name    string
	Aliases []string
}

// Taxonomy is an immutable skill table. Lookups work on normalized text and
// match whole phrases, so "java" never matches inside "javascript".
type Taxonomy struct {
	names   []string
	phrases map[string][]string // canonical name -> normalized phrases
}

// NewTaxonomy builds a taxonomy. Duplicate names merge their aliases.
func NewTaxonomy(skills []Skill) *Taxonomy {
	t := &Taxonomy{phrases: make(map[string][]string, len(skills))}
	for _, s := range skills {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		if _, ok := t.phrases[name]; !ok {
			t.names = append(t.names, name)
		}
		for _, p := range append([]string{name}, s.Aliases...) {
			if n := textnorm.Normalize(p); n != "" && !contains(t.phrases[name], n) {
				t.phrases[name] = append(t.phrases[name], n)
			}
		}
	}
	sort.Strings(t.names)
	return t
}

// WithAliases returns a copy of t extended by aliases keyed by canonical
// name. Unknown names become new skills.
func (t *Taxonomy) WithAliases(aliases map[string][]string) *Taxonomy {
	skills := t.Skills()
	for name, extra := range aliases {
		skills = append(skills, Skill{Name: name, Aliases: extra})
	}
	return NewTaxonomy(skills)
}

// Skills lists the table sorted by name.
func (t *Taxonomy) Skills() []Skill {
	out := make([]Skill, 0, len(t.names))
	for _, n := range t.names {
		out = append(out, Skill{Name: n, Aliases: append([]string(nil), t.phrases[n]...)})
	}
	return out
}

// Len is the number of canonical skills.
func (t *Taxonomy) Len() int { return len(t.names) }

// Match returns the sorted canonical skills occurring in normalized text.
func (t *Taxonomy) Match(normalized string) []string {
	var out []string
	for _, name := range t.names {
		if t.Mentions(normalized, name) {
			out = append(out, name)
		}
	}
	return out
}

// Mentions reports whether normalized text names skill by any spelling.
// Skills unknown to the table match on their own normalized name.
func (t *Taxonomy) Mentions(normalized, skill string) bool {
	phrases, ok := t.phrases[skill]
	if !ok {
		return textnorm.ContainsPhrase(normalized, textnorm.Normalize(skill))
	}
	for _, p := range phrases {
		if textnorm.ContainsPhrase(normalized, p) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultTaxonomy covers common software and engineering skills.
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy([]Skill{
		{Name: "Go", Aliases: []string{"golang"}},
		{Name: "Python"},
		{Name: "Java"},
		{Name: "JavaScript", Aliases: []string{"js", "ecmascript"}},
		{Name: "TypeScript", Aliases: []string{"ts"}},
		{Name: "C++", Aliases: []string{"cpp"}},
		{Name: "C#", Aliases: []string{"csharp", "c sharp"}},
		{Name: "Rust"},
		{Name: "SQL"},
		{Name: "PostgreSQL", Aliases: []string{"postgres", "psql"}},
		{Name: "MySQL"},
		{Name: "MongoDB", Aliases: []string{"mongo"}},
		{Name: "Redis"},
		{Name: "Kafka", Aliases: []string{"apache kafka"}},
		{Name: "Spark", Aliases: []string{"apache spark", "pyspark"}},
		{Name: "Docker"},
		{Name: "Kubernetes", Aliases: []string{"k8s"}},
		{Name: "Terraform"},
		{Name: "AWS", Aliases: []string{"amazon web services"}},
		{Name: "GCP", Aliases: []string{"google cloud", "google cloud platform"}},
		{Name: "Azure", Aliases: []string{"microsoft azure"}},
		{Name: "Linux"},
		{Name: "Git"},
		{Name: "React", Aliases: []string{"reactjs", "react js"}},
		{Name: "Node.js", Aliases: []string{"nodejs", "node"}},
		{Name: "Django"},
		{Name: "REST", Aliases: []string{"rest api", "restful"}},
		{Name: "GraphQL"},
		{Name: "gRPC"},
		{Name: "Machine Learning", Aliases: []string{"ml"}},
		{Name: "Pandas"},
		{Name: "Tableau"},
		{Name: "Power BI", Aliases: []string{"powerbi"}},
		{Name: "Excel", Aliases: []string{"ms excel", "microsoft excel"}},
		{Name: "VBA", Aliases: []string{"excel vba"}},
		{Name: "MATLAB"},
		{Name: "AutoCAD"},
		{Name: "SolidWorks"},
		{Name: "Revit", Aliases: []string{"revit mep"}},
		{Name: "Ansys"},
		{Name: "CFD"},
		{Name: "FEA", Aliases: []string{"fem"}},
		{Name: "HVAC"},
		{Name: "SCADA"},
		{Name: "Project Management"},
		{Name: "Six Sigma", Aliases: []string{"lean six sigma"}},
		{Name: "Scrum"},
		{Name: "Agile"},
		{Name: "CRM"},
		{Name: "Sales", Aliases: []string{"b2b sales", "technical sales"}},
	})
}
