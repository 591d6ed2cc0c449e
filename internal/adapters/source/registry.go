package source

import (
	"fmt"
	"time"

	"github.com/okian/jobscout/internal/adapters/fetch"
)

// Deps are the collaborators handed to platform constructors.
type Deps struct {
	// HTTP fetches plain pages, feeds and JSON.
	HTTP fetch.Fetcher
	// Browser renders script-heavy pages. Nil disables browser strategies.
	Browser fetch.Fetcher
	// StrategyTimeout is the default per-strategy timeout.
	StrategyTimeout time.Duration
	// BrowserTimeout bounds browser strategies.
	BrowserTimeout time.Duration
	// AcceptEmpty lists sources whose chains stop on the first clean empty
	// result.
	AcceptEmpty map[string]bool
	// BaseURLs overrides platform endpoints, keyed by source name.
	BaseURLs map[string]string
	// Now is the clock used for relative dates.
	Now func() time.Time
}

func (d Deps) baseURL(name, fallback string) string {
	if u, ok := d.BaseURLs[name]; ok && u != "" {
		return u
	}
	return fallback
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) chainOptions(name string) []ChainOption {
	return []ChainOption{
		WithAcceptEmpty(d.AcceptEmpty[name]),
		WithStrategyTimeout(d.StrategyTimeout),
	}
}

// Constructor builds one platform adapter.
type Constructor func(Deps) Adapter

type entry struct {
	name  string
	build Constructor
}

// Registry is the ordered, static set of known platforms.
type Registry struct {
	entries []entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry holds every built-in platform in invocation order.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range []entry{
		{NameJustJoinIT, NewJustJoinIT},
		{NameNoFluffJobs, NewNoFluffJobs},
		{NameLinkedIn, NewLinkedIn},
		{NameIndeed, NewIndeed},
		{NamePracuj, NewPracuj},
	} {
		_ = r.Register(e.name, e.build)
	}
	return r
}

// Register appends a platform.
func (r *Registry) Register(name string, build Constructor) error {
	for _, e := range r.entries {
		if e.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, name)
		}
	}
	r.entries = append(r.entries, entry{name: name, build: build})
	return nil
}

// Names lists registered platforms in order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}

// Build instantiates the enabled platforms. The result follows registry
// order, not the order of names. Unknown names are an error.
func (r *Registry) Build(names []string, deps Deps) ([]Adapter, error) {
	enabled := make(map[string]bool, len(names))
	for _, n := range names {
		enabled[n] = true
	}
	for n := range enabled {
		if !r.has(n) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, n)
		}
	}

	out := make([]Adapter, 0, len(enabled))
	for _, e := range r.entries {
		if enabled[e.name] {
			out = append(out, e.build(deps))
		}
	}
	return out, nil
}

func (r *Registry) has(name string) bool {
	for _, e := range r.entries {
		if e.name == name {
			return true
		}
	}
	return false
}
