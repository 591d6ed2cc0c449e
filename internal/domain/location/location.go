// Package location expands logical locations into concrete query variants.
package location

import (
	"fmt"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/textnorm"
)

// Expander turns a location name into ordered variants.
type Expander struct {
	table *Table
}

// NewExpander creates an Expander over table, or the default table when nil.
func NewExpander(table *Table) *Expander {
	if table == nil {
		table = DefaultTable()
	}
	return &Expander{table: table}
}

// Table returns the lookup table in use.
func (e *Expander) Table() *Table { return e.table }

// Expand resolves name. Countries yield every city in canonical order, then
// the country-wide variant, then remote when requested. Cities yield the city
// and, when requested, remote. Unknown names fail with ErrUnknownLocation.
func (e *Expander) Expand(name string, includeRemote bool) ([]model.LocationVariant, error) {
	if c, ok := e.table.lookupCountry(name); ok {
		out := make([]model.LocationVariant, 0, len(c.Cities)+2)
		for i := range c.Cities {
			out = append(out, cityVariant(c, &c.Cities[i]))
		}
		out = append(out, model.LocationVariant{
			Kind:        model.VariantCountry,
			Label:       c.Name,
			NativeName:  c.NativeName,
			Country:     c.Name,
			CountryCode: c.Code,
		})
		if includeRemote {
			out = append(out, remoteVariant(c))
		}
		return out, nil
	}
	if ref, ok := e.table.lookupCity(name); ok {
		out := []model.LocationVariant{cityVariant(ref.country, ref.city)}
		if includeRemote {
			out = append(out, remoteVariant(ref.country))
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownLocation, name)
}

// Opaque is the caller-side fallback for names Expand does not know: the raw
// name as a single variant, plus remote when requested and not already implied.
func Opaque(name string, includeRemote bool) []model.LocationVariant {
	name = strings.TrimSpace(name)
	out := []model.LocationVariant{{Kind: model.VariantOpaque, Label: name}}
	if includeRemote && !isRemote(textnorm.Normalize(name)) {
		out = append(out, model.LocationVariant{Kind: model.VariantRemote, Label: "Remote"})
	}
	return out
}

func cityVariant(c *Country, city *City) model.LocationVariant {
	return model.LocationVariant{
		Kind:        model.VariantCity,
		Label:       city.Name + ", " + c.Name,
		City:        city.Name,
		NativeName:  city.NativeName,
		Country:     c.Name,
		CountryCode: c.Code,
	}
}

func remoteVariant(c *Country) model.LocationVariant {
	return model.LocationVariant{
		Kind:        model.VariantRemote,
		Label:       "Remote, " + c.Name,
		Country:     c.Name,
		CountryCode: c.Code,
	}
}
