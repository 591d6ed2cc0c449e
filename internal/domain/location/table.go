package location

import (
	"strings"

	"github.com/okian/jobscout/internal/domain/textnorm"
)

// City is a major city within a country.
type City struct {
	Key        string `koanf:"key"`
	Name       string `koanf:"name"`
	NativeName string `koanf:"native_name"`
	Region     string `koanf:"region"`
}

// Country groups cities in their fixed canonical order.
type Country struct {
	Key        string   `koanf:"key"`
	Name       string   `koanf:"name"`
	NativeName string   `koanf:"native_name"`
	Code       string   `koanf:"code"`
	Aliases    []string `koanf:"aliases"`
	Cities     []City   `koanf:"cities"`
}

type cityRef struct {
	country *Country
	city    *City
}

// Table is an immutable lookup over countries and cities. Lookups are case
// and diacritic insensitive.
type Table struct {
	countries []Country
	byCountry map[string]*Country
	byCity    map[string]cityRef
	// cityPhrases in table order so Bucket is deterministic.
	cityPhrases []phrase
	countryKeys []phrase
}

type phrase struct {
	text string
	ref  cityRef
}

var remoteWords = []string{"remote", "zdalna", "zdalnie", "praca zdalna", "anywhere", "home office", "wfh"}

// NewTable copies countries into a Table.
func NewTable(countries []Country) *Table {
	t := &Table{
		countries: make([]Country, len(countries)),
		byCountry: map[string]*Country{},
		byCity:    map[string]cityRef{},
	}
	for i := range countries {
		c := countries[i]
		c.Cities = append([]City(nil), c.Cities...)
		c.Aliases = append([]string(nil), c.Aliases...)
		t.countries[i] = c
	}
	for i := range t.countries {
		c := &t.countries[i]
		for _, n := range append([]string{c.Key, c.Name, c.NativeName, c.Code}, c.Aliases...) {
			if k := textnorm.Normalize(n); k != "" {
				t.byCountry[k] = c
				if len(k) > 2 {
					t.countryKeys = append(t.countryKeys, phrase{text: k, ref: cityRef{country: c}})
				}
			}
		}
		for j := range c.Cities {
			city := &c.Cities[j]
			ref := cityRef{country: c, city: city}
			for _, n := range []string{city.Key, city.Name, city.NativeName} {
				if k := textnorm.Normalize(n); k != "" {
					t.byCity[k] = ref
					t.byCity[k+" "+textnorm.Normalize(c.Name)] = ref
					t.cityPhrases = append(t.cityPhrases, phrase{text: k, ref: ref})
				}
			}
		}
	}
	return t
}

// Countries returns a copy of the table contents.
func (t *Table) Countries() []Country {
	out := make([]Country, len(t.countries))
	copy(out, t.countries)
	return out
}

// Bucket maps a free-text posting location to the key used when merging
// duplicates. A mentioned city wins. Otherwise country-wide, remote and empty
// locations fall into the bucket of the mentioned country, or of the first
// country in the table when none is named. Anything else is its own bucket.
func (t *Table) Bucket(loc string) string {
	n := textnorm.Normalize(loc)
	for _, p := range t.cityPhrases {
		if textnorm.ContainsPhrase(n, p.text) {
			return "city:" + p.ref.country.Key + "/" + p.ref.city.Key
		}
	}
	for _, p := range t.countryKeys {
		if textnorm.ContainsPhrase(n, p.text) {
			return "country:" + p.ref.country.Key
		}
	}
	if n == "" || isRemote(n) {
		if len(t.countries) > 0 {
			return "country:" + t.countries[0].Key
		}
		return "country:*"
	}
	return "other:" + n
}

func isRemote(normalized string) bool {
	for _, w := range remoteWords {
		if textnorm.ContainsPhrase(normalized, w) {
			return true
		}
	}
	return false
}

func (t *Table) lookupCity(name string) (cityRef, bool) {
	n := textnorm.Normalize(name)
	if ref, ok := t.byCity[n]; ok {
		return ref, true
	}
	if i := strings.IndexByte(name, ','); i > 0 {
		ref, ok := t.byCity[textnorm.Normalize(name[:i])]
		return ref, ok
	}
	return cityRef{}, false
}

func (t *Table) lookupCountry(name string) (*Country, bool) {
	c, ok := t.byCountry[textnorm.Normalize(name)]
	return c, ok
}

// DefaultTable holds Poland and its ten largest job markets.
func DefaultTable() *Table {
	return NewTable([]Country{{
		Key:        "poland",
		Name:       "Poland",
		NativeName: "Polska",
		Code:       "PL",
		Cities: []City{
			{Key: "warsaw", Name: "Warsaw", NativeName: "Warszawa", Region: "Mazowieckie"},
			{Key: "krakow", Name: "Krakow", NativeName: "Kraków", Region: "Małopolskie"},
			{Key: "wroclaw", Name: "Wroclaw", NativeName: "Wrocław", Region: "Dolnośląskie"},
			{Key: "poznan", Name: "Poznan", NativeName: "Poznań", Region: "Wielkopolskie"},
			{Key: "gdansk", Name: "Gdansk", NativeName: "Gdańsk", Region: "Pomorskie"},
			{Key: "lodz", Name: "Lodz", NativeName: "Łódź", Region: "Łódzkie"},
			{Key: "katowice", Name: "Katowice", NativeName: "Katowice", Region: "Śląskie"},
			{Key: "szczecin", Name: "Szczecin", NativeName: "Szczecin", Region: "Zachodniopomorskie"},
			{Key: "lublin", Name: "Lublin", NativeName: "Lublin", Region: "Lubelskie"},
			{Key: "bydgoszcz", Name: "Bydgoszcz", NativeName: "Bydgoszcz", Region: "Kujawsko-pomorskie"},
		},
	}})
}
