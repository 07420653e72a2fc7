package region

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

// Code identifies a geo-profile. Many countries fold onto one code.
type Code string

const (
	US Code = "US"
	VN Code = "VN"
	SA Code = "SA"
)

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// GeoProfile bundles everything a browsing context needs to look like a
// client from one region.
type GeoProfile struct {
	Code        Code
	Timezone    string
	Locale      string
	Language    string
	Coordinates Coordinates
	UserAgents  []string
	Headers     map[string]string
}

// Clone returns a deep copy so callers can never mutate the table.
func (p GeoProfile) Clone() GeoProfile {
	out := p
	out.UserAgents = append([]string(nil), p.UserAgents...)
	out.Headers = make(map[string]string, len(p.Headers))
	for k, v := range p.Headers {
		out.Headers[k] = v
	}
	return out
}

// PickUserAgent returns a pseudo-random identity from the pool.
func (p GeoProfile) PickUserAgent(rng *rand.Rand) string {
	if len(p.UserAgents) == 0 {
		return ""
	}
	if rng == nil {
		return p.UserAgents[rand.Intn(len(p.UserAgents))]
	}
	return p.UserAgents[rng.Intn(len(p.UserAgents))]
}

// Table is the immutable profile and country lookup used by the resolver and
// the normalizer.
type Table struct {
	profiles  map[Code]GeoProfile
	countries map[string]Code
	def       Code
	fallback  Code
}

// NewTable validates and copies its inputs. def is used for URLs without a
// region token, fallback for a token missing from countries.
func NewTable(profiles []GeoProfile, countries map[string]Code, def, fallback Code) (*Table, error) {
	t := &Table{
		profiles:  make(map[Code]GeoProfile, len(profiles)),
		countries: make(map[string]Code, len(countries)),
		def:       def,
		fallback:  fallback,
	}

	for _, p := range profiles {
		if p.Code == "" {
			return nil, fmt.Errorf("geo profile without region code")
		}
		if _, dup := t.profiles[p.Code]; dup {
			return nil, fmt.Errorf("duplicate geo profile %s", p.Code)
		}
		t.profiles[p.Code] = p.Clone()
	}

	for country, code := range countries {
		if _, ok := t.profiles[code]; !ok {
			return nil, fmt.Errorf("country %q maps to unknown region %s", country, code)
		}
		t.countries[strings.ToLower(country)] = code
	}

	if _, ok := t.profiles[def]; !ok {
		return nil, fmt.Errorf("default region %s has no profile", def)
	}
	if _, ok := t.profiles[fallback]; !ok {
		return nil, fmt.Errorf("fallback region %s has no profile", fallback)
	}

	return t, nil
}

func (t *Table) Default() Code  { return t.def }
func (t *Table) Fallback() Code { return t.fallback }

// Has reports whether code has a profile.
func (t *Table) Has(code Code) bool {
	_, ok := t.profiles[code]
	return ok
}

// Profile returns a copy of the profile for code, or the default profile.
func (t *Table) Profile(code Code) GeoProfile {
	if p, ok := t.profiles[code]; ok {
		return p.Clone()
	}
	return t.profiles[t.def].Clone()
}

// CountryRegion maps a two-letter country token onto a region.
func (t *Table) CountryRegion(country string) (Code, bool) {
	code, ok := t.countries[strings.ToLower(country)]
	return code, ok
}

var regionalToken = regexp.MustCompile(`(?i)shop-([a-z]{2})\.`)

type Resolver struct {
	table *Table
}

func NewResolver(t *Table) *Resolver {
	return &Resolver{table: t}
}

// Resolve returns the region for a URL's regional shop subdomain, or the
// table default when the URL carries no known token.
func (r *Resolver) Resolve(rawURL string) Code {
	for _, m := range regionalToken.FindAllStringSubmatch(rawURL, -1) {
		if code, ok := r.table.CountryRegion(m[1]); ok {
			return code
		}
	}
	return r.table.Default()
}
