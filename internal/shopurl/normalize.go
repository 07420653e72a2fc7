package shopurl

import (
	"regexp"
	"strings"

	"github.com/maltedev/shop-scraper/internal/region"
)

// DefaultDomain is the shop domain whose regional hosts get canonicalized.
const DefaultDomain = "tiktok.com"

// region parameters stripped before the canonical pair is appended; "local"
// is a legacy spelling still seen in discovered links.
var regionParamKeys = []string{"region", "locale", "local"}

type Normalizer struct {
	table     *region.Table
	regional  *regexp.Regexp
	canonical string
}

func NewNormalizer(table *region.Table, domain string) *Normalizer {
	if domain == "" {
		domain = DefaultDomain
	}
	return &Normalizer{
		table:     table,
		regional:  regexp.MustCompile(`(?i)shop-([a-z]{2})\.` + regexp.QuoteMeta(domain)),
		canonical: "shop." + strings.ToLower(domain),
	}
}

// CanonicalHost returns the region-agnostic shop host.
func (n *Normalizer) CanonicalHost() string {
	return n.canonical
}

// Normalize rewrites a regional shop host to the canonical host and reports
// the region it implied. Canonical URLs come back unchanged with an empty code.
func (n *Normalizer) Normalize(rawURL string) (string, region.Code) {
	m := n.regional.FindStringSubmatch(rawURL)
	if m == nil {
		return rawURL, ""
	}

	code, ok := n.table.CountryRegion(m[1])
	if !ok {
		code = n.table.Fallback()
	}

	return n.regional.ReplaceAllString(rawURL, n.canonical), code
}

// ApplyRegionParams drops any region/locale query parameters and appends the
// pair for profile. Other parameters keep their order.
func ApplyRegionParams(rawURL string, profile region.GeoProfile) string {
	base, fragment, hasFragment := strings.Cut(rawURL, "#")
	base, query, _ := strings.Cut(base, "?")

	var params []string
	if query != "" {
		for _, param := range strings.Split(query, "&") {
			if param == "" || isRegionParam(param) {
				continue
			}
			params = append(params, param)
		}
	}

	if profile.Code != "" {
		params = append(params, "region="+string(profile.Code))
	}
	if profile.Language != "" {
		params = append(params, "locale="+profile.Language)
	}

	out := base
	if len(params) > 0 {
		out += "?" + strings.Join(params, "&")
	}
	if hasFragment {
		out += "#" + fragment
	}
	return out
}

func isRegionParam(param string) bool {
	key, _, _ := strings.Cut(param, "=")
	key = strings.ToLower(key)
	for _, k := range regionParamKeys {
		if key == k {
			return true
		}
	}
	return false
}
