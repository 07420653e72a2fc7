package region

import "strings"

var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// DefaultProfiles returns the built-in US, VN and SA profiles.
func DefaultProfiles() []GeoProfile {
	return []GeoProfile{
		{
			Code:        US,
			Timezone:    "America/New_York",
			Locale:      "en-US",
			Language:    "en",
			Coordinates: Coordinates{Latitude: 40.7128, Longitude: -74.0060},
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			},
			Headers: map[string]string{
				"Accept-Language": "en-US,en;q=0.9",
				"CF-IPCountry":    "US",
				"X-Forwarded-For": "8.8.8.8",
			},
		},
		{
			Code:        VN,
			Timezone:    "Asia/Ho_Chi_Minh",
			Locale:      "vi-VN",
			Language:    "vi",
			Coordinates: Coordinates{Latitude: 10.8231, Longitude: 106.6297},
			UserAgents:  desktopUserAgents,
			Headers: map[string]string{
				"Accept-Language": "vi-VN,vi;q=0.9,en;q=0.8",
				"CF-IPCountry":    "VN",
				"X-Forwarded-For": "203.162.4.1",
			},
		},
		{
			Code:        SA,
			Timezone:    "Asia/Riyadh",
			Locale:      "ar-SA",
			Language:    "ar",
			Coordinates: Coordinates{Latitude: 24.7136, Longitude: 46.6753},
			UserAgents:  desktopUserAgents,
			Headers: map[string]string{
				"Accept-Language": "ar-SA,ar;q=0.9,en;q=0.8",
				"CF-IPCountry":    "SA",
				"X-Forwarded-For": "213.130.117.1",
			},
		},
	}
}

// DefaultCountries folds country tokens onto the built-in profiles.
func DefaultCountries() map[string]Code {
	return map[string]Code{
		"vn": VN, "sg": VN, "my": VN, "th": VN, "ph": VN, "id": VN,
		"sa": SA, "ae": SA, "kw": SA, "qa": SA,
		"us": US, "uk": US,
	}
}

// DefaultTable is the built-in table: unknown URLs resolve to VN and
// unmapped regional tokens to US.
func DefaultTable() *Table {
	t, err := NewTable(DefaultProfiles(), DefaultCountries(), VN, US)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseCodes converts configured region names, dropping empty entries.
func ParseCodes(values []string) []Code {
	codes := make([]Code, 0, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		codes = append(codes, Code(v))
	}
	return codes
}
