package browser

import "strings"

// Indicators are lowercase phrases matched against a page's visible text.
type Indicators struct {
	Block     []string
	Challenge []string
}

func DefaultIndicators() Indicators {
	return Indicators{
		Block: []string{
			"product not available in this country",
			"not available in your country",
			"not available in your region",
			"product not available in this country or region",
			"this product isn't currently available",
		},
		Challenge: []string{
			"verify to continue",
			"captcha",
			"robot",
			"verification",
			"refresh",
		},
	}
}

// IsBlocked reports whether text says the product is withheld in this region.
func (i Indicators) IsBlocked(text string) bool {
	return containsAny(text, i.Block)
}

// IsChallenge reports whether text looks like a human-verification page.
func (i Indicators) IsChallenge(text string) bool {
	return containsAny(text, i.Challenge)
}

func containsAny(text string, phrases []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
