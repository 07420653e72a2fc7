package shopurl

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/maltedev/shop-scraper/internal/models"
)

// HostRule is one allow-list entry. PathPrefix is optional.
type HostRule struct {
	Host       string
	PathPrefix string
	Type       models.URLType
}

type Rules struct {
	Hosts    []HostRule
	Patterns []*regexp.Regexp
}

// DefaultRules lists the known shop-ecosystem hosts and URL patterns.
func DefaultRules() Rules {
	return Rules{
		Hosts: []HostRule{
			{Host: "shop.tiktok.com", Type: models.URLTypeMainShop},
			{Host: "www.tiktok.com", PathPrefix: "/shop", Type: models.URLTypeMainShop},
			{Host: "seller.tiktok.com", Type: models.URLTypeSellerPortal},
			{Host: "business.tiktokshop.com", Type: models.URLTypeBusinessPortal},
			{Host: "shop-my.tiktok.com", Type: models.URLTypeMainShop},
			{Host: "shop-sg.tiktok.com", Type: models.URLTypeMainShop},
			{Host: "shop-th.tiktok.com", Type: models.URLTypeMainShop},
			{Host: "shop-vn.tiktok.com", Type: models.URLTypeMainShop},
			{Host: "shop-ph.tiktok.com", Type: models.URLTypeMainShop},
			{Host: "shop-id.tiktok.com", Type: models.URLTypeMainShop},
			{Host: "ads.tiktok.com", Type: models.URLTypeShopRelated},
			{Host: "support.tiktok.com", Type: models.URLTypeShopRelated},
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^https?://shop-[a-z]{2}\.tiktok\.com(/|$|\?)`),
			regexp.MustCompile(`^https?://(www\.)?tiktok\.com/shop`),
			regexp.MustCompile(`^https?://ads\.tiktok\.com/.*help.*shop`),
			regexp.MustCompile(`^https?://support\.tiktok\.com/.*shop`),
			regexp.MustCompile(`^https?://([a-z0-9-]+\.)*shop\.tiktok\.com(:\d+)?(/|$|\?|#)`),
			regexp.MustCompile(`^https?://([a-z0-9-]+\.)*seller\.tiktok\.com(:\d+)?(/|$|\?|#)`),
			regexp.MustCompile(`^https?://([a-z0-9-]+\.)*business\.tiktokshop\.com(:\d+)?(/|$|\?|#)`),
		},
	}
}

type Classifier struct {
	rules Rules
}

func NewClassifier(rules Rules) *Classifier {
	hosts := make([]HostRule, len(rules.Hosts))
	for i, h := range rules.Hosts {
		h.Host = strings.ToLower(h.Host)
		h.PathPrefix = strings.ToLower(h.PathPrefix)
		hosts[i] = h
	}
	return &Classifier{rules: Rules{
		Hosts:    hosts,
		Patterns: append([]*regexp.Regexp(nil), rules.Patterns...),
	}}
}

// IsShopURL reports whether rawURL belongs to the shop ecosystem.
func (c *Classifier) IsShopURL(rawURL string) bool {
	lower, u, ok := parse(rawURL)
	if !ok {
		return false
	}
	if _, hit := c.matchHost(u); hit {
		return true
	}
	for _, p := range c.rules.Patterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// Classify assigns a coarse type tag to rawURL.
func (c *Classifier) Classify(rawURL string) models.URLType {
	lower, u, ok := parse(rawURL)
	if !ok {
		return models.URLTypeUnknown
	}
	if t, hit := c.matchHost(u); hit {
		return t
	}

	switch {
	case strings.Contains(lower, "/product/"):
		return models.URLTypeShopProduct
	case strings.Contains(lower, "seller"):
		return models.URLTypeSellerPortal
	case strings.Contains(lower, "business"):
		return models.URLTypeBusinessPortal
	case strings.Contains(lower, "shop"):
		return models.URLTypeShopGeneral
	default:
		return models.URLTypeShopRelated
	}
}

func (c *Classifier) matchHost(u *url.URL) (models.URLType, bool) {
	host := u.Hostname()
	for _, rule := range c.rules.Hosts {
		if host != rule.Host {
			continue
		}
		if rule.PathPrefix != "" && !strings.HasPrefix(u.Path, rule.PathPrefix) {
			continue
		}
		return rule.Type, true
	}
	return "", false
}

func parse(rawURL string) (string, *url.URL, bool) {
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	if lower == "" {
		return "", nil, false
	}
	u, err := url.Parse(lower)
	if err != nil || u.Host == "" {
		return "", nil, false
	}
	return lower, u, true
}
