package shopurl

import (
	"strings"
	"testing"

	"github.com/maltedev/shop-scraper/internal/models"
	"github.com/maltedev/shop-scraper/internal/region"
	"github.com/stretchr/testify/assert"
)

func TestIsShopURL(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"Main shop", "https://shop.tiktok.com/view/product/1729", true},
		{"Shop path on www", "https://www.tiktok.com/shop/pdp/lip-tint/1729", true},
		{"Seller center", "https://seller.tiktok.com/university", true},
		{"Business portal", "https://business.tiktokshop.com/us/seller", true},
		{"Regional shop", "https://shop-vn.tiktok.com/view/product/1", true},
		{"Regional shop not in list", "https://shop-kr.tiktok.com/view/product/1", true},
		{"Ads help shop page", "https://ads.tiktok.com/help/article/shop-ads", true},
		{"Support host", "https://support.tiktok.com/en/using-tiktok/shop", true},
		{"Upper case", "HTTPS://SHOP.TIKTOK.COM/VIEW/PRODUCT/1", true},
		{"Shop short link subdomain", "https://vt.shop.tiktok.com/abc", true},
		{"Seller subdomain", "https://m.seller.tiktok.com/x", true},
		{"Business subdomain", "https://partner.business.tiktokshop.com/", true},
		{"Seller lookalike host", "https://seller.tiktok.com.evil.io/x", false},
		{"Plain video page", "https://www.tiktok.com/@someone/video/123", false},
		{"Unrelated host", "https://www.amazon.com/dp/B000000000", false},
		{"Lookalike host", "https://shop.tiktok.com.example.net/product/1", false},
		{"Empty", "", false},
		{"Not a URL", "::::", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsShopURL(tt.url))
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		name     string
		url      string
		expected models.URLType
	}{
		{"Main shop host", "https://shop.tiktok.com/view/product/1", models.URLTypeMainShop},
		{"Seller host", "https://seller.tiktok.com/", models.URLTypeSellerPortal},
		{"Business host", "https://business.tiktokshop.com/", models.URLTypeBusinessPortal},
		{"Support host", "https://support.tiktok.com/shop", models.URLTypeShopRelated},
		{"Product path fallback", "https://shop-kr.tiktok.com/view/product/1", models.URLTypeShopProduct},
		{"Seller fallback", "https://partner.example.com/seller/signup", models.URLTypeSellerPortal},
		{"Business fallback", "https://example.com/business", models.URLTypeBusinessPortal},
		{"Shop fallback", "https://example.com/shopping", models.URLTypeShopGeneral},
		{"Related fallback", "https://example.com/help", models.URLTypeShopRelated},
		{"Empty", "", models.URLTypeUnknown},
		{"Invalid", "not a url", models.URLTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.url))
		})
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(region.DefaultTable(), "")

	tests := []struct {
		name           string
		url            string
		expectedURL    string
		expectedRegion region.Code
	}{
		{
			name:           "Vietnam host",
			url:            "https://shop-vn.tiktok.com/view/product/1?source=ads",
			expectedURL:    "https://shop.tiktok.com/view/product/1?source=ads",
			expectedRegion: region.VN,
		},
		{
			name:           "Mixed case host",
			url:            "https://Shop-SA.TikTok.com/view/product/2",
			expectedURL:    "https://shop.tiktok.com/view/product/2",
			expectedRegion: region.SA,
		},
		{
			name:           "Unmapped country falls back",
			url:            "https://shop-fr.tiktok.com/view/product/3",
			expectedURL:    "https://shop.tiktok.com/view/product/3",
			expectedRegion: region.US,
		},
		{
			name:        "Already canonical",
			url:         "https://shop.tiktok.com/view/product/4",
			expectedURL: "https://shop.tiktok.com/view/product/4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, code := n.Normalize(tt.url)
			assert.Equal(t, tt.expectedURL, got)
			assert.Equal(t, tt.expectedRegion, code)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer(region.DefaultTable(), "")

	urls := []string{
		"https://shop-my.tiktok.com/view/product/1",
		"https://shop.tiktok.com/view/product/1",
		"https://www.tiktok.com/shop/pdp/1",
	}
	for _, u := range urls {
		once, _ := n.Normalize(u)
		twice, code := n.Normalize(once)
		assert.Equal(t, once, twice, u)
		assert.Empty(t, code, u)
	}
}

func TestApplyRegionParams(t *testing.T) {
	table := region.DefaultTable()

	tests := []struct {
		name     string
		url      string
		code     region.Code
		expected string
	}{
		{"No query", "https://shop.tiktok.com/view/product/1", region.US, "https://shop.tiktok.com/view/product/1?region=US&locale=en"},
		{"Keeps other params", "https://shop.tiktok.com/p/1?source=ads&x=1", region.VN, "https://shop.tiktok.com/p/1?source=ads&x=1&region=VN&locale=vi"},
		{"Replaces existing", "https://shop.tiktok.com/p/1?region=US&locale=en&source=ads", region.SA, "https://shop.tiktok.com/p/1?source=ads&region=SA&locale=ar"},
		{"Drops legacy local", "https://shop.tiktok.com/p/1?local=vi&region=VN", region.VN, "https://shop.tiktok.com/p/1?region=VN&locale=vi"},
		{"Keeps fragment", "https://shop.tiktok.com/p/1?a=b#reviews", region.US, "https://shop.tiktok.com/p/1?a=b&region=US&locale=en#reviews"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyRegionParams(tt.url, table.Profile(tt.code)))
		})
	}
}

func TestApplyRegionParamsNeverDuplicates(t *testing.T) {
	profile := region.DefaultTable().Profile(region.VN)

	u := "https://shop.tiktok.com/p/1?region=SA&locale=ar&region=US"
	once := ApplyRegionParams(u, profile)
	twice := ApplyRegionParams(once, profile)

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "region="))
	assert.Equal(t, 1, strings.Count(twice, "locale="))
}
