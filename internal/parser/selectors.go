package parser

// Selectors locate each field on a product page. Review selectors are scoped
// to a single review element.
type Selectors struct {
	Name        string
	Price       string
	Seller      string
	Rating      string
	RatingCount string
	Sold        string

	SpecItem  string
	SpecLabel string
	SpecValue string

	ReviewContainer string
	Review          string
	ReviewUsername  string
	ReviewStarOn    string
	ReviewText      string
	ReviewSKU       string
	ReviewDate      string
	ReviewPhotos    string
	ReviewImage     string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Name:        "h1.title-v0v6fK",
		Price:       "div.price-w1xvrw span",
		Seller:      "div.seller-c27aRQ a",
		Rating:      "span.infoRatingScore-jSs6kd",
		RatingCount: "span.infoRatingCount-lKBiTI",
		Sold:        "div.info__sold-ZdTfzQ",

		SpecItem:  "div.specification-item-xNVbQy",
		SpecLabel: "span.name-QGrd5O",
		SpecValue: "span.value-B9KpLv",

		ReviewContainer: "div.reviews__bd-xTwQAs",
		Review:          "div.review-dpC7Ta",
		ReviewUsername:  "div.review-info__nickname-_C8NYg",
		ReviewStarOn:    "div.rating--on-COWbLl",
		ReviewText:      "div.review-item-S_JAON",
		ReviewSKU:       "div.reviewSku-4Gh19a",
		ReviewDate:      "div",
		ReviewPhotos:    "div.review-photo-B_LuTG",
		ReviewImage:     "img[src]",
	}
}

// Keywords are the per-language phrases used to clean and classify text.
type Keywords struct {
	// SellerPrefixes are stripped from the seller link text. First match wins.
	SellerPrefixes []string
	// BrandLabels identify the brand row in the specification list.
	BrandLabels []string
}

func DefaultKeywords() Keywords {
	return Keywords{
		SellerPrefixes: []string{
			"Sold by ",
			"Vendido por ",
			"Vendu par ",
			"Verkauft von ",
			"Dijual oleh ",
			"Được bán bởi ",
			"Bán bởi",
			"يُباع بواسطة ",
			"اسم البائع",
		},
		BrandLabels: []string{
			"Brand",
			"Marca",
			"Marke",
			"Marque",
			"Jenama",
			"Merk",
			"Thương hiệu",
			"ماركة",
			"العلامة التجارية",
		},
	}
}
