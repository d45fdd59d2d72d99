// Package catalog holds the product collection document.
package catalog

import "storefront/internal/site"

// Product is one entry of products.json.
type Product struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Farm        string           `json:"farm"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Video       string           `json:"video"`
	OrderLink   string           `json:"order_link"`
	Prices      []Price          `json:"prices"`
	SocialLinks site.SocialLinks `json:"social_links"`

	// Set when the image was mirrored to a CDN.
	ImageCDNURL   string `json:"image_cdn_url,omitempty"`
	ImagePublicID string `json:"image_public_id,omitempty"`
}

// Price is one quantity/unit/price row.
type Price struct {
	Quantity string  `json:"quantity"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
}
