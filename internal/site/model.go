// Package site holds the storefront's singleton configuration document.
package site

// SiteConfig is the whole config.json document.
type SiteConfig struct {
	Title          string `json:"title" default:"Green Valley Market"`
	Subtitle       string `json:"subtitle" default:"Fresh from local farms"`
	WelcomeMessage string `json:"welcome_message" default:"Welcome to our shop!"`
	AdminPassword  string `json:"admin_password" default:"admin123"`

	Theme           string `json:"theme" default:"dark"`
	PrimaryColor    string `json:"primary_color" default:"#4CAF50"`
	SecondaryColor  string `json:"secondary_color" default:"#2E7D32"`
	AccentColor     string `json:"accent_color" default:"#FFC107"`
	BackgroundColor string `json:"background_color" default:"#121212"`
	TextColor       string `json:"text_color" default:"#FFFFFF"`
	CardColor       string `json:"card_color" default:"#1E1E1E"`
	FontFamily      string `json:"font_family" default:"Poppins"`

	OrderButtonText string `json:"order_button_text" default:"Order now"`
	CategoriesLabel string `json:"categories_label" default:"Categories"`
	FarmsLabel      string `json:"farms_label" default:"Farms"`
	ContactLabel    string `json:"contact_label" default:"Contact us"`
	OrderLink       string `json:"order_link"`

	LogoPath        string `json:"logo_path"`
	BackgroundImage string `json:"background_image"`
	LogoCDNURL      string `json:"logo_cdn_url,omitempty"`
	BackgroundCDN   string `json:"background_cdn_url,omitempty"`

	Categories        []string           `json:"categories" default:"[\"Flowers\",\"Oils\",\"Edibles\"]"`
	Farms             []string           `json:"farms" default:"[]"`
	Pages             map[string]Page    `json:"pages" default:"{}"`
	SocialLinks       SocialLinks        `json:"social_links"`
	CustomSocialLinks []CustomSocialLink `json:"custom_social_links" default:"[]"`
	Promotions        Promotions         `json:"promotions"`
}

// SocialLinks is the fixed set of well-known network URLs.
type SocialLinks struct {
	Instagram string `json:"instagram" schema:"instagram"`
	Facebook  string `json:"facebook" schema:"facebook"`
	Twitter   string `json:"twitter" schema:"twitter"`
	TikTok    string `json:"tiktok" schema:"tiktok"`
}

// Page is a static content page addressed by slug.
type Page struct {
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	SocialLinks SocialLinks `json:"social_links"`
}

// CustomSocialLink is an admin-defined link shown next to the fixed networks.
type CustomSocialLink struct {
	Name string `json:"name" schema:"name"`
	URL  string `json:"url" schema:"url"`
}

// Promotions describes the storefront banner. No admin form edits it yet.
type Promotions struct {
	Enabled         bool    `json:"enabled" default:"false"`
	Title           string  `json:"title" default:"Special offer"`
	Description     string  `json:"description" default:"10% off your first order"`
	DiscountType    string  `json:"discount_type" default:"percentage"`
	DiscountValue   float64 `json:"discount_value" default:"10"`
	BackgroundColor string  `json:"background_color" default:"#FF5722"`
	TextColor       string  `json:"text_color" default:"#FFFFFF"`
}

// Default returns the document used before config.json exists.
func Default() SiteConfig {
	var cfg SiteConfig
	mustSetDefaults(&cfg)
	return cfg
}
