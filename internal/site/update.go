package site

import (
	"net/url"
	"strings"
)

// ConfigUpdate is a partial SiteConfig. A nil field was absent from the
// submitted form and keeps its previous value.
type ConfigUpdate struct {
	Title           *string
	Subtitle        *string
	WelcomeMessage  *string
	AdminPassword   *string
	Theme           *string
	PrimaryColor    *string
	SecondaryColor  *string
	AccentColor     *string
	BackgroundColor *string
	TextColor       *string
	CardColor       *string
	FontFamily      *string
	OrderButtonText *string
	CategoriesLabel *string
	FarmsLabel      *string
	ContactLabel    *string
	OrderLink       *string
	Categories      *string
	Farms           *string
	Instagram       *string
	Facebook        *string
	Twitter         *string
	TikTok          *string
}

// NewConfigUpdate collects the recognised keys present in form.
func NewConfigUpdate(form url.Values) ConfigUpdate {
	return ConfigUpdate{
		Title:           field(form, "title"),
		Subtitle:        field(form, "subtitle"),
		WelcomeMessage:  field(form, "welcome_message"),
		AdminPassword:   field(form, "admin_password"),
		Theme:           field(form, "theme"),
		PrimaryColor:    field(form, "primary_color"),
		SecondaryColor:  field(form, "secondary_color"),
		AccentColor:     field(form, "accent_color"),
		BackgroundColor: field(form, "background_color"),
		TextColor:       field(form, "text_color"),
		CardColor:       field(form, "card_color"),
		FontFamily:      field(form, "font_family"),
		OrderButtonText: field(form, "order_button_text"),
		CategoriesLabel: field(form, "categories_label"),
		FarmsLabel:      field(form, "farms_label"),
		ContactLabel:    field(form, "contact_label"),
		OrderLink:       field(form, "order_link"),
		Categories:      field(form, "categories"),
		Farms:           field(form, "farms"),
		Instagram:       field(form, "instagram"),
		Facebook:        field(form, "facebook"),
		Twitter:         field(form, "twitter"),
		TikTok:          field(form, "tiktok"),
	}
}

func field(form url.Values, key string) *string {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// ApplyUpdate replaces every field present in u and keeps the rest.
func ApplyUpdate(cfg *SiteConfig, u ConfigUpdate) {
	set(&cfg.Title, u.Title)
	set(&cfg.Subtitle, u.Subtitle)
	set(&cfg.WelcomeMessage, u.WelcomeMessage)
	set(&cfg.AdminPassword, u.AdminPassword)
	set(&cfg.Theme, u.Theme)
	set(&cfg.PrimaryColor, u.PrimaryColor)
	set(&cfg.SecondaryColor, u.SecondaryColor)
	set(&cfg.AccentColor, u.AccentColor)
	set(&cfg.BackgroundColor, u.BackgroundColor)
	set(&cfg.TextColor, u.TextColor)
	set(&cfg.CardColor, u.CardColor)
	set(&cfg.FontFamily, u.FontFamily)
	set(&cfg.OrderButtonText, u.OrderButtonText)
	set(&cfg.CategoriesLabel, u.CategoriesLabel)
	set(&cfg.FarmsLabel, u.FarmsLabel)
	set(&cfg.ContactLabel, u.ContactLabel)
	set(&cfg.OrderLink, u.OrderLink)
	set(&cfg.SocialLinks.Instagram, u.Instagram)
	set(&cfg.SocialLinks.Facebook, u.Facebook)
	set(&cfg.SocialLinks.Twitter, u.Twitter)
	set(&cfg.SocialLinks.TikTok, u.TikTok)
	if u.Categories != nil {
		cfg.Categories = SplitList(*u.Categories)
	}
	if u.Farms != nil {
		cfg.Farms = SplitList(*u.Farms)
	}
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// SplitList splits a comma separated list, trimming entries and dropping
// blanks. The result is never nil.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
