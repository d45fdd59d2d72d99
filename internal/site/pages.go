package site

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storefront/internal/outcome"
)

// ErrPageNotFound is returned when a slug has no page.
var ErrPageNotFound = errors.New("page not found")

var slugReplacer = strings.NewReplacer(" ", "-", "_", "-")

// Slugify lowercases name and turns spaces and underscores into hyphens.
// Nothing else is changed; surrounding spaces become hyphens too.
func Slugify(name string) string {
	return slugReplacer.Replace(cases.Lower(language.Und).String(name))
}

// PageInput is the admin form for a static page.
type PageInput struct {
	Name        string      `schema:"name"`
	Title       string      `schema:"title"`
	Content     string      `schema:"content"`
	SocialLinks SocialLinks `schema:"-"`
}

// AddPage stores in.Name's page under its slug, replacing any page already
// there. An empty name is rejected.
func AddPage(cfg *SiteConfig, in PageInput) (string, outcome.Outcome) {
	slug := Slugify(in.Name)
	if slug == "" {
		return "", outcome.Rejected
	}
	title := in.Title
	if title == "" {
		title = strings.TrimSpace(in.Name)
	}
	if cfg.Pages == nil {
		cfg.Pages = make(map[string]Page)
	}
	cfg.Pages[slug] = Page{Title: title, Content: in.Content, SocialLinks: in.SocialLinks}
	return slug, outcome.Applied
}

// UpdatePage overwrites title, content and links of an existing page.
func UpdatePage(cfg *SiteConfig, slug string, in PageInput) outcome.Outcome {
	page, ok := cfg.Pages[slug]
	if !ok {
		return outcome.Rejected
	}
	page.Title = in.Title
	page.Content = in.Content
	page.SocialLinks = in.SocialLinks
	cfg.Pages[slug] = page
	return outcome.Applied
}

// DeletePage removes the page under slug.
func DeletePage(cfg *SiteConfig, slug string) outcome.Outcome {
	if _, ok := cfg.Pages[slug]; !ok {
		return outcome.Rejected
	}
	delete(cfg.Pages, slug)
	return outcome.Applied
}

// FindPage looks a page up by slug.
func (c SiteConfig) FindPage(slug string) (Page, error) {
	page, ok := c.Pages[slug]
	if !ok {
		return Page{}, ErrPageNotFound
	}
	return page, nil
}
