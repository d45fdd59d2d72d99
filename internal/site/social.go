package site

import (
	"strings"

	"storefront/internal/outcome"
)

// AddCustomSocialLink appends a link. Both name and url are required.
func AddCustomSocialLink(cfg *SiteConfig, link CustomSocialLink) outcome.Outcome {
	link.Name = strings.TrimSpace(link.Name)
	link.URL = strings.TrimSpace(link.URL)
	if link.Name == "" || link.URL == "" {
		return outcome.Rejected
	}
	cfg.CustomSocialLinks = append(cfg.CustomSocialLinks, link)
	return outcome.Applied
}

// RemoveCustomSocialLink drops the link at index. Out of range indexes
// leave the list untouched.
func RemoveCustomSocialLink(cfg *SiteConfig, index int) outcome.Outcome {
	if index < 0 || index >= len(cfg.CustomSocialLinks) {
		return outcome.Rejected
	}
	links := make([]CustomSocialLink, 0, len(cfg.CustomSocialLinks)-1)
	links = append(links, cfg.CustomSocialLinks[:index]...)
	links = append(links, cfg.CustomSocialLinks[index+1:]...)
	cfg.CustomSocialLinks = links
	return outcome.Applied
}

// EditCustomSocialLink replaces the link at index.
func EditCustomSocialLink(cfg *SiteConfig, index int, link CustomSocialLink) outcome.Outcome {
	if index < 0 || index >= len(cfg.CustomSocialLinks) {
		return outcome.Rejected
	}
	link.Name = strings.TrimSpace(link.Name)
	link.URL = strings.TrimSpace(link.URL)
	if link.Name == "" || link.URL == "" {
		return outcome.Rejected
	}
	cfg.CustomSocialLinks[index] = link
	return outcome.Applied
}

// SocialLinkAt returns the custom link at index.
func (c SiteConfig) SocialLinkAt(index int) (CustomSocialLink, bool) {
	if index < 0 || index >= len(c.CustomSocialLinks) {
		return CustomSocialLink{}, false
	}
	return c.CustomSocialLinks[index], true
}
