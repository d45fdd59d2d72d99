package site

import "github.com/creasty/defaults"

// mustSetDefaults fills tagged literals. The tags are constants, so a
// failure is a programming error.
func mustSetDefaults(cfg *SiteConfig) {
	if err := defaults.Set(cfg); err != nil {
		panic("site: invalid default tags: " + err.Error())
	}
}
