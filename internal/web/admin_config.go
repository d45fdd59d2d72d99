package web

import (
	"context"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/assets"
	"storefront/internal/auth"
	"storefront/internal/outcome"
	"storefront/internal/site"
)

// updateConfig merges the submitted fields into the site config and
// replaces the logo and background when a valid file was uploaded.
func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Could not read the submitted form")
		return
	}
	ctx := r.Context()
	logo := s.saveAsset(ctx, assets.RoleLogo, formFile(r, "logo"))
	bg := s.saveAsset(ctx, assets.RoleBackground, formFile(r, "background_image"))
	update := site.NewConfigUpdate(r.PostForm)

	_, err := s.site.Update(ctx, func(cfg *site.SiteConfig) (outcome.Outcome, error) {
		site.ApplyUpdate(cfg, update)
		if logo != nil {
			cfg.LogoPath = logo.Name
			cfg.LogoCDNURL = logo.CDNURL
		}
		if bg != nil {
			cfg.BackgroundImage = bg.Name
			cfg.BackgroundCDN = bg.CDNURL
		}
		return outcome.Applied, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Configuration updated")
}

// saveAsset returns the stored upload, or nil when the slot was empty,
// rejected or could not be written.
func (s *Server) saveAsset(ctx context.Context, role assets.Role, fh *multipart.FileHeader) *assets.Stored {
	stored, res, err := s.assets.Save(ctx, role, fh)
	if err != nil {
		s.logger.Error("upload failed", zap.String("role", string(role)), zap.Error(err))
		return nil
	}
	if res != outcome.Applied {
		return nil
	}
	return &stored
}

func (s *Server) addSocialLink(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Could not read the submitted form")
		return
	}
	var link site.CustomSocialLink
	if err := s.decoder.Decode(&link, r.PostForm); err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Could not read the submitted form")
		return
	}
	res, err := s.site.Update(r.Context(), func(cfg *site.SiteConfig) (outcome.Outcome, error) {
		return site.AddCustomSocialLink(cfg, link), nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res != outcome.Applied {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Name and URL are required")
		return
	}
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Social link added")
}

func (s *Server) removeSocialLink(w http.ResponseWriter, r *http.Request) {
	index := pathIndex(r)
	res, err := s.site.Update(r.Context(), func(cfg *site.SiteConfig) (outcome.Outcome, error) {
		return site.RemoveCustomSocialLink(cfg, index), nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res != outcome.Applied {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Social link not found")
		return
	}
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Social link removed")
}

func (s *Server) editSocialLinkForm(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.site.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	index := pathIndex(r)
	link, ok := cfg.SocialLinkAt(index)
	if !ok {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Social link not found")
		return
	}
	s.render(w, r, "edit_social_link", viewData{Config: cfg, Index: index, Link: link})
}

func (s *Server) editSocialLink(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Could not read the submitted form")
		return
	}
	var link site.CustomSocialLink
	if err := s.decoder.Decode(&link, r.PostForm); err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Could not read the submitted form")
		return
	}
	index := pathIndex(r)
	found := false
	res, err := s.site.Update(r.Context(), func(cfg *site.SiteConfig) (outcome.Outcome, error) {
		_, found = cfg.SocialLinkAt(index)
		return site.EditCustomSocialLink(cfg, index, link), nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res != outcome.Applied {
		msg := "Social link not found"
		if found {
			msg = "Name and URL are required"
		}
		s.redirectWith(w, r, "/admin", auth.FlashError, msg)
		return
	}
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Social link updated")
}
