package web

import (
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/outcome"
	"storefront/internal/site"
)

// pageInput reads the page form and its four social link fields.
func (s *Server) pageInput(w http.ResponseWriter, r *http.Request) (site.PageInput, bool) {
	var in site.PageInput
	err := s.parseForm(r)
	if err == nil {
		err = s.decoder.Decode(&in, r.PostForm)
	}
	if err == nil {
		in.SocialLinks, err = s.decodeSocialLinks(r)
	}
	if err != nil {
		s.logger.Info("page form rejected", zap.Error(err))
		s.redirectWith(w, r, "/admin", auth.FlashError, "Could not read the submitted form")
		return site.PageInput{}, false
	}
	return in, true
}

func (s *Server) addPage(w http.ResponseWriter, r *http.Request) {
	in, ok := s.pageInput(w, r)
	if !ok {
		return
	}
	var slug string
	res, err := s.site.Update(r.Context(), func(cfg *site.SiteConfig) (outcome.Outcome, error) {
		var res outcome.Outcome
		slug, res = site.AddPage(cfg, in)
		return res, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res != outcome.Applied {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Page name is required")
		return
	}
	s.logger.Info("page added", zap.String("slug", slug))
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Page added")
}

func (s *Server) editPageForm(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.site.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	slug := r.PathValue("slug")
	page, err := cfg.FindPage(slug)
	if err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Page not found")
		return
	}
	s.render(w, r, "edit_page", viewData{Config: cfg, Page: page, Slug: slug})
}

func (s *Server) updatePage(w http.ResponseWriter, r *http.Request) {
	in, ok := s.pageInput(w, r)
	if !ok {
		return
	}
	slug := r.PathValue("slug")
	res, err := s.site.Update(r.Context(), func(cfg *site.SiteConfig) (outcome.Outcome, error) {
		return site.UpdatePage(cfg, slug, in), nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res != outcome.Applied {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Page not found")
		return
	}
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Page updated")
}

func (s *Server) deletePage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	res, err := s.site.Update(r.Context(), func(cfg *site.SiteConfig) (outcome.Outcome, error) {
		return site.DeletePage(cfg, slug), nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res != outcome.Applied {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Page not found")
		return
	}
	s.logger.Info("page deleted", zap.String("slug", slug))
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Page deleted")
}
