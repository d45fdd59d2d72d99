package web

import (
	"net/http"
	"sort"

	"go.uber.org/zap"

	"storefront/internal/auth"
)

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()) == auth.Authenticated {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	cfg, err := s.site.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "login", viewData{Config: cfg})
}

// login compares the submitted password with the stored admin password.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	cfg, err := s.site.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !auth.CheckPassword(cfg.AdminPassword, r.PostFormValue("password")) {
		s.logger.Info("admin login failed", zap.String("remote", r.RemoteAddr))
		s.redirectWith(w, r, "/admin/login", auth.FlashError, "Invalid password")
		return
	}
	if err := s.sessions.Login(w, r, "Logged in"); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("admin logged in", zap.String("remote", r.RemoteAddr))
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(w, r, "Logged out"); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.site.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	products, err := s.catalog.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	slugs := make([]string, 0, len(cfg.Pages))
	for slug := range cfg.Pages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	s.render(w, r, "admin", viewData{Config: cfg, Products: products, PageSlugs: slugs})
}
