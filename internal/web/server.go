// Package web serves the storefront and its admin dashboard.
package web

import (
	"mime/multipart"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"storefront/internal/assets"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/httputil"
	"storefront/internal/site"
)

// Options are the Server's collaborators.
type Options struct {
	Site      *site.Store
	Catalog   *catalog.Store
	Assets    *assets.Pipeline
	Sessions  *auth.Sessions
	Logger    *zap.Logger
	MaxUpload int64
}

// Server renders storefront pages and handles admin mutations.
type Server struct {
	site      *site.Store
	catalog   *catalog.Store
	assets    *assets.Pipeline
	sessions  *auth.Sessions
	logger    *zap.Logger
	views     *views
	decoder   *schema.Decoder
	maxUpload int64
}

// New parses the templates and returns a Server.
func New(opts Options) (*Server, error) {
	v, err := parseViews()
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 20 << 20
	}
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return &Server{
		site:      opts.Site,
		catalog:   opts.Catalog,
		assets:    opts.Assets,
		sessions:  opts.Sessions,
		logger:    opts.Logger,
		views:     v,
		decoder:   d,
		maxUpload: opts.MaxUpload,
	}, nil
}

// Handler returns the routed storefront.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /product/{id}", s.product)
	mux.HandleFunc("GET /page/{slug}", s.page)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.assets.Dir()))))

	mux.HandleFunc("GET /admin/login", s.loginForm)
	mux.HandleFunc("POST /admin/login", s.login)
	mux.HandleFunc("GET /admin/logout", s.logout)
	mux.HandleFunc("GET /admin", auth.RequireAdmin(s.dashboard))

	mux.HandleFunc("POST /admin/update_config", auth.RequireAdmin(s.updateConfig))
	mux.HandleFunc("POST /admin/add_social_link", auth.RequireAdmin(s.addSocialLink))
	mux.HandleFunc("GET /admin/remove_social_link/{index}", auth.RequireAdmin(s.removeSocialLink))
	mux.HandleFunc("GET /admin/edit_social_link/{index}", auth.RequireAdmin(s.editSocialLinkForm))
	mux.HandleFunc("POST /admin/edit_social_link/{index}", auth.RequireAdmin(s.editSocialLink))

	mux.HandleFunc("POST /admin/add_product", auth.RequireAdmin(s.addProduct))
	mux.HandleFunc("GET /admin/edit_product/{id}", auth.RequireAdmin(s.editProductForm))
	mux.HandleFunc("POST /admin/update_product/{id}", auth.RequireAdmin(s.updateProduct))
	mux.HandleFunc("GET /admin/delete_product/{id}", auth.RequireAdmin(s.deleteProduct))

	mux.HandleFunc("POST /admin/add_page", auth.RequireAdmin(s.addPage))
	mux.HandleFunc("GET /admin/edit_page/{slug}", auth.RequireAdmin(s.editPageForm))
	mux.HandleFunc("POST /admin/update_page/{slug}", auth.RequireAdmin(s.updatePage))
	mux.HandleFunc("GET /admin/delete_page/{slug}", auth.RequireAdmin(s.deletePage))

	return httputil.LogRequests(s.logger, s.sessions.Middleware(mux))
}

// flash queues a message; a failure to save the session only loses the message.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind auth.FlashKind, msg string) {
	if err := s.sessions.AddFlash(w, r, kind, msg); err != nil {
		s.logger.Warn("flash not saved", zap.Error(err))
	}
}

func (s *Server) redirectWith(w http.ResponseWriter, r *http.Request, to string, kind auth.FlashKind, msg string) {
	s.flash(w, r, kind, msg)
	http.Redirect(w, r, to, http.StatusFound)
}

// fail reports an unexpected error, typically an unreadable document.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// parseForm accepts both multipart and urlencoded bodies.
func (s *Server) parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(s.maxUpload)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// formFile returns the first file posted under field, or nil.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func (s *Server) decodeSocialLinks(r *http.Request) (site.SocialLinks, error) {
	var links site.SocialLinks
	err := s.decoder.Decode(&links, r.PostForm)
	return links, err
}
