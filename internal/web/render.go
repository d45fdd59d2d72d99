package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/site"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageNames = []string{
	"index",
	"product",
	"page",
	"login",
	"admin",
	"edit_product",
	"edit_social_link",
	"edit_page",
}

// viewData is handed to every template. Handlers fill what they need.
type viewData struct {
	Config    site.SiteConfig
	Products  []catalog.Product
	Product   catalog.Product
	Page      site.Page
	Slug      string
	Index     int
	Link      site.CustomSocialLink
	PageSlugs []string
	Flashes   []auth.Flash
	Admin     bool
}

// views holds one template set per page, each sharing layout.gohtml.
type views struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"asset": assetURL,
	"join":  strings.Join,
}

func parseViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, errors.Wrapf(err, "template %s", name)
		}
		v.pages[name] = t
	}
	return v, nil
}

// assetURL prefers the mirrored copy and falls back to the local upload.
func assetURL(cdn, name string) string {
	if cdn != "" {
		return cdn
	}
	if name == "" {
		return ""
	}
	return "/uploads/" + url.PathEscape(name)
}

// render pops pending flashes into data and writes the page. The page is
// buffered so a template error can still become a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data viewData) {
	t, ok := s.views.pages[name]
	if !ok {
		s.fail(w, r, errors.Errorf("unknown template %q", name))
		return
	}
	flashes, err := s.sessions.Flashes(w, r)
	if err != nil {
		s.logger.Warn("flashes not cleared", zap.Error(err))
	}
	data.Flashes = flashes
	data.Admin = auth.FromContext(r.Context()) == auth.Authenticated

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.fail(w, r, errors.Wrapf(err, "render %s", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
