package web

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"storefront/internal/auth"
	"storefront/internal/catalog"
)

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
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
	s.render(w, r, "index", viewData{Config: cfg, Products: products})
}

func (s *Server) product(w http.ResponseWriter, r *http.Request) {
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
	p, err := catalog.Find(products, pathID(r))
	if errors.Is(err, catalog.ErrProductNotFound) {
		s.redirectWith(w, r, "/", auth.FlashError, "Product not found")
		return
	}
	s.render(w, r, "product", viewData{Config: cfg, Product: p})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.site.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	slug := r.PathValue("slug")
	page, err := cfg.FindPage(slug)
	if err != nil {
		s.redirectWith(w, r, "/", auth.FlashError, "Page not found")
		return
	}
	s.render(w, r, "page", viewData{Config: cfg, Page: page, Slug: slug})
}

// pathID parses the {id} wildcard. Malformed ids become 0, which no
// product ever has.
func pathID(r *http.Request) int {
	id, ok := decimal(r.PathValue("id"))
	if !ok {
		return 0
	}
	return id
}

// pathIndex parses the {index} wildcard; malformed values map to -1.
func pathIndex(r *http.Request) int {
	idx, ok := decimal(r.PathValue("index"))
	if !ok {
		return -1
	}
	return idx
}

// decimal accepts only plain base-10 digits, so "010" is ten and "0x2"
// is rejected.
func decimal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
