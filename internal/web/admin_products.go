package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"storefront/internal/assets"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/outcome"
)

// errMissingName skips product creation without touching the collection.
var errMissingName = errors.New("product name is required")

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	form, ok := s.productForm(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(form.Name) == "" {
		s.logger.Info("add product skipped", zap.Error(errMissingName))
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	var p catalog.Product
	if err := form.Apply(&p); err != nil {
		s.badPrice(w, r, err)
		return
	}

	ctx := r.Context()
	s.saveUploads(ctx, r).apply(&p)

	var created catalog.Product
	_, err := s.catalog.Update(ctx, func(products []catalog.Product) ([]catalog.Product, outcome.Outcome, error) {
		products, created = catalog.Create(products, p)
		return products, outcome.Applied, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("product created", zap.Int("id", created.ID), zap.String("name", created.Name))
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Product added")
}

func (s *Server) editProductForm(w http.ResponseWriter, r *http.Request) {
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
	if err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Product not found")
		return
	}
	s.render(w, r, "edit_product", viewData{Config: cfg, Product: p})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	form, ok := s.productForm(w, r)
	if !ok {
		return
	}
	// Prices are checked before any file is written.
	if err := form.Apply(&catalog.Product{}); err != nil {
		s.badPrice(w, r, err)
		return
	}

	ctx := r.Context()
	id := pathID(r)
	up := s.saveUploads(ctx, r)
	var replacedPublicID string

	res, err := s.catalog.Update(ctx, func(products []catalog.Product) ([]catalog.Product, outcome.Outcome, error) {
		p, err := catalog.Find(products, id)
		if err != nil {
			return products, outcome.Rejected, nil
		}
		if err := form.Apply(&p); err != nil {
			return products, outcome.Rejected, err
		}
		previous := p.ImagePublicID
		up.apply(&p)
		if p.ImagePublicID != previous {
			replacedPublicID = previous
		}
		return products, catalog.Replace(products, p), nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res != outcome.Applied {
		s.assets.Forget(ctx, up.imagePublicID())
		s.redirectWith(w, r, "/admin", auth.FlashError, "Product not found")
		return
	}
	s.assets.Forget(ctx, replacedPublicID)
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Product updated")
}

// deleteProduct always reports success; deleting a missing id is a no-op.
func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := pathID(r)
	var publicID string
	_, err := s.catalog.Update(ctx, func(products []catalog.Product) ([]catalog.Product, outcome.Outcome, error) {
		if p, err := catalog.Find(products, id); err == nil {
			publicID = p.ImagePublicID
		}
		kept, res := catalog.Delete(products, id)
		return kept, res, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.assets.Forget(ctx, publicID)
	s.redirectWith(w, r, "/admin", auth.FlashSuccess, "Product deleted")
}

func (s *Server) productForm(w http.ResponseWriter, r *http.Request) (catalog.Form, bool) {
	if err := s.parseForm(r); err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Could not read the submitted form")
		return catalog.Form{}, false
	}
	form, err := catalog.DecodeForm(r.PostForm)
	if err != nil {
		s.redirectWith(w, r, "/admin", auth.FlashError, "Could not read the submitted form")
		return catalog.Form{}, false
	}
	return form, true
}

// uploads holds the files accepted for one product request.
type uploads struct {
	image, video *assets.Stored
}

// saveUploads stores the image and video slots. It runs outside the
// catalog lock.
func (s *Server) saveUploads(ctx context.Context, r *http.Request) uploads {
	return uploads{
		image: s.saveAsset(ctx, assets.RoleProduct, formFile(r, "image")),
		video: s.saveAsset(ctx, assets.RoleVideo, formFile(r, "video")),
	}
}

// apply points p at the stored files, leaving empty slots untouched.
func (u uploads) apply(p *catalog.Product) {
	if u.image != nil {
		p.Image = u.image.Name
		p.ImageCDNURL = u.image.CDNURL
		p.ImagePublicID = u.image.PublicID
	}
	if u.video != nil {
		p.Video = u.video.Name
	}
}

func (u uploads) imagePublicID() string {
	if u.image == nil {
		return ""
	}
	return u.image.PublicID
}

// badPrice fails the request; nothing has been persisted at this point.
func (s *Server) badPrice(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Info("product rejected", zap.Error(err))
	http.Error(w, err.Error(), http.StatusBadRequest)
}
