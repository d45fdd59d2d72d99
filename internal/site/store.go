package site

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"storefront/internal/docstore"
	"storefront/internal/outcome"
)

// DocumentName is the name config.json is stored under.
const DocumentName = "config.json"

// Store loads and saves the SiteConfig document.
type Store struct {
	backend docstore.Backend
	mu      sync.Mutex
}

// NewStore returns a Store persisting to backend.
func NewStore(backend docstore.Backend) *Store {
	return &Store{backend: backend}
}

// Load returns the persisted document, or Default() when none exists yet.
// Load never writes.
func (s *Store) Load(ctx context.Context) (SiteConfig, error) {
	var cfg SiteConfig
	err := docstore.Load(ctx, s.backend, DocumentName, &cfg)
	if errors.Is(err, docstore.ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// Save overwrites the whole document.
func (s *Store) Save(ctx context.Context, cfg SiteConfig) error {
	return docstore.Save(ctx, s.backend, DocumentName, cfg)
}

// Update runs load, fn, save under the store lock. The document is only
// written when fn reports outcome.Applied.
func (s *Store) Update(ctx context.Context, fn func(cfg *SiteConfig) (outcome.Outcome, error)) (outcome.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.Load(ctx)
	if err != nil {
		return outcome.Skipped, err
	}
	res, err := fn(&cfg)
	if err != nil || res != outcome.Applied {
		return res, err
	}
	if err := s.Save(ctx, cfg); err != nil {
		return outcome.Skipped, err
	}
	return res, nil
}
