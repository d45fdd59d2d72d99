package catalog

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"storefront/internal/docstore"
	"storefront/internal/outcome"
)

// DocumentName is the name products.json is stored under.
const DocumentName = "products.json"

// ErrProductNotFound is returned when no product has the requested id.
var ErrProductNotFound = errors.New("product not found")

// Store loads and saves the product collection.
type Store struct {
	backend docstore.Backend
	mu      sync.Mutex
}

// NewStore returns a Store persisting to backend.
func NewStore(backend docstore.Backend) *Store {
	return &Store{backend: backend}
}

// Load returns all products in stored order, or an empty list when the
// document doesn't exist yet.
func (s *Store) Load(ctx context.Context) ([]Product, error) {
	var products []Product
	err := docstore.Load(ctx, s.backend, DocumentName, &products)
	if errors.Is(err, docstore.ErrNotFound) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// Save overwrites the whole collection.
func (s *Store) Save(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	return docstore.Save(ctx, s.backend, DocumentName, products)
}

// Update runs load, fn, save under the store lock. The collection is only
// written when fn reports outcome.Applied.
func (s *Store) Update(ctx context.Context, fn func(products []Product) ([]Product, outcome.Outcome, error)) (outcome.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.Load(ctx)
	if err != nil {
		return outcome.Skipped, err
	}
	products, res, err := fn(products)
	if err != nil || res != outcome.Applied {
		return res, err
	}
	if err := s.Save(ctx, products); err != nil {
		return outcome.Skipped, err
	}
	return res, nil
}

// NextID returns one more than the highest id, or 1 for an empty list.
func NextID(products []Product) int {
	highest := 0
	for _, p := range products {
		if p.ID > highest {
			highest = p.ID
		}
	}
	return highest + 1
}

// Find returns the product with id.
func Find(products []Product, id int) (Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// Create assigns the next id to p and appends it.
func Create(products []Product, p Product) ([]Product, Product) {
	p.ID = NextID(products)
	return append(products, p), p
}

// Replace swaps the product with p.ID in place.
func Replace(products []Product, p Product) outcome.Outcome {
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			return outcome.Applied
		}
	}
	return outcome.Rejected
}

// Delete filters out the product with id. A missing id is not an error;
// the returned outcome is Skipped and the list is unchanged.
func Delete(products []Product, id int) ([]Product, outcome.Outcome) {
	kept := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return products, outcome.Skipped
	}
	return kept, outcome.Applied
}
