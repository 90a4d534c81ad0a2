// Package catalog holds the authoritative last-fetched product collection and
// its derived category set for one user session.
package catalog

import (
	"context"
	"sync"

	"storefront_miniapp/internal/webapp/gateway"
)

// CategoryAll is the implicit pseudo-category that matches every product.
const CategoryAll = "all"

// Fetcher retrieves the catalog from the shop backend.
type Fetcher interface {
	FetchCatalog(ctx context.Context, userID string) (gateway.Catalog, error)
}

// Store owns the product collection. A refresh replaces products and
// categories together, so readers never observe products from one fetch
// paired with categories from another. A failed refresh keeps the previous
// contents: stale-but-present beats empty.
type Store struct {
	mu         sync.RWMutex
	fetcher    Fetcher
	userID     string
	products   []gateway.Product
	categories []string
}

// NewStore creates an empty catalog store for the given user.
func NewStore(fetcher Fetcher, userID string) *Store {
	return &Store{fetcher: fetcher, userID: userID}
}

// Refresh fetches the catalog and atomically replaces the store contents on
// success. On failure the previous contents are retained and the error is
// returned for the caller to surface.
func (s *Store) Refresh(ctx context.Context) error {
	fetched, err := s.fetcher.FetchCatalog(ctx, s.userID)
	if err != nil {
		return err
	}

	categories := make([]string, 0, len(fetched.Categories)+1)
	categories = append(categories, CategoryAll)
	for _, c := range fetched.Categories {
		if c != CategoryAll {
			categories = append(categories, c)
		}
	}

	s.mu.Lock()
	s.products = fetched.Products
	s.categories = categories
	s.mu.Unlock()
	return nil
}

// Products returns a copy of the current product collection in fetch order.
func (s *Store) Products() []gateway.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gateway.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Categories returns a copy of the category list, "all" always first.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.categories) == 0 {
		return []string{CategoryAll}
	}
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Product looks up a product by id in the current collection.
func (s *Store) Product(id string) (gateway.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return gateway.Product{}, false
}
