package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
)

// AddProduct inserts p with a fresh ID and returns the stored copy.
func (s *Store) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertProduct(p)
}

func (s *Store) insertProduct(p models.Product) models.Product {
	s.nextProductID++
	p.ID = s.nextProductID
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	stored := p
	s.products[p.ID] = &stored
	return stored
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, database.ErrProductNotFound
	}
	out := *p
	return &out, nil
}

func (s *Store) StockByIDs(ctx context.Context, ids []int64) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := make(map[int64]int, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			levels[id] = p.StockQuantity
		}
	}
	return levels, nil
}

func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	if filter.Offset > 0 {
		if filter.Offset >= len(products) {
			return []models.Product{}, nil
		}
		products = products[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(products) {
		products = products[:filter.Limit]
	}
	return products, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, p := range s.products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *Store) UpsertProducts(ctx context.Context, products []models.Product) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySlug := make(map[string]*models.Product, len(s.products))
	for _, p := range s.products {
		bySlug[p.Slug] = p
	}

	for _, p := range products {
		if existing, ok := bySlug[p.Slug]; ok {
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = s.now()
			*existing = p
			continue
		}
		stored := s.insertProduct(p)
		bySlug[stored.Slug] = s.products[stored.ID]
	}
	return len(products), nil
}

// PurgeProducts drops every product no order refers to and deactivates the
// rest with zero stock, so order history keeps its product rows.
func (s *Store) PurgeProducts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	referenced := make(map[int64]bool)
	for _, o := range s.orders {
		referenced[o.ProductID] = true
	}
	for id, p := range s.products {
		if referenced[id] {
			p.IsActive = false
			p.StockQuantity = 0
			continue
		}
		delete(s.products, id)
	}
	s.carts = make(map[int64]map[int64]*cartLine)
	return nil
}
