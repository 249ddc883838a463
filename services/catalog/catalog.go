// Package catalog is the read side of the product backend as seen by the cart.
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"storefront-api/models"
)

var ErrProductNotFound = errors.New("product not found")

type Catalog interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProducts(ctx context.Context, category string) ([]models.Product, error)
}

// Memory is an in-process catalog, used for seeding and tests.
type Memory struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemory(products ...models.Product) *Memory {
	m := &Memory{products: make(map[string]models.Product, len(products))}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *Memory) Put(p models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *Memory) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (m *Memory) GetProducts(_ context.Context, category string) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if category != "" && p.Category != category {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}
