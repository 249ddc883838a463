package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/models"
)

func TestMemory_GetProductByID(t *testing.T) {
	m := NewMemory(models.Product{ID: "tee", Name: "Classic Tee", Price: 19.99})

	p, err := m.GetProductByID(context.Background(), "tee")
	require.NoError(t, err)
	assert.Equal(t, "Classic Tee", p.Name)

	_, err = m.GetProductByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemory_GetProductsFiltersByCategory(t *testing.T) {
	m := NewMemory(
		models.Product{ID: "b", Category: "hats"},
		models.Product{ID: "a", Category: "hats"},
		models.Product{ID: "c", Category: "shirts"},
	)

	all, err := m.GetProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	hats, err := m.GetProducts(context.Background(), "hats")
	require.NoError(t, err)
	require.Len(t, hats, 2)
	assert.Equal(t, "a", hats[0].ID)
	assert.Equal(t, "b", hats[1].ID)
}
