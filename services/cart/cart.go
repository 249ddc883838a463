// Package cart manages the line items of one visitor's cart.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/services/catalog"
	"storefront-api/services/pricing"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// CustomHatProduct is the placeholder used for custom-hat line items, which never hit the catalog.
type CustomHatProduct struct {
	Name  string
	Price float64
	Image string
}

type Cart struct {
	catalog   catalog.Catalog
	customHat CustomHatProduct
	logger    *zap.Logger
	items     []models.CartItem
	newID     func() string
}

// New builds a cart over items. The slice is copied.
func New(c catalog.Catalog, customHat CustomHatProduct, logger *zap.Logger, items []models.CartItem) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cart{
		catalog:   c,
		customHat: customHat,
		logger:    logger,
		items:     append([]models.CartItem(nil), items...),
		newID:     func() string { return uuid.New().String() },
	}
}

// AddToCart merges into an existing line with the same product and customization,
// or appends a new line priced from the catalog (or the custom-hat placeholder).
func (c *Cart) AddToCart(ctx context.Context, productID string, quantity int, customization models.Customization) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	customization = models.NormalizeCustomization(customization)

	for i := range c.items {
		if c.items[i].ProductID == productID && models.SameCustomization(c.items[i].Customization, customization) {
			c.items[i].Quantity += quantity
			item := c.items[i]
			return &item, nil
		}
	}

	item := models.CartItem{
		ID:            c.newID(),
		ProductID:     productID,
		Quantity:      quantity,
		Customization: customization,
	}

	if models.IsCustomHat(customization) {
		item.Name = c.customHat.Name
		item.Price = c.customHat.Price
		item.Image = c.customHat.Image
	} else {
		product, err := c.catalog.GetProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.logger.Warn("product not found, cart unchanged", zap.String("product_id", productID))
				return nil, err
			}
			return nil, fmt.Errorf("failed to look up product %s: %w", productID, err)
		}
		item.Name = product.Name
		item.Price = product.Price
		item.Image = product.PrimaryImage()
	}

	c.items = append(c.items, item)
	return &item, nil
}

// UpdateCartQuantity sets the quantity of itemID. A quantity of zero or less removes the line.
func (c *Cart) UpdateCartQuantity(itemID string, newQuantity int) {
	if newQuantity <= 0 {
		c.RemoveFromCart(itemID)
		return
	}
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items[i].Quantity = newQuantity
			return
		}
	}
}

func (c *Cart) RemoveFromCart(itemID string) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	c.items = kept
}

func (c *Cart) GetCartTotals() models.CartTotals {
	return pricing.Totals(c.items)
}

// Items returns a copy of the current line items.
func (c *Cart) Items() []models.CartItem {
	return append([]models.CartItem(nil), c.items...)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ItemCount is the total number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Clear() {
	c.items = nil
}
