// Package storefront holds the per-visitor application state: the cart and the last completed order.
package storefront

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/services/cart"
	"storefront-api/utils"
)

// OrderNotifier is told about every completed order, e.g. to send a confirmation email.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, summary models.OrderSummary) error
}

type Store struct {
	Cart *cart.Cart

	lastOrder *models.OrderSummary
	notifier  OrderNotifier
	logger    *zap.Logger
	now       func() time.Time
}

// New wires a store. notifier may be nil.
func New(c *cart.Cart, lastOrder *models.OrderSummary, notifier OrderNotifier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		Cart:      c,
		lastOrder: lastOrder,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// LastOrder is the summary of the most recent completed order, or nil.
func (s *Store) LastOrder() *models.OrderSummary {
	return s.lastOrder
}

// HandleOrderComplete snapshots the cart into an order summary, replaces any previous
// summary and empties the cart. Notification failures are logged, never returned.
func (s *Store) HandleOrderComplete(ctx context.Context, order models.OrderData) models.OrderSummary {
	summary := models.OrderSummary{
		OrderNumber: utils.GenerateOrderNumber(),
		PlacedAt:    s.now().UTC(),
		Customer:    trimCustomer(order.Customer),
		Shipping:    trimShipping(order.Shipping),
		CardHolder:  strings.TrimSpace(order.Payment.CardHolder),
		MaskedCard:  utils.MaskCardNumber(order.Payment.CardNumber),
		Items:       s.Cart.Items(),
		Totals:      s.Cart.GetCartTotals(),
	}

	s.Cart.Clear()
	s.lastOrder = &summary

	s.logger.Info("order completed",
		zap.String("order_number", summary.OrderNumber),
		zap.Int("items", len(summary.Items)),
		zap.Float64("total", summary.Totals.Total),
	)

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, summary); err != nil {
			s.logger.Error("failed to notify order placed",
				zap.String("order_number", summary.OrderNumber), zap.Error(err))
		}
	}

	return summary
}

func trimCustomer(c models.CustomerInfo) models.CustomerInfo {
	return models.CustomerInfo{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
	}
}

func trimShipping(s models.ShippingInfo) models.ShippingInfo {
	return models.ShippingInfo{
		Address: strings.TrimSpace(s.Address),
		City:    strings.TrimSpace(s.City),
		State:   strings.TrimSpace(s.State),
		ZipCode: strings.TrimSpace(s.ZipCode),
		Country: strings.TrimSpace(s.Country),
	}
}
