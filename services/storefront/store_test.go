package storefront

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/models"
	"storefront-api/services/cart"
	"storefront-api/services/catalog"
)

type recordingNotifier struct {
	summaries []models.OrderSummary
	err       error
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, summary models.OrderSummary) error {
	n.summaries = append(n.summaries, summary)
	return n.err
}

func newTestStore(notifier OrderNotifier) *Store {
	products := catalog.NewMemory(models.Product{ID: "tee", Name: "Classic Tee", Price: 29.99})
	c := cart.New(products, cart.CustomHatProduct{Name: "Custom Hat", Price: 24.99}, nil, nil)
	s := New(c, nil, notifier, nil)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return s
}

var order = models.OrderData{
	Customer: models.CustomerInfo{FirstName: " Ada ", LastName: "Lovelace", Email: "ada@example.com", Phone: "555-123-4567"},
	Shipping: models.ShippingInfo{Address: "1 Analytical Way", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"},
	Payment:  models.PaymentInfo{CardHolder: "Ada Lovelace", CardNumber: "4111 1111 1111 1111", ExpiryDate: "12/29", CVV: "123"},
}

func TestHandleOrderComplete(t *testing.T) {
	notifier := &recordingNotifier{}
	s := newTestStore(notifier)
	_, err := s.Cart.AddToCart(context.Background(), "tee", 2, nil)
	require.NoError(t, err)

	summary := s.HandleOrderComplete(context.Background(), order)

	assert.True(t, s.Cart.IsEmpty())
	require.NotNil(t, s.LastOrder())
	assert.Equal(t, summary, *s.LastOrder())
	assert.Equal(t, "Ada", summary.Customer.FirstName)
	assert.Equal(t, "XXXX XXXX XXXX 1111", summary.MaskedCard)
	assert.Equal(t, 64.44, summary.Totals.Total)
	assert.Len(t, summary.Items, 1)
	assert.Equal(t, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), summary.PlacedAt)
	require.Len(t, notifier.summaries, 1)
	assert.Equal(t, summary.OrderNumber, notifier.summaries[0].OrderNumber)
}

func TestHandleOrderComplete_ReplacesPreviousOrder(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()

	_, err := s.Cart.AddToCart(ctx, "tee", 1, nil)
	require.NoError(t, err)
	first := s.HandleOrderComplete(ctx, order)

	_, err = s.Cart.AddToCart(ctx, "tee", 3, nil)
	require.NoError(t, err)
	second := s.HandleOrderComplete(ctx, order)

	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
	assert.Equal(t, second.OrderNumber, s.LastOrder().OrderNumber)
	assert.Equal(t, 3, s.LastOrder().Items[0].Quantity)
}

func TestHandleOrderComplete_NotifierFailureDoesNotFailOrder(t *testing.T) {
	s := newTestStore(&recordingNotifier{err: errors.New("redis down")})
	_, err := s.Cart.AddToCart(context.Background(), "tee", 1, nil)
	require.NoError(t, err)

	summary := s.HandleOrderComplete(context.Background(), order)

	assert.NotEmpty(t, summary.OrderNumber)
	assert.True(t, s.Cart.IsEmpty())
}
