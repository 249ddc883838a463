package queue

import (
	"context"

	"storefront-api/models"
)

// OrderNotifier turns completed orders into confirmation email jobs.
type OrderNotifier struct {
	queue *Queue
}

func NewOrderNotifier(q *Queue) *OrderNotifier {
	return &OrderNotifier{queue: q}
}

func (n *OrderNotifier) OrderPlaced(ctx context.Context, summary models.OrderSummary) error {
	_, err := n.queue.Enqueue(ctx, JobTypeOrderConfirmation, summary)
	return err
}
