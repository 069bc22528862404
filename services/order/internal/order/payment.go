package order

import "context"

// PaymentProcessor authorizes the order total before the order becomes
// durable. A failed authorization voids the order; voided orders are never
// persisted.
type PaymentProcessor interface {
	Authorize(ctx context.Context, customerID string, amount float64) error
}

// NoopPaymentProcessor authorizes everything. Stands in until a real
// gateway integration lands; the checkout flow and void path do not change.
type NoopPaymentProcessor struct{}

func (NoopPaymentProcessor) Authorize(ctx context.Context, customerID string, amount float64) error {
	return nil
}
