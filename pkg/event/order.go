package event

import "time"

const (
	OrdersTopic      = "orders.placed"
	EventOrderPlaced = "order.placed"
	EventOrderVoided = "order.voided"
)

// OrderPlacedEvent is published when checkout turns a cart into an order.
// The cart service consumes it to retire the checked-out cart.
type OrderPlacedEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	StoreID    string    `json:"store_id"`
	CartID     string    `json:"cart_id"`

	// Denormalized financials for downstream display
	Subtotal   float64 `json:"subtotal"`
	SalesTax   float64 `json:"sales_tax"`
	TotalPrice float64 `json:"total_price"`
	ItemCount  int     `json:"item_count"`
}
