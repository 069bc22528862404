package order

import (
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/stuywashndry/washnd/pkg/enums/orderstatus"
	"github.com/stuywashndry/washnd/pkg/pricing"
)

// ItemChoice mirrors the cart service's wire shape for a configured choice.
type ItemChoice struct {
	Category       string  `json:"category"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Required       bool    `json:"required"`
	Limit          int     `json:"limit"`
	OverridesTotal bool    `json:"overrides_total"`
	Selected       bool    `json:"selected"`
}

// OrderItem is a frozen line item copied out of a cart at checkout. It is
// never mutated after the order is created.
type OrderItem struct {
	ID                  uuid.UUID    `json:"id"`
	MenuID              uuid.UUID    `json:"menu_id"`
	Name                string       `json:"name"`
	Category            string       `json:"category"`
	Description         string       `json:"description"`
	Photo               string       `json:"photo"`
	Price               float64      `json:"price"`
	Count               int          `json:"count"`
	Discount            float64      `json:"discount"`
	SpecialInstructions string       `json:"special_instructions"`
	Choices             []ItemChoice `json:"choices"`
}

// Subtotal computes the exact line subtotal with the shared pricing rules.
func (i *OrderItem) Subtotal() float64 {
	var selected []float64
	for _, c := range i.Choices {
		if c.Selected {
			selected = append(selected, c.Price)
		}
	}
	return pricing.LineSubtotal(i.Price, i.Count, i.Discount, selected)
}

// Order is a placed, priced snapshot of a cart. Identity and financials are
// fixed at creation; only the status advances afterwards.
type Order struct {
	ID         uuid.UUID `json:"id"`
	CustomerID string    `json:"customer_id"`
	StoreID    string    `json:"store_id"`
	StoreName  string    `json:"store_name"`
	CartID     string    `json:"cart_id"`
	DatePlaced time.Time `json:"date_placed"`
	Status     string    `json:"status"`

	Items []OrderItem `json:"items"`

	// Financials, computed once at creation, each rounded up to the cent
	Subtotal    float64 `json:"subtotal"`
	SalesTax    float64 `json:"sales_tax"`
	DeliveryFee float64 `json:"delivery_fee"`
	ServiceFee  float64 `json:"service_fee"`
	TotalPrice  float64 `json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrderFromCart freezes a cart snapshot into an order and prices it.
// Delivery and service fees are flat zero for now; they still pass through
// the rounding policy so a future fee schedule cannot change the shape of
// the figures.
func NewOrderFromCart(snapshot *CartSnapshot) *Order {
	o := &Order{
		ID:         aqm.GenerateNewID(),
		CustomerID: snapshot.UserID,
		StoreID:    snapshot.StoreID,
		StoreName:  snapshot.StoreName,
		CartID:     snapshot.ID,
		DatePlaced: time.Now(),
		Status:     orderstatus.Statuses.PaidAwaitingConfirmation.Name,
		Items:      make([]OrderItem, len(snapshot.Items)),
	}
	copy(o.Items, snapshot.Items)

	var subtotal float64
	for i := range o.Items {
		subtotal += o.Items[i].Subtotal()
	}

	o.Subtotal = pricing.RoundUpCents(subtotal)
	o.SalesTax = pricing.SalesTax(o.Subtotal)
	o.DeliveryFee = pricing.RoundUpCents(0)
	o.ServiceFee = pricing.RoundUpCents(0)
	o.TotalPrice = pricing.RoundUpCents(o.Subtotal + o.SalesTax + o.DeliveryFee + o.ServiceFee)

	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	return o
}

// GetID returns the order ID
func (o *Order) GetID() uuid.UUID {
	return o.ID
}

// ResourceType returns the resource type for URL generation
func (o *Order) ResourceType() string {
	return "orders"
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

// Advance moves the order to a new status if the transition table allows it.
func (o *Order) Advance(to string) error {
	if orderstatus.ByName(to) == nil {
		return fmt.Errorf("unknown order status %q", to)
	}
	if !orderstatus.CanTransition(o.Status, to) {
		return fmt.Errorf("cannot transition order from %q to %q", o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

// VoidPaymentFailure marks the order voided for a failed payment. Only legal
// before the order is placed; voided orders are never persisted.
func (o *Order) VoidPaymentFailure() error {
	return o.Advance(orderstatus.Statuses.PaymentFailureVoided.Name)
}

// VoidOtherFailure marks the order voided for a non-payment failure.
func (o *Order) VoidOtherFailure() error {
	return o.Advance(orderstatus.Statuses.OtherFailureVoided.Name)
}

// Voided reports whether the order sits in one of the absorbing failure
// states.
func (o *Order) Voided() bool {
	return orderstatus.IsVoided(o.Status)
}

// ItemCount returns the total number of units across all lines.
func (o *Order) ItemCount() int {
	total := 0
	for i := range o.Items {
		total += o.Items[i].Count
	}
	return total
}
