package event

import "time"

const (
	CartChangesTopic     = "carts.changes"
	EventCartItemAdded   = "cart.item.added"
	EventCartItemUpdated = "cart.item.updated"
	EventCartItemRemoved = "cart.item.removed"
	EventCartReplaced    = "cart.replaced"
)

// CartChangeEvent is published on every cart mutation. Consumers only need
// the denormalized fields below; the full cart lives in the cart service.
type CartChangeEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	CartID     string    `json:"cart_id"`
	UserID     string    `json:"user_id"`
	StoreID    string    `json:"store_id"`

	ItemID     string  `json:"item_id,omitempty"`
	ItemName   string  `json:"item_name,omitempty"`
	VariantKey string  `json:"variant_key,omitempty"`
	Count      int     `json:"count,omitempty"`
	Subtotal   float64 `json:"subtotal"`
}
