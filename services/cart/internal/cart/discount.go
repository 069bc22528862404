package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountCode is a read-only value object owned by the catalog service.
// Either Percentage or Value is set, never both. It is applied at
// computation time and never persisted as cart or order state.
type DiscountCode struct {
	Code              string    `json:"code"`
	Percentage        float64   `json:"percentage"`
	Value             float64   `json:"value"`
	MinimumOrderValue float64   `json:"minimum_order_value"`
	ExpirationDate    time.Time `json:"expiration_date"`
	Category          string    `json:"category"`
}

var (
	ErrDiscountExpired   = errors.New("discount code expired")
	ErrBelowMinimumOrder = errors.New("cart subtotal below discount minimum")
)

// Validate checks the code against the cart at a point in time.
func (d DiscountCode) Validate(subtotal float64, now time.Time) error {
	if !d.ExpirationDate.IsZero() && now.After(d.ExpirationDate) {
		return ErrDiscountExpired
	}
	if subtotal < d.MinimumOrderValue {
		return ErrBelowMinimumOrder
	}
	return nil
}

// ComputeDiscount returns the amount the code takes off the cart's current
// subtotal. Percentage codes expressed as 1-100 are normalized to 0-1 first.
// Flat-value codes are clamped so the discount never exceeds the subtotal.
func (c *Cart) ComputeDiscount(code DiscountCode) float64 {
	subtotal := decimal.NewFromFloat(c.Subtotal)

	if code.Percentage > 0 {
		pct := decimal.NewFromFloat(code.Percentage)
		if code.Percentage > 1 {
			pct = pct.Div(decimal.NewFromInt(100))
		}
		f, _ := subtotal.Mul(pct).Float64()
		return f
	}

	if code.Value > c.Subtotal {
		return 0
	}
	return code.Value
}
