package cart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/stuywashndry/washnd/pkg/pricing"
)

// ItemChoice is a configurable sub-option of a cart item (size, fabric,
// detergent and so on). Selected is part of choice identity: two choices that
// differ only in selection are different choices.
type ItemChoice struct {
	Category       string  `json:"category" bson:"category"`
	Name           string  `json:"name" bson:"name"`
	Description    string  `json:"description" bson:"description"`
	Price          float64 `json:"price" bson:"price"`
	Required       bool    `json:"required" bson:"required"`
	Limit          int     `json:"limit" bson:"limit"`
	OverridesTotal bool    `json:"overrides_total" bson:"overrides_total"`
	Selected       bool    `json:"selected" bson:"selected"`
}

// Equal reports full-field equality, selection included.
func (c ItemChoice) Equal(other ItemChoice) bool {
	return c == other
}

// OrderItem is one line in a cart: a snapshot of a catalog item plus the
// per-cart overlay fields (count, discount, instructions, choice selection).
// The snapshot insulates the cart from later catalog edits.
type OrderItem struct {
	ID                  uuid.UUID    `json:"id" bson:"id"`
	MenuID              uuid.UUID    `json:"menu_id" bson:"menu_id"`
	Name                string       `json:"name" bson:"name"`
	Category            string       `json:"category" bson:"category"`
	Description         string       `json:"description" bson:"description"`
	Photo               string       `json:"photo" bson:"photo"`
	Price               float64      `json:"price" bson:"price"`
	Count               int          `json:"count" bson:"count"`
	Discount            float64      `json:"discount" bson:"discount"`
	SpecialInstructions string       `json:"special_instructions" bson:"special_instructions"`
	Choices             []ItemChoice `json:"choices" bson:"choices"`
}

// Subtotal prices the line. Without choices: price*count-discount. With
// selected choices every selected choice contributes price*count, whether or
// not it carries the overrides-total flag; unselected-only falls back to the
// base formula. Never clamped to zero.
func (i *OrderItem) Subtotal() float64 {
	var selected []float64
	for _, c := range i.Choices {
		if c.Selected {
			selected = append(selected, c.Price)
		}
	}
	return pricing.LineSubtotal(i.Price, i.Count, i.Discount, selected)
}

// Identical reports whether two items are the same line for merge purposes:
// every descriptive field matches, including the full choice set and its
// selection flags. Count and discount are overlays and do not participate.
func (i *OrderItem) Identical(other *OrderItem) bool {
	if other == nil {
		return false
	}
	if i.ID != other.ID ||
		i.MenuID != other.MenuID ||
		i.Name != other.Name ||
		i.Category != other.Category ||
		i.Description != other.Description ||
		i.Photo != other.Photo ||
		i.Price != other.Price ||
		i.SpecialInstructions != other.SpecialInstructions {
		return false
	}
	if len(i.Choices) != len(other.Choices) {
		return false
	}
	for idx := range i.Choices {
		if !i.Choices[idx].Equal(other.Choices[idx]) {
			return false
		}
	}
	return true
}

// VariantKey is the canonical key for one configuration of a catalog item:
// the item ID plus the sorted category/name pairs of its selected choices.
// Overlays (count, discount, special instructions) do not participate, so
// the same configuration always maps to the same key.
func (i *OrderItem) VariantKey() string {
	names := make([]string, 0, len(i.Choices))
	for _, c := range i.Choices {
		if c.Selected {
			names = append(names, fmt.Sprintf("%s/%s", c.Category, c.Name))
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return i.ID.String()
	}
	return i.ID.String() + "|" + strings.Join(names, "|")
}

// FamilyID is the selection-free root of the variant key. Aggregate
// quantity queries sum across a family, not a single configuration.
func (i *OrderItem) FamilyID() string {
	return i.ID.String()
}

// Clone returns a deep copy so a stored cart item never shares choice state
// with the caller's value.
func (i *OrderItem) Clone() *OrderItem {
	dup := *i
	dup.Choices = make([]ItemChoice, len(i.Choices))
	copy(dup.Choices, i.Choices)
	return &dup
}
