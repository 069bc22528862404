package catalog

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DiscountCode is the authoritative definition of a promotional code.
// Either Percentage or Value is set, never both. The cart service consumes
// these read-only; the JSON shape here is the contract it decodes.
type DiscountCode struct {
	Code              string    `json:"code"`
	Percentage        float64   `json:"percentage"`
	Value             float64   `json:"value"`
	MinimumOrderValue float64   `json:"minimum_order_value"`
	ExpirationDate    time.Time `json:"expiration_date"`
	Category          string    `json:"category"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BeforeCreate sets up the code before creation
func (d *DiscountCode) BeforeCreate() {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Active = true
}

// BeforeUpdate updates the timestamp
func (d *DiscountCode) BeforeUpdate() {
	d.UpdatedAt = time.Now()
}

// Expired reports whether the code is past its expiration date. A zero
// expiration means the code never expires.
func (d *DiscountCode) Expired(now time.Time) bool {
	return !d.ExpirationDate.IsZero() && now.After(d.ExpirationDate)
}

// MarshalBSON keys the document by code, which is the public identifier
// carts look codes up by.
func (d *DiscountCode) MarshalBSON() ([]byte, error) {
	return bson.Marshal(bson.M{
		"_id":                 d.Code,
		"percentage":          d.Percentage,
		"value":               d.Value,
		"minimum_order_value": d.MinimumOrderValue,
		"expiration_date":     d.ExpirationDate,
		"category":            d.Category,
		"active":              d.Active,
		"created_at":          d.CreatedAt,
		"updated_at":          d.UpdatedAt,
	})
}

// UnmarshalBSON custom BSON unmarshaling
func (d *DiscountCode) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	code, ok := doc["_id"].(string)
	if !ok || code == "" {
		return fmt.Errorf("discount code document missing _id")
	}
	d.Code = code

	d.Percentage = asFloat(doc["percentage"])
	d.Value = asFloat(doc["value"])
	d.MinimumOrderValue = asFloat(doc["minimum_order_value"])
	d.ExpirationDate = asTime(doc["expiration_date"])
	if v, ok := doc["category"].(string); ok {
		d.Category = v
	}
	if v, ok := doc["active"].(bool); ok {
		d.Active = v
	}
	d.CreatedAt = asTime(doc["created_at"])
	d.UpdatedAt = asTime(doc["updated_at"])

	return nil
}
