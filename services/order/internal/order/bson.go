package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Numeric and date fields come back from the driver as several concrete
// types depending on how the document was written.

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	}
	return time.Time{}
}

// MarshalBSON custom BSON marshaling for UUID handling
func (o *Order) MarshalBSON() ([]byte, error) {
	items := make([]bson.M, len(o.Items))
	for i, it := range o.Items {
		choices := make([]bson.M, len(it.Choices))
		for j, c := range it.Choices {
			choices[j] = bson.M{
				"category":        c.Category,
				"name":            c.Name,
				"description":     c.Description,
				"price":           c.Price,
				"required":        c.Required,
				"limit":           c.Limit,
				"overrides_total": c.OverridesTotal,
				"selected":        c.Selected,
			}
		}
		items[i] = bson.M{
			"id":                   it.ID.String(),
			"menu_id":              it.MenuID.String(),
			"name":                 it.Name,
			"category":             it.Category,
			"description":          it.Description,
			"photo":                it.Photo,
			"price":                it.Price,
			"count":                it.Count,
			"discount":             it.Discount,
			"special_instructions": it.SpecialInstructions,
			"choices":              choices,
		}
	}

	return bson.Marshal(bson.M{
		"_id":          o.ID.String(),
		"customer_id":  o.CustomerID,
		"store_id":     o.StoreID,
		"store_name":   o.StoreName,
		"cart_id":      o.CartID,
		"date_placed":  o.DatePlaced,
		"status":       o.Status,
		"items":        items,
		"subtotal":     o.Subtotal,
		"sales_tax":    o.SalesTax,
		"delivery_fee": o.DeliveryFee,
		"service_fee":  o.ServiceFee,
		"total_price":  o.TotalPrice,
		"created_at":   o.CreatedAt,
		"updated_at":   o.UpdatedAt,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling
func (o *Order) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	if idStr, ok := doc["_id"].(string); ok && idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("invalid UUID format for _id: %w", err)
		}
		o.ID = id
	}

	if v, ok := doc["customer_id"].(string); ok {
		o.CustomerID = v
	}
	if v, ok := doc["store_id"].(string); ok {
		o.StoreID = v
	}
	if v, ok := doc["store_name"].(string); ok {
		o.StoreName = v
	}
	if v, ok := doc["cart_id"].(string); ok {
		o.CartID = v
	}
	if v, ok := doc["status"].(string); ok {
		o.Status = v
	}
	o.DatePlaced = asTime(doc["date_placed"])

	if itemsArr, ok := doc["items"].(bson.A); ok {
		o.Items = make([]OrderItem, len(itemsArr))
		for i, raw := range itemsArr {
			itemMap, ok := raw.(bson.M)
			if !ok {
				continue
			}
			if idStr, ok := itemMap["id"].(string); ok {
				id, _ := uuid.Parse(idStr)
				o.Items[i].ID = id
			}
			if idStr, ok := itemMap["menu_id"].(string); ok {
				id, _ := uuid.Parse(idStr)
				o.Items[i].MenuID = id
			}
			if v, ok := itemMap["name"].(string); ok {
				o.Items[i].Name = v
			}
			if v, ok := itemMap["category"].(string); ok {
				o.Items[i].Category = v
			}
			if v, ok := itemMap["description"].(string); ok {
				o.Items[i].Description = v
			}
			if v, ok := itemMap["photo"].(string); ok {
				o.Items[i].Photo = v
			}
			o.Items[i].Price = asFloat(itemMap["price"])
			o.Items[i].Count = asInt(itemMap["count"])
			o.Items[i].Discount = asFloat(itemMap["discount"])
			if v, ok := itemMap["special_instructions"].(string); ok {
				o.Items[i].SpecialInstructions = v
			}

			if choicesArr, ok := itemMap["choices"].(bson.A); ok {
				o.Items[i].Choices = make([]ItemChoice, len(choicesArr))
				for j, rawChoice := range choicesArr {
					choiceMap, ok := rawChoice.(bson.M)
					if !ok {
						continue
					}
					if v, ok := choiceMap["category"].(string); ok {
						o.Items[i].Choices[j].Category = v
					}
					if v, ok := choiceMap["name"].(string); ok {
						o.Items[i].Choices[j].Name = v
					}
					if v, ok := choiceMap["description"].(string); ok {
						o.Items[i].Choices[j].Description = v
					}
					o.Items[i].Choices[j].Price = asFloat(choiceMap["price"])
					if v, ok := choiceMap["required"].(bool); ok {
						o.Items[i].Choices[j].Required = v
					}
					o.Items[i].Choices[j].Limit = asInt(choiceMap["limit"])
					if v, ok := choiceMap["overrides_total"].(bool); ok {
						o.Items[i].Choices[j].OverridesTotal = v
					}
					if v, ok := choiceMap["selected"].(bool); ok {
						o.Items[i].Choices[j].Selected = v
					}
				}
			}
		}
	}

	o.Subtotal = asFloat(doc["subtotal"])
	o.SalesTax = asFloat(doc["sales_tax"])
	o.DeliveryFee = asFloat(doc["delivery_fee"])
	o.ServiceFee = asFloat(doc["service_fee"])
	o.TotalPrice = asFloat(doc["total_price"])
	o.CreatedAt = asTime(doc["created_at"])
	o.UpdatedAt = asTime(doc["updated_at"])

	return nil
}

// MarshalBSON custom BSON marshaling for UUID handling
func (d *Delivery) MarshalBSON() ([]byte, error) {
	return bson.Marshal(bson.M{
		"_id":         d.ID.String(),
		"order_id":    d.OrderID.String(),
		"driver_id":   d.DriverID,
		"driver_name": d.DriverName,
		"origin":      d.Origin,
		"destination": d.Destination,
		"status":      d.Status,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling
func (d *Delivery) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	if idStr, ok := doc["_id"].(string); ok && idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("invalid UUID format for _id: %w", err)
		}
		d.ID = id
	}
	if idStr, ok := doc["order_id"].(string); ok && idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("invalid UUID format for order_id: %w", err)
		}
		d.OrderID = id
	}

	if v, ok := doc["driver_id"].(string); ok {
		d.DriverID = v
	}
	if v, ok := doc["driver_name"].(string); ok {
		d.DriverName = v
	}
	if v, ok := doc["origin"].(string); ok {
		d.Origin = v
	}
	if v, ok := doc["destination"].(string); ok {
		d.Destination = v
	}
	if v, ok := doc["status"].(string); ok {
		d.Status = v
	}

	d.CreatedAt = asTime(doc["created_at"])
	d.UpdatedAt = asTime(doc["updated_at"])

	return nil
}
