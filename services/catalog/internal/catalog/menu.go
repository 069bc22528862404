package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Menu categories. A store carries at most one menu per category.
const (
	MenuCategoryWashing     = "washing"
	MenuCategoryDryCleaning = "dry-cleaning"
)

// ChoiceTemplate is a configurable option on an item template, such as a
// detergent or fold preference. Selected is a per-session overlay and is
// never meaningful on the stored template.
type ChoiceTemplate struct {
	Category       string  `json:"category" bson:"category"`
	Name           string  `json:"name" bson:"name"`
	Description    string  `json:"description" bson:"description"`
	Price          float64 `json:"price" bson:"price"`
	Required       bool    `json:"required" bson:"required"`
	Limit          int     `json:"limit" bson:"limit"`
	OverridesTotal bool    `json:"overrides_total" bson:"overrides_total"`
	Selected       bool    `json:"selected" bson:"selected"`
}

// ItemTemplate is a service offered on a laundromat menu. Count and
// SpecialInstructions are per-session overlays filled in by clients while
// they build a cart; Clear on the parent menu resets them.
type ItemTemplate struct {
	ID                  uuid.UUID        `json:"id"`
	Name                string           `json:"name"`
	Category            string           `json:"category"`
	Description         string           `json:"description"`
	Photo               string           `json:"photo"`
	Price               float64          `json:"price"`
	Count               int              `json:"count"`
	SpecialInstructions string           `json:"special_instructions"`
	Choices             []ChoiceTemplate `json:"choices"`
}

// LaundromatMenu is the set of item templates a store offers for one
// category of service.
type LaundromatMenu struct {
	ID        uuid.UUID      `json:"id"`
	StoreID   string         `json:"store_id"`
	StoreName string         `json:"store_name"`
	Category  string         `json:"category"`
	Items     []ItemTemplate `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clear resets the per-session overlay fields on every template so one
// in-memory menu can seed many cart sessions.
func (m *LaundromatMenu) Clear() {
	for i := range m.Items {
		m.Items[i].Count = 0
		m.Items[i].SpecialInstructions = ""
		for j := range m.Items[i].Choices {
			m.Items[i].Choices[j].Selected = false
		}
	}
}

// EnsureID generates a new UUID if ID is nil
func (m *LaundromatMenu) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	for i := range m.Items {
		if m.Items[i].ID == uuid.Nil {
			m.Items[i].ID = uuid.New()
		}
	}
}

// GetID returns the menu ID
func (m *LaundromatMenu) GetID() uuid.UUID {
	return m.ID
}

// ResourceType returns the resource type for URL generation
func (m *LaundromatMenu) ResourceType() string {
	return "menus"
}

// BeforeCreate sets up the menu before creation
func (m *LaundromatMenu) BeforeCreate() {
	m.EnsureID()
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	// Overlays never persist
	m.Clear()
}

// BeforeUpdate updates the timestamp
func (m *LaundromatMenu) BeforeUpdate() {
	m.EnsureID()
	m.UpdatedAt = time.Now()
	m.Clear()
}

// MarshalBSON custom BSON marshaling for UUID handling
func (m *LaundromatMenu) MarshalBSON() ([]byte, error) {
	items := make([]bson.M, len(m.Items))
	for i, it := range m.Items {
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
			}
		}
		items[i] = bson.M{
			"id":          it.ID.String(),
			"name":        it.Name,
			"category":    it.Category,
			"description": it.Description,
			"photo":       it.Photo,
			"price":       it.Price,
			"choices":     choices,
		}
	}

	return bson.Marshal(bson.M{
		"_id":        m.ID.String(),
		"store_id":   m.StoreID,
		"store_name": m.StoreName,
		"category":   m.Category,
		"items":      items,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling
func (m *LaundromatMenu) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	if idStr, ok := doc["_id"].(string); ok && idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("invalid UUID format for _id: %w", err)
		}
		m.ID = id
	}

	if v, ok := doc["store_id"].(string); ok {
		m.StoreID = v
	}
	if v, ok := doc["store_name"].(string); ok {
		m.StoreName = v
	}
	if v, ok := doc["category"].(string); ok {
		m.Category = v
	}

	if itemsArr, ok := doc["items"].(bson.A); ok {
		m.Items = make([]ItemTemplate, len(itemsArr))
		for i, raw := range itemsArr {
			itemMap, ok := raw.(bson.M)
			if !ok {
				continue
			}
			if idStr, ok := itemMap["id"].(string); ok {
				id, _ := uuid.Parse(idStr)
				m.Items[i].ID = id
			}
			if v, ok := itemMap["name"].(string); ok {
				m.Items[i].Name = v
			}
			if v, ok := itemMap["category"].(string); ok {
				m.Items[i].Category = v
			}
			if v, ok := itemMap["description"].(string); ok {
				m.Items[i].Description = v
			}
			if v, ok := itemMap["photo"].(string); ok {
				m.Items[i].Photo = v
			}
			m.Items[i].Price = asFloat(itemMap["price"])

			if choicesArr, ok := itemMap["choices"].(bson.A); ok {
				m.Items[i].Choices = make([]ChoiceTemplate, len(choicesArr))
				for j, rawChoice := range choicesArr {
					choiceMap, ok := rawChoice.(bson.M)
					if !ok {
						continue
					}
					if v, ok := choiceMap["category"].(string); ok {
						m.Items[i].Choices[j].Category = v
					}
					if v, ok := choiceMap["name"].(string); ok {
						m.Items[i].Choices[j].Name = v
					}
					if v, ok := choiceMap["description"].(string); ok {
						m.Items[i].Choices[j].Description = v
					}
					m.Items[i].Choices[j].Price = asFloat(choiceMap["price"])
					if v, ok := choiceMap["required"].(bool); ok {
						m.Items[i].Choices[j].Required = v
					}
					m.Items[i].Choices[j].Limit = asInt(choiceMap["limit"])
					if v, ok := choiceMap["overrides_total"].(bool); ok {
						m.Items[i].Choices[j].OverridesTotal = v
					}
				}
			}
		}
	}

	m.CreatedAt = asTime(doc["created_at"])
	m.UpdatedAt = asTime(doc["updated_at"])

	return nil
}
