package catalog

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateMenu validates a laundromat menu before creation or update
func ValidateMenu(m *LaundromatMenu) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(m.StoreID) == "" {
		errors = append(errors, ValidationError{
			Field:   "store_id",
			Message: "store_id is required",
		})
	}

	if m.Category != MenuCategoryWashing && m.Category != MenuCategoryDryCleaning {
		errors = append(errors, ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("category must be %q or %q", MenuCategoryWashing, MenuCategoryDryCleaning),
		})
	}

	for i, item := range m.Items {
		if strings.TrimSpace(item.Name) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("items[%d].name", i),
				Message: "item name is required",
			})
		}
		if item.Price < 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("items[%d].price", i),
				Message: "item price cannot be negative",
			})
		}
		for j, choice := range item.Choices {
			if strings.TrimSpace(choice.Name) == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("items[%d].choices[%d].name", i, j),
					Message: "choice name is required",
				})
			}
			if choice.Price < 0 {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("items[%d].choices[%d].price", i, j),
					Message: "choice price cannot be negative",
				})
			}
			if choice.Limit < 0 {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("items[%d].choices[%d].limit", i, j),
					Message: "choice limit cannot be negative",
				})
			}
		}
	}

	return errors
}

// ValidateDiscountCode validates a discount code before creation or update
func ValidateDiscountCode(d *DiscountCode) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(d.Code) == "" {
		errors = append(errors, ValidationError{
			Field:   "code",
			Message: "code is required",
		})
	}

	hasPercentage := d.Percentage != 0
	hasValue := d.Value != 0
	if hasPercentage == hasValue {
		errors = append(errors, ValidationError{
			Field:   "percentage",
			Message: "exactly one of percentage or value must be set",
		})
	}

	if d.Percentage < 0 || d.Percentage > 100 {
		errors = append(errors, ValidationError{
			Field:   "percentage",
			Message: "percentage must be between 0 and 100",
		})
	}
	if d.Value < 0 {
		errors = append(errors, ValidationError{
			Field:   "value",
			Message: "value cannot be negative",
		})
	}
	if d.MinimumOrderValue < 0 {
		errors = append(errors, ValidationError{
			Field:   "minimum_order_value",
			Message: "minimum_order_value cannot be negative",
		})
	}

	return errors
}
