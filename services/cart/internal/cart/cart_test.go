package cart

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testCart() *Cart {
	return NewCart("user-1", "store-1", "Stuy Wash N' Dry")
}

func itemWithPrice(id string, price float64, count int, discount float64) *OrderItem {
	return &OrderItem{
		ID:       uuid.MustParse(id),
		Name:     "Item " + id[:8],
		Category: "washing",
		Price:    price,
		Count:    count,
		Discount: discount,
	}
}

func TestNewCart(t *testing.T) {
	c := testCart()

	if c.ID == "" {
		t.Error("NewCart() should derive a cart ID")
	}
	if c.UserID != "user-1" || c.StoreID != "store-1" {
		t.Errorf("NewCart() scoped to (%q, %q)", c.UserID, c.StoreID)
	}
	if len(c.Items) != 0 || c.Subtotal != 0 {
		t.Error("NewCart() should start empty")
	}
}

func TestDeriveCartID(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := deriveCartID("user-1", at)
	b := deriveCartID("user-1", at.Add(time.Nanosecond))

	if a == b {
		t.Error("different creation times should derive different cart IDs")
	}
	if a != deriveCartID("user-1", at) {
		t.Error("cart ID derivation should be deterministic")
	}
}

func TestAddItemMergesIdentical(t *testing.T) {
	c := testCart()

	first := itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0)
	second := itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 3, 0)

	c.AddItem(first)
	c.AddItem(second)

	if len(c.Items) != 1 {
		t.Fatalf("expected 1 stored item, got %d", len(c.Items))
	}
	if c.Items[0].Count != 5 {
		t.Errorf("merged count = %d, want 5", c.Items[0].Count)
	}
	if c.Subtotal != 50 {
		t.Errorf("Subtotal = %v, want 50", c.Subtotal)
	}
}

func TestAddItemStoresCopy(t *testing.T) {
	c := testCart()
	item := itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 1, 0)
	item.Choices = []ItemChoice{{Category: "size", Name: "Large", Price: 4.5, Selected: true}}

	c.AddItem(item)
	item.Choices[0].Selected = false

	if !c.Items[0].Choices[0].Selected {
		t.Error("cart should own a snapshot of the item's choices")
	}
}

func TestCartScenario(t *testing.T) {
	// Worked scenario: [{10,2,0},{5,1,1}] -> 24, then merging a third
	// identical to item 1 with count 1 -> 34.
	c := testCart()

	c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))
	c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440002", 5, 1, 1))

	if c.Subtotal != 24 {
		t.Fatalf("Subtotal = %v, want 24", c.Subtotal)
	}

	c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 1, 0))

	if len(c.Items) != 2 {
		t.Fatalf("expected 2 stored items, got %d", len(c.Items))
	}
	if c.Items[0].Count != 3 {
		t.Errorf("item 1 count = %d, want 3", c.Items[0].Count)
	}
	if c.Subtotal != 34 {
		t.Errorf("Subtotal = %v, want 34", c.Subtotal)
	}
}

func TestUpdateItem(t *testing.T) {
	t.Run("overwritesCount", func(t *testing.T) {
		c := testCart()
		c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))

		update := itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 7, 0)
		c.UpdateItem(update)

		if c.Items[0].Count != 7 {
			t.Errorf("count = %d, want 7", c.Items[0].Count)
		}
		if c.Subtotal != 70 {
			t.Errorf("Subtotal = %v, want 70", c.Subtotal)
		}
	})

	t.Run("silentNoOpWhenAbsent", func(t *testing.T) {
		c := testCart()
		c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))

		stranger := itemWithPrice("550e8400-e29b-41d4-a716-446655440099", 3, 9, 0)
		c.UpdateItem(stranger)

		if len(c.Items) != 1 || c.Items[0].Count != 2 || c.Subtotal != 20 {
			t.Error("updating an absent item should change nothing")
		}
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("removesIdenticalMatch", func(t *testing.T) {
		c := testCart()
		c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))
		c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440002", 5, 1, 0))

		c.RemoveItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))

		if len(c.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(c.Items))
		}
		if c.Subtotal != 5 {
			t.Errorf("Subtotal = %v, want 5", c.Subtotal)
		}
	})

	t.Run("noOpWhenAbsent", func(t *testing.T) {
		c := testCart()
		c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))

		c.RemoveItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440099", 3, 1, 0))

		if len(c.Items) != 1 || c.Subtotal != 20 {
			t.Error("removing an absent item should change nothing")
		}
	})
}

func TestTotalQuantity(t *testing.T) {
	c := testCart()
	c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))
	c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440002", 5, 3, 0))

	if got := c.TotalQuantity(); got != 5 {
		t.Errorf("TotalQuantity() = %d, want 5", got)
	}
}

func TestTotalCountFor(t *testing.T) {
	c := testCart()

	large := itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0)
	large.Choices = []ItemChoice{{Category: "size", Name: "Large", Price: 4.5, Selected: true}}
	small := itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 3, 0)
	small.Choices = []ItemChoice{{Category: "size", Name: "Small", Price: 2.5, Selected: true}}
	other := itemWithPrice("550e8400-e29b-41d4-a716-446655440002", 5, 7, 0)

	c.AddItem(large)
	c.AddItem(small)
	c.AddItem(other)

	// aggregate across the whole family, ignoring choice selection
	if got := c.TotalCountFor(large); got != 5 {
		t.Errorf("TotalCountFor() = %d, want 5", got)
	}
	if got := c.TotalCountFor(other); got != 7 {
		t.Errorf("TotalCountFor() = %d, want 7", got)
	}
	if got := c.TotalCountFor(nil); got != 0 {
		t.Errorf("TotalCountFor(nil) = %d, want 0", got)
	}
}

func TestMutationReportsChange(t *testing.T) {
	c := testCart()

	kind, changed := c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))
	if kind != ChangeAdded || changed == nil {
		t.Errorf("first AddItem() = (%q, %v), want added with item", kind, changed)
	}

	kind, changed = c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 1, 0))
	if kind != ChangeUpdated || changed == nil || changed.Count != 3 {
		t.Errorf("merging AddItem() = (%q, %v), want updated with count 3", kind, changed)
	}

	kind, changed = c.RemoveItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 3, 0))
	if kind != ChangeRemoved || changed == nil {
		t.Errorf("RemoveItem() = (%q, %v), want removed with item", kind, changed)
	}

	// Absent line: no change to report.
	kind, changed = c.RemoveItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 3, 0))
	if kind != ChangeNone || changed != nil {
		t.Errorf("no-op RemoveItem() = (%q, %v), want none", kind, changed)
	}
	kind, changed = c.UpdateItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440099", 5, 1, 0))
	if kind != ChangeNone || changed != nil {
		t.Errorf("no-op UpdateItem() = (%q, %v), want none", kind, changed)
	}
}

func TestCartConcurrentMutations(t *testing.T) {
	c := testCart()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 1, 0))
				if n%2 == 0 {
					c.TotalQuantity()
					c.Snapshot()
				}
			}
		}(w)
	}
	wg.Wait()

	if got := c.TotalQuantity(); got != workers*perWorker {
		t.Errorf("TotalQuantity() = %d, want %d", got, workers*perWorker)
	}
	if len(c.Items) != 1 {
		t.Errorf("identical lines should merge, got %d lines", len(c.Items))
	}
	if c.Subtotal != float64(workers*perWorker)*10 {
		t.Errorf("Subtotal = %v, want %v", c.Subtotal, float64(workers*perWorker)*10)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	c := testCart()
	c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440001", 10, 2, 0))

	snap := c.Snapshot()
	c.AddItem(itemWithPrice("550e8400-e29b-41d4-a716-446655440002", 5, 1, 0))
	snap.Items[0].Count = 99

	if len(snap.Items) != 1 {
		t.Errorf("snapshot has %d lines, want 1", len(snap.Items))
	}
	if got := c.Items[0].Count; got != 2 {
		t.Errorf("mutating the snapshot changed the cart: count = %d, want 2", got)
	}
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		code     DiscountCode
		want     float64
	}{
		{
			name:     "fractionalPercentage",
			subtotal: 100,
			code:     DiscountCode{Code: "TEN", Percentage: 0.1},
			want:     10,
		},
		{
			name:     "wholePercentageNormalized",
			subtotal: 100,
			code:     DiscountCode{Code: "TEN", Percentage: 10},
			want:     10,
		},
		{
			name:     "flatValue",
			subtotal: 100,
			code:     DiscountCode{Code: "5OFF", Value: 5},
			want:     5,
		},
		{
			name:     "flatValueEqualToSubtotal",
			subtotal: 5,
			code:     DiscountCode{Code: "5OFF", Value: 5},
			want:     5,
		},
		{
			name:     "flatValueAboveSubtotalClampsToZero",
			subtotal: 3,
			code:     DiscountCode{Code: "5OFF", Value: 5},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCart()
			c.Subtotal = tt.subtotal

			if got := c.ComputeDiscount(tt.code); got != tt.want {
				t.Errorf("ComputeDiscount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscountCodeValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		code     DiscountCode
		subtotal float64
		wantErr  error
	}{
		{
			name:     "valid",
			code:     DiscountCode{Code: "TEN", Percentage: 0.1, ExpirationDate: now.Add(time.Hour)},
			subtotal: 50,
		},
		{
			name:     "noExpirySet",
			code:     DiscountCode{Code: "TEN", Percentage: 0.1},
			subtotal: 50,
		},
		{
			name:     "expired",
			code:     DiscountCode{Code: "TEN", Percentage: 0.1, ExpirationDate: now.Add(-time.Hour)},
			subtotal: 50,
			wantErr:  ErrDiscountExpired,
		},
		{
			name:     "belowMinimum",
			code:     DiscountCode{Code: "TEN", Percentage: 0.1, MinimumOrderValue: 100},
			subtotal: 50,
			wantErr:  ErrBelowMinimumOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.code.Validate(tt.subtotal, now)
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
