package cart

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// ChangeKind identifies what a mutation did to the item set.
type ChangeKind string

const (
	ChangeNone    ChangeKind = ""
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
)

// Cart is the pre-checkout staging area for one user at one laundromat.
// It owns its item set and subtotal; every mutation recomputes the subtotal
// by summing the line subtotals. O(items) per mutation, which is fine since
// carts stay small.
//
// Carts are shared between concurrent request handlers through the registry,
// so every item mutation and read goes through the cart's own mutex. Each
// mutation reports what it did, ChangeNone when nothing matched.
type Cart struct {
	ID        string       `json:"id" bson:"_id"`
	UserID    string       `json:"user_id" bson:"user_id"`
	StoreID   string       `json:"store_id" bson:"store_id"`
	StoreName string       `json:"store_name" bson:"store_name"`
	Items     []*OrderItem `json:"items" bson:"items"`
	Subtotal  float64      `json:"subtotal" bson:"subtotal"`
	Abandoned bool         `json:"abandoned" bson:"abandoned"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`

	mu sync.Mutex
}

// NewCart builds an empty cart for a (user, store) pair. The cart ID is
// derived from the user ID and creation time; uniqueness across users and
// stores is guaranteed by the registry key, not the hash.
func NewCart(userID, storeID, storeName string) *Cart {
	now := time.Now()
	return &Cart{
		ID:        deriveCartID(userID, now),
		UserID:    userID,
		StoreID:   storeID,
		StoreName: storeName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func deriveCartID(userID string, at time.Time) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", userID, at.UnixNano())
	return fmt.Sprintf("%s-%x", userID, h.Sum64())
}

// AddItem merges the incoming item into an identical stored line, adding the
// counts, or inserts it as a new line. The stored item is a deep copy. The
// returned item is a copy of the line the mutation landed on, taken while
// the lock is still held.
func (c *Cart) AddItem(item *OrderItem) (ChangeKind, *OrderItem) {
	if item == nil {
		return ChangeNone, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.Items {
		if existing.Identical(item) {
			existing.Count += item.Count
			c.touch()
			return ChangeUpdated, existing.Clone()
		}
	}
	stored := item.Clone()
	c.Items = append(c.Items, stored)
	c.touch()
	return ChangeAdded, stored.Clone()
}

// UpdateItem overwrites the count of the identical stored line. A missing
// match is a ChangeNone no-op, not an error.
func (c *Cart) UpdateItem(item *OrderItem) (ChangeKind, *OrderItem) {
	if item == nil {
		return ChangeNone, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.Items {
		if existing.Identical(item) {
			existing.Count = item.Count
			c.touch()
			return ChangeUpdated, existing.Clone()
		}
	}
	return ChangeNone, nil
}

// RemoveItem removes the first identical stored line. ChangeNone when absent.
func (c *Cart) RemoveItem(item *OrderItem) (ChangeKind, *OrderItem) {
	if item == nil {
		return ChangeNone, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for idx, existing := range c.Items {
		if existing.Identical(item) {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.touch()
			return ChangeRemoved, existing
		}
	}
	return ChangeNone, nil
}

// TotalQuantity sums the count across every line.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, item := range c.Items {
		total += item.Count
	}
	return total
}

// TotalCountFor sums the count across all lines in the given item's family,
// ignoring choice selection: every configuration of the same catalog item
// counts toward the aggregate.
func (c *Cart) TotalCountFor(item *OrderItem) int {
	if item == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, existing := range c.Items {
		if existing.FamilyID() == item.FamilyID() {
			total += existing.Count
		}
	}
	return total
}

// Snapshot returns a deep copy taken under the cart's mutex. Serialization
// and persistence work from snapshots so a concurrent mutation never walks
// the same item slice.
func (c *Cart) Snapshot() *Cart {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := &Cart{
		ID:        c.ID,
		UserID:    c.UserID,
		StoreID:   c.StoreID,
		StoreName: c.StoreName,
		Items:     make([]*OrderItem, len(c.Items)),
		Subtotal:  c.Subtotal,
		Abandoned: c.Abandoned,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for i, item := range c.Items {
		copied.Items[i] = item.Clone()
	}
	return copied
}

// FindItem returns the stored line identical to the given item, or nil.
func (c *Cart) FindItem(item *OrderItem) *OrderItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.Items {
		if existing.Identical(item) {
			return existing
		}
	}
	return nil
}

// touch is called with c.mu held.
func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
	total := 0.0
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	c.Subtotal = total
}
