package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/aquamarinepk/aqm"
)

type registryKey struct {
	userID  string
	storeID string
}

// Registry is the process-wide lookup from (user, store) to active cart.
// Constructor-injected rather than a package global so tests get isolated
// instances, and mutex-guarded since handlers and subscribers both touch it.
type Registry struct {
	mu     sync.RWMutex
	carts  map[registryKey]*Cart
	repo   CartRepo
	logger aqm.Logger

	// createMu serializes the delete-then-create replace sequence. Holding
	// r.mu across the remote calls would stall every read, so creates take
	// their own lock for the full sequence instead.
	createMu sync.Mutex
}

func NewRegistry(repo CartRepo, logger aqm.Logger) *Registry {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Registry{
		carts:  make(map[registryKey]*Cart),
		repo:   repo,
		logger: logger,
	}
}

// CreateCartForLaundromat enforces the at-most-one-cart-per-(user, store)
// invariant: any existing cart for the pair is deleted remotely and locally
// before the new empty cart is created and pushed. A destructive replace,
// not a merge. A failed remote delete aborts the replace so the pair never
// ends up with two remote records. Concurrent creates for the same pair are
// serialized by createMu, so exactly one record survives.
func (r *Registry) CreateCartForLaundromat(ctx context.Context, userID, storeID, storeName string) (*Cart, error) {
	key := registryKey{userID: userID, storeID: storeID}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	r.mu.RLock()
	existing := r.carts[key]
	r.mu.RUnlock()

	if existing != nil {
		if err := r.repo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("cannot delete existing cart %s: %w", existing.ID, err)
		}
		r.mu.Lock()
		delete(r.carts, key)
		r.mu.Unlock()
		r.logger.Info("replaced existing cart", "cart_id", existing.ID, "user_id", userID, "store_id", storeID)
	}

	fresh := NewCart(userID, storeID, storeName)
	if err := r.repo.Push(ctx, fresh); err != nil {
		return nil, fmt.Errorf("cannot push new cart %s: %w", fresh.ID, err)
	}

	r.mu.Lock()
	r.carts[key] = fresh
	r.mu.Unlock()

	return fresh, nil
}

// Active returns the in-memory cart for a (user, store) pair, if any.
func (r *Registry) Active(userID, storeID string) (*Cart, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[registryKey{userID: userID, storeID: storeID}]
	return c, ok
}

// ByID scans the registry for a cart with the given ID.
func (r *Registry) ByID(cartID string) (*Cart, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.carts {
		if c.ID == cartID {
			return c, true
		}
	}
	return nil, false
}

// ForUser returns every registered cart belonging to a user.
func (r *Registry) ForUser(userID string) []*Cart {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*Cart
	for key, c := range r.carts {
		if key.userID == userID {
			result = append(result, c)
		}
	}
	return result
}

// Track registers a reconstructed cart, replacing any entry for the pair.
func (r *Registry) Track(c *Cart) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[registryKey{userID: c.UserID, storeID: c.StoreID}] = c
}

// Forget drops the local entry for a cart ID without touching the remote
// record. Used when the order service reports a checkout.
func (r *Registry) Forget(cartID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, c := range r.carts {
		if c.ID == cartID {
			delete(r.carts, key)
			return true
		}
	}
	return false
}

// Remove deletes a cart both remotely and locally.
func (r *Registry) Remove(ctx context.Context, cartID string) error {
	if err := r.repo.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("cannot delete cart %s: %w", cartID, err)
	}
	r.Forget(cartID)
	return nil
}

// Size reports the number of registered carts.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}
