package cart

import (
	"context"
	"errors"
)

var (
	ErrCartNotFound   = errors.New("cart not found")
	ErrPushFailed     = errors.New("cart push failed")
	ErrUpdateFailed   = errors.New("cart update failed")
	ErrDeletionFailed = errors.New("cart deletion failed")
)

// CartRepo is the persistence collaborator boundary. Implementations are
// assumed durable and eventually consistent; the domain layer adds no
// durability of its own.
type CartRepo interface {
	// Push creates (or recreates) the remote record for the cart.
	Push(ctx context.Context, cart *Cart) error
	// Update overwrites the item list, subtotal, abandoned flag and
	// updated timestamp of an existing record.
	Update(ctx context.Context, cart *Cart) error
	// Delete removes the remote record.
	Delete(ctx context.Context, cartID string) error
	// Fetch reconstructs one cart, ErrCartNotFound when absent.
	Fetch(ctx context.Context, cartID string) (*Cart, error)
	// FetchAllForUser reconstructs every cart belonging to a user.
	FetchAllForUser(ctx context.Context, userID string) ([]*Cart, error)
}
