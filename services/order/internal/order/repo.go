package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrDeliveryNotFound = errors.New("delivery not found")
)

// OrderRepo defines the repository interface for orders
type OrderRepo interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	ListByStatus(ctx context.Context, status string) ([]*Order, error)
	Save(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeliveryRepo defines the repository interface for deliveries
type DeliveryRepo interface {
	Create(ctx context.Context, d *Delivery) error
	Get(ctx context.Context, id uuid.UUID) (*Delivery, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*Delivery, error)
	List(ctx context.Context) ([]*Delivery, error)
	Save(ctx context.Context, d *Delivery) error
	Delete(ctx context.Context, id uuid.UUID) error
}
