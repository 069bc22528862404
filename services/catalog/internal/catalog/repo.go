package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrMenuNotFound         = errors.New("menu not found")
	ErrDiscountCodeNotFound = errors.New("discount code not found")
)

// MenuRepo defines the repository interface for laundromat menus
type MenuRepo interface {
	Create(ctx context.Context, m *LaundromatMenu) error
	Get(ctx context.Context, id uuid.UUID) (*LaundromatMenu, error)
	GetByStoreCategory(ctx context.Context, storeID, category string) (*LaundromatMenu, error)
	List(ctx context.Context) ([]*LaundromatMenu, error)
	ListByStore(ctx context.Context, storeID string) ([]*LaundromatMenu, error)
	Save(ctx context.Context, m *LaundromatMenu) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DiscountRepo defines the repository interface for discount codes
type DiscountRepo interface {
	Create(ctx context.Context, d *DiscountCode) error
	GetByCode(ctx context.Context, code string) (*DiscountCode, error)
	List(ctx context.Context) ([]*DiscountCode, error)
	ListActive(ctx context.Context) ([]*DiscountCode, error)
	Save(ctx context.Context, d *DiscountCode) error
	Delete(ctx context.Context, code string) error
}
