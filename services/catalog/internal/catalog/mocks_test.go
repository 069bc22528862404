package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockMenuRepo is a mock implementation of MenuRepo for testing
type MockMenuRepo struct {
	mu    sync.RWMutex
	menus map[uuid.UUID]*LaundromatMenu
}

func NewMockMenuRepo() *MockMenuRepo {
	return &MockMenuRepo{menus: make(map[uuid.UUID]*LaundromatMenu)}
}

func (m *MockMenuRepo) Create(ctx context.Context, menu *LaundromatMenu) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menus[menu.ID] = menu
	return nil
}

func (m *MockMenuRepo) Get(ctx context.Context, id uuid.UUID) (*LaundromatMenu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	menu, ok := m.menus[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, id)
	}
	return menu, nil
}

func (m *MockMenuRepo) GetByStoreCategory(ctx context.Context, storeID, category string) (*LaundromatMenu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, menu := range m.menus {
		if menu.StoreID == storeID && menu.Category == category {
			return menu, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrMenuNotFound, storeID, category)
}

func (m *MockMenuRepo) List(ctx context.Context) ([]*LaundromatMenu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*LaundromatMenu
	for _, menu := range m.menus {
		result = append(result, menu)
	}
	return result, nil
}

func (m *MockMenuRepo) ListByStore(ctx context.Context, storeID string) ([]*LaundromatMenu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*LaundromatMenu
	for _, menu := range m.menus {
		if menu.StoreID == storeID {
			result = append(result, menu)
		}
	}
	return result, nil
}

func (m *MockMenuRepo) Save(ctx context.Context, menu *LaundromatMenu) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.menus[menu.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrMenuNotFound, menu.ID)
	}
	m.menus[menu.ID] = menu
	return nil
}

func (m *MockMenuRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.menus[id]; !ok {
		return fmt.Errorf("%w: %s", ErrMenuNotFound, id)
	}
	delete(m.menus, id)
	return nil
}

// MockDiscountRepo is a mock implementation of DiscountRepo for testing
type MockDiscountRepo struct {
	mu    sync.RWMutex
	codes map[string]*DiscountCode
}

func NewMockDiscountRepo() *MockDiscountRepo {
	return &MockDiscountRepo{codes: make(map[string]*DiscountCode)}
}

func (m *MockDiscountRepo) Create(ctx context.Context, d *DiscountCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[d.Code] = d
	return nil
}

func (m *MockDiscountRepo) GetByCode(ctx context.Context, code string) (*DiscountCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.codes[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDiscountCodeNotFound, code)
	}
	return d, nil
}

func (m *MockDiscountRepo) List(ctx context.Context) ([]*DiscountCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*DiscountCode
	for _, d := range m.codes {
		result = append(result, d)
	}
	return result, nil
}

func (m *MockDiscountRepo) ListActive(ctx context.Context) ([]*DiscountCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*DiscountCode
	for _, d := range m.codes {
		if d.Active {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *MockDiscountRepo) Save(ctx context.Context, d *DiscountCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[d.Code]; !ok {
		return fmt.Errorf("%w: %s", ErrDiscountCodeNotFound, d.Code)
	}
	m.codes[d.Code] = d
	return nil
}

func (m *MockDiscountRepo) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[code]; !ok {
		return fmt.Errorf("%w: %s", ErrDiscountCodeNotFound, code)
	}
	delete(m.codes, code)
	return nil
}
