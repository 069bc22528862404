package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockOrderRepo is a mock implementation of OrderRepo for testing
type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*Order
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{orders: make(map[uuid.UUID]*Order)}
}

func (m *MockOrderRepo) Create(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, nil
}

func (m *MockOrderRepo) List(ctx context.Context) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		result = append(result, o)
	}
	return result, nil
}

func (m *MockOrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *MockOrderRepo) ListByStatus(ctx context.Context, status string) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.Status == status {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, o.ID)
	}
	m.orders[o.ID] = o
	return nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	delete(m.orders, id)
	return nil
}

func (m *MockOrderRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// MockDeliveryRepo is a mock implementation of DeliveryRepo for testing
type MockDeliveryRepo struct {
	mu         sync.RWMutex
	deliveries map[uuid.UUID]*Delivery
}

func NewMockDeliveryRepo() *MockDeliveryRepo {
	return &MockDeliveryRepo{deliveries: make(map[uuid.UUID]*Delivery)}
}

func (m *MockDeliveryRepo) Create(ctx context.Context, d *Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[d.ID] = d
	return nil
}

func (m *MockDeliveryRepo) Get(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.deliveries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeliveryNotFound, id)
	}
	return d, nil
}

func (m *MockDeliveryRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.deliveries {
		if d.OrderID == orderID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: order %s", ErrDeliveryNotFound, orderID)
}

func (m *MockDeliveryRepo) List(ctx context.Context) ([]*Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Delivery
	for _, d := range m.deliveries {
		result = append(result, d)
	}
	return result, nil
}

func (m *MockDeliveryRepo) Save(ctx context.Context, d *Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deliveries[d.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrDeliveryNotFound, d.ID)
	}
	m.deliveries[d.ID] = d
	return nil
}

func (m *MockDeliveryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deliveries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrDeliveryNotFound, id)
	}
	delete(m.deliveries, id)
	return nil
}

// fakeCartFetcher serves canned snapshots keyed by cart ID.
type fakeCartFetcher struct {
	carts map[string]*CartSnapshot
	err   error
}

func (f *fakeCartFetcher) FetchCart(ctx context.Context, cartID string) (*CartSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snapshot, ok := f.carts[cartID]
	if !ok {
		return nil, fmt.Errorf("cart %s not found", cartID)
	}
	return snapshot, nil
}

// decliningPaymentProcessor refuses every authorization.
type decliningPaymentProcessor struct{}

func (decliningPaymentProcessor) Authorize(ctx context.Context, customerID string, amount float64) error {
	return fmt.Errorf("card declined")
}

// MockPublisher records published messages for assertions
type MockPublisher struct {
	mu       sync.Mutex
	Topics   []string
	Messages [][]byte
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Topics = append(m.Topics, topic)
	m.Messages = append(m.Messages, msg)
	return nil
}

func (m *MockPublisher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

func (m *MockPublisher) Last() (string, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return "", nil
	}
	return m.Topics[len(m.Topics)-1], m.Messages[len(m.Messages)-1]
}
