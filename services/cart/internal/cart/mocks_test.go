package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/aquamarinepk/aqm/events"
)

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu          sync.Mutex
	Published   []PublishedMessage
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

type PublishedMessage struct {
	Topic string
	Msg   []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedMessage{Topic: topic, Msg: msg})
	return nil
}

// MockSubscriber is a mock implementation of events.Subscriber for testing
type MockSubscriber struct {
	mu       sync.Mutex
	handlers map[string]events.HandlerFunc
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{handlers: make(map[string]events.HandlerFunc)}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

// Emit delivers a message to the registered handler for a topic.
func (m *MockSubscriber) Emit(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	handler := m.handlers[topic]
	m.mu.Unlock()
	if handler == nil {
		return fmt.Errorf("no handler for topic %s", topic)
	}
	return handler(ctx, msg)
}

// MockCartRepo is a mock implementation of CartRepo for testing
type MockCartRepo struct {
	mu    sync.RWMutex
	carts map[string]*Cart

	PushCalls   int
	DeleteCalls []string

	PushFunc   func(ctx context.Context, cart *Cart) error
	UpdateFunc func(ctx context.Context, cart *Cart) error
	DeleteFunc func(ctx context.Context, cartID string) error
	FetchFunc  func(ctx context.Context, cartID string) (*Cart, error)
}

func NewMockCartRepo() *MockCartRepo {
	return &MockCartRepo{
		carts: make(map[string]*Cart),
	}
}

func (m *MockCartRepo) Push(ctx context.Context, c *Cart) error {
	if m.PushFunc != nil {
		return m.PushFunc(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushCalls++
	m.carts[c.ID] = c
	return nil
}

func (m *MockCartRepo) Update(ctx context.Context, c *Cart) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[c.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrCartNotFound, c.ID)
	}
	m.carts[c.ID] = c
	return nil
}

func (m *MockCartRepo) Delete(ctx context.Context, cartID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, cartID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, cartID)
	if _, ok := m.carts[cartID]; !ok {
		return fmt.Errorf("%w: %s", ErrCartNotFound, cartID)
	}
	delete(m.carts, cartID)
	return nil
}

func (m *MockCartRepo) Fetch(ctx context.Context, cartID string) (*Cart, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, cartID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.carts[cartID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCartNotFound, cartID)
	}
	return c, nil
}

func (m *MockCartRepo) FetchAllForUser(ctx context.Context, userID string) ([]*Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Cart
	for _, c := range m.carts {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockCartRepo) Stored(cartID string) (*Cart, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.carts[cartID]
	return c, ok
}

func (m *MockCartRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.carts)
}

// fakeDiscountSource resolves discount codes from a fixed map.
type fakeDiscountSource struct {
	codes map[string]*DiscountCode
}

func (f *fakeDiscountSource) FetchDiscountCode(ctx context.Context, code string) (*DiscountCode, error) {
	dc, ok := f.codes[code]
	if !ok {
		return nil, fmt.Errorf("discount code %s not found", code)
	}
	return dc, nil
}
