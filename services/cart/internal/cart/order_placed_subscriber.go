package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"

	"github.com/stuywashndry/washnd/pkg/event"
)

// OrderPlacedSubscriber retires carts once the order service reports a
// checkout: the remote record is deleted and the registry entry dropped, so
// the user starts the next session with a clean slate.
type OrderPlacedSubscriber struct {
	subscriber events.Subscriber
	registry   *Registry
	logger     aqm.Logger
}

func NewOrderPlacedSubscriber(subscriber events.Subscriber, registry *Registry, logger aqm.Logger) *OrderPlacedSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OrderPlacedSubscriber{
		subscriber: subscriber,
		registry:   registry,
		logger:     logger,
	}
}

func (s *OrderPlacedSubscriber) Start(ctx context.Context) error {
	s.logger.Info("Starting OrderPlacedSubscriber for topic: " + event.OrdersTopic)

	if err := s.subscriber.Subscribe(ctx, event.OrdersTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event.OrdersTopic, err)
	}

	return nil
}

func (s *OrderPlacedSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt event.OrderPlacedEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Errorf("Failed to unmarshal order event: %v", err)
		return nil
	}

	if evt.EventType != event.EventOrderPlaced || evt.CartID == "" {
		return nil
	}

	if err := s.registry.Remove(ctx, evt.CartID); err != nil {
		s.logger.Error("cannot retire checked-out cart", "cart_id", evt.CartID, "order_id", evt.OrderID, "error", err)
		return nil
	}

	s.logger.Info("retired checked-out cart", "cart_id", evt.CartID, "order_id", evt.OrderID)
	return nil
}
