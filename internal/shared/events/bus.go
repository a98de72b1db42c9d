package events

import (
	"sync"

	"go.uber.org/zap"
)

// Bus dispatches domain events to registered handlers, synchronously and
// in registration order. Invitation, project and board activity flow
// through a single bus instance.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Register subscribes a handler to every event type it declares.
func (b *Bus) Register(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range handler.Handles() {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
		b.logger.Debug("event handler registered",
			zap.String("event_type", eventType),
		)
	}
}

// Publish delivers an event to its subscribers. A failing handler is
// logged and skipped; it never blocks the remaining handlers or the
// publishing operation.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	b.logger.Debug("publishing event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)

	for _, handler := range handlers {
		if err := handler.Handle(event); err != nil {
			b.logger.Error("event handler failed",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// PublishAll delivers events in order.
func (b *Bus) PublishAll(events []Event) {
	for _, event := range events {
		b.Publish(event)
	}
}
