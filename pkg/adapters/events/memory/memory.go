package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aescanero/tripplanner/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBuffer is the number of undelivered events kept per subscription.
const DefaultBuffer = 64

// ErrClosed is returned when publishing or subscribing on a closed bus.
var ErrClosed = errors.New("event bus closed")

// EventBus implements ports.EventBus in process. Every subscription gets its
// own ordered queue; a subscriber that falls behind loses events instead of
// slowing down publishers.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*subscription
	closed      bool
	buffer      int
	logger      *zap.Logger
}

type subscription struct {
	id      string
	topic   string
	events  chan ports.Event
	handler ports.EventHandler
	done    chan struct{}
	once    sync.Once
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// NewEventBus creates a new in-memory event bus
func NewEventBus(buffer int, logger *zap.Logger) *EventBus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &EventBus{
		subscribers: make(map[string]map[string]*subscription),
		buffer:      buffer,
		logger:      logger,
	}
}

// Publish queues event for every subscriber of topic
func (e *EventBus) Publish(ctx context.Context, topic string, event ports.Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}

	for _, sub := range e.subscribers[topic] {
		select {
		case sub.events <- event:
		default:
			e.logger.Warn("subscriber queue full, dropping event",
				zap.String("topic", topic),
				zap.String("subscription_id", sub.id),
				zap.String("event_type", string(event.Type)))
		}
	}
	return nil
}

// Subscribe delivers events on topic to handler, in publish order, until ctx
// is cancelled or the bus is closed.
func (e *EventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	sub := &subscription{
		id:      uuid.New().String(),
		topic:   topic,
		events:  make(chan ports.Event, e.buffer),
		handler: handler,
		done:    make(chan struct{}),
	}
	if e.subscribers[topic] == nil {
		e.subscribers[topic] = make(map[string]*subscription)
	}
	e.subscribers[topic][sub.id] = sub

	go e.deliver(ctx, sub)

	e.logger.Debug("subscribed to topic",
		zap.String("topic", topic),
		zap.String("subscription_id", sub.id))

	return nil
}

// Subscribers returns the number of live subscriptions on topic
func (e *EventBus) Subscribers(topic string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subscribers[topic])
}

// Close stops every subscription
func (e *EventBus) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	for _, subs := range e.subscribers {
		for _, sub := range subs {
			sub.stop()
		}
	}
	e.subscribers = make(map[string]map[string]*subscription)
	return nil
}

// deliver runs a subscription's handler loop
func (e *EventBus) deliver(ctx context.Context, sub *subscription) {
	defer e.unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		case event := <-sub.events:
			if err := sub.handler(ctx, event); err != nil {
				e.logger.Debug("event handler failed",
					zap.String("topic", sub.topic),
					zap.String("subscription_id", sub.id),
					zap.String("event_id", event.ID),
					zap.Error(err))
			}
		}
	}
}

// unsubscribe removes a subscription from its topic
func (e *EventBus) unsubscribe(sub *subscription) {
	sub.stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subscribers[sub.topic]
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(e.subscribers, sub.topic)
	}
}
