package ports

import (
	"context"
	"time"
)

// EventType identifies a plan lifecycle event
type EventType string

const (
	EventTypePlanStarted      EventType = "plan.started"
	EventTypePlanCacheHit     EventType = "plan.cache_hit"
	EventTypeSectionCompleted EventType = "section.completed"
	EventTypeSectionFailed    EventType = "section.failed"
	EventTypePlanCompleted    EventType = "plan.completed"
)

// Event is published on the event bus while a plan is being built
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	PlanID    string                 `json:"plan_id"`
	PlanKey   string                 `json:"plan_key"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventHandler receives events from a subscription
type EventHandler func(ctx context.Context, event Event) error

// EventBus publishes and delivers plan events
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe registers handler on topic until ctx is cancelled.
	Subscribe(ctx context.Context, topic string, handler EventHandler) error

	Close() error
}

// PlanEventsTopic is the topic the orchestrator publishes on.
const PlanEventsTopic = "plan.events"
