package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aescanero/tripplanner/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
)

func TestStreamKey(t *testing.T) {
	bus := NewStreamsEventBus(nil, "", "", "", zaptest.NewLogger(t))
	if got, want := bus.streamKey(ports.PlanEventsTopic), "tripplanner:events:plan.events"; got != want {
		t.Errorf("streamKey() = %q, want %q", got, want)
	}
}

func TestDecodeMessage(t *testing.T) {
	event := ports.Event{
		ID:      "e1",
		Type:    ports.EventTypeSectionCompleted,
		PlanID:  "p1",
		PlanKey: "goa||100|relax",
		Data:    map[string]interface{}{"section": "hotels"},
	}
	data, _ := json.Marshal(event)

	got, err := decodeMessage(redis.XMessage{ID: "1-0", Values: map[string]interface{}{"data": string(data)}})
	if err != nil {
		t.Fatalf("decodeMessage() error = %v", err)
	}
	if got.ID != "e1" || got.Type != ports.EventTypeSectionCompleted || got.PlanID != "p1" {
		t.Errorf("decodeMessage() = %+v", got)
	}
	if got.Data["section"] != "hotels" {
		t.Errorf("data = %v", got.Data)
	}

	if _, err := decodeMessage(redis.XMessage{ID: "2-0", Values: map[string]interface{}{}}); err == nil {
		t.Error("expected error for message without data")
	}
	if _, err := decodeMessage(redis.XMessage{ID: "3-0", Values: map[string]interface{}{"data": "{"}}); err == nil {
		t.Error("expected error for malformed data")
	}
}

func TestPublishUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	bus := NewStreamsEventBus(client, "test", "", "", zaptest.NewLogger(t))
	if err := bus.Publish(context.Background(), "t", ports.Event{ID: "1"}); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
