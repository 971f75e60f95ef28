package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aescanero/tripplanner/pkg/ports"
	"go.uber.org/zap/zaptest"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewEventBus(0, zaptest.NewLogger(t))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	err := bus.Subscribe(ctx, ports.PlanEventsTopic, func(ctx context.Context, e ports.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	for i := 0; i < 20; i++ {
		if err := bus.Publish(ctx, ports.PlanEventsTopic, ports.Event{ID: fmt.Sprint(i)}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 20
	})
	for i, id := range got {
		if id != fmt.Sprint(i) {
			t.Fatalf("event %d has id %s, events out of order", i, id)
		}
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := NewEventBus(0, zaptest.NewLogger(t))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.Event, 1)
	_ = bus.Subscribe(ctx, "a", func(ctx context.Context, e ports.Event) error {
		received <- e
		return nil
	})

	_ = bus.Publish(ctx, "b", ports.Event{ID: "wrong"})
	_ = bus.Publish(ctx, "a", ports.Event{ID: "right"})

	select {
	case e := <-received:
		if e.ID != "right" {
			t.Errorf("received %s from the wrong topic", e.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestCancelUnsubscribes(t *testing.T) {
	bus := NewEventBus(0, zaptest.NewLogger(t))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_ = bus.Subscribe(ctx, "t", func(ctx context.Context, e ports.Event) error { return nil })
	_ = bus.Subscribe(context.Background(), "t", func(ctx context.Context, e ports.Event) error { return nil })

	if got := bus.Subscribers("t"); got != 2 {
		t.Fatalf("Subscribers() = %d, want 2", got)
	}

	cancel()
	waitFor(t, func() bool { return bus.Subscribers("t") == 1 })
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	bus := NewEventBus(1, zaptest.NewLogger(t))
	defer bus.Close()

	release := make(chan struct{})
	defer close(release)
	_ = bus.Subscribe(context.Background(), "t", func(ctx context.Context, e ports.Event) error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = bus.Publish(context.Background(), "t", ports.Event{ID: fmt.Sprint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHandlerErrorsDoNotStopDelivery(t *testing.T) {
	bus := NewEventBus(0, zaptest.NewLogger(t))
	defer bus.Close()

	var mu sync.Mutex
	calls := 0
	_ = bus.Subscribe(context.Background(), "t", func(ctx context.Context, e ports.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return errors.New("boom")
	})

	_ = bus.Publish(context.Background(), "t", ports.Event{ID: "1"})
	_ = bus.Publish(context.Background(), "t", ports.Event{ID: "2"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	})
}

func TestClosedBus(t *testing.T) {
	bus := NewEventBus(0, zaptest.NewLogger(t))
	_ = bus.Subscribe(context.Background(), "t", func(ctx context.Context, e ports.Event) error { return nil })

	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if err := bus.Publish(context.Background(), "t", ports.Event{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() error = %v, want ErrClosed", err)
	}
	if err := bus.Subscribe(context.Background(), "t", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe() error = %v, want ErrClosed", err)
	}
}
