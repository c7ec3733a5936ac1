package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/pkg/config"
)

type collector struct {
	mu   sync.Mutex
	refs []string
	err  error
}

func (c *collector) PublishTransferCompleted(ctx context.Context, event *domain.TransferCompleted) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs = append(c.refs, event.Reference)
	return c.err
}

func (c *collector) seen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.refs...)
}

// gate blocks every delivery until released or the delivery times out.
type gate struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{release: make(chan struct{}), started: make(chan struct{})}
}

func (g *gate) PublishTransferCompleted(ctx context.Context, event *domain.TransferCompleted) error {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func eventsConfig(queue int, timeout time.Duration) config.EventsConfig {
	return config.EventsConfig{QueueSize: queue, Workers: 1, PublishTimeout: timeout}
}

func TestDispatcherDeliversInOrderAndDrainsOnClose(t *testing.T) {
	a, b := &collector{}, &collector{err: errors.New("broker down")}
	d := NewDispatcher(eventsConfig(16, time.Second), zerolog.Nop(), a, b)

	for i := 0; i < 10; i++ {
		if err := d.PublishTransferCompleted(context.Background(), &domain.TransferCompleted{Reference: fmt.Sprintf("ref-%d", i)}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	d.Close()

	for _, c := range []*collector{a, b} {
		got := c.seen()
		if len(got) != 10 {
			t.Fatalf("delivered %d events, want 10", len(got))
		}
		for i, ref := range got {
			if want := fmt.Sprintf("ref-%d", i); ref != want {
				t.Errorf("event %d = %s, want %s", i, ref, want)
			}
		}
	}
}

func TestDispatcherEnqueueDoesNotWaitForPublishers(t *testing.T) {
	g := newGate()
	d := NewDispatcher(eventsConfig(1, 5*time.Second), zerolog.Nop(), g)
	defer func() {
		close(g.release)
		d.Close()
	}()

	start := time.Now()
	if err := d.PublishTransferCompleted(context.Background(), &domain.TransferCompleted{Reference: "first"}); err != nil {
		t.Fatalf("enqueue first: %v", err)
	}
	<-g.started

	// The worker is stuck on "first"; one slot is left in the queue.
	if err := d.PublishTransferCompleted(context.Background(), &domain.TransferCompleted{Reference: "second"}); err != nil {
		t.Fatalf("enqueue second: %v", err)
	}
	if err := d.PublishTransferCompleted(context.Background(), &domain.TransferCompleted{Reference: "third"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("enqueue third: err = %v, want ErrQueueFull", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("enqueueing took %v", elapsed)
	}
}

func TestDispatcherTimesOutSlowPublishers(t *testing.T) {
	g := newGate()
	d := NewDispatcher(eventsConfig(4, 50*time.Millisecond), zerolog.Nop(), g)

	if err := d.PublishTransferCompleted(context.Background(), &domain.TransferCompleted{Reference: "stuck"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after the publish timeout")
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(eventsConfig(4, time.Second), zerolog.Nop())
	d.Close()
	d.Close()

	if err := d.PublishTransferCompleted(context.Background(), &domain.TransferCompleted{}); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("err = %v, want ErrDispatcherClosed", err)
	}
}
