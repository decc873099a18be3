package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

type recordingPublisher struct {
	mu     sync.Mutex
	byKey  map[string][]string
	failOn string
	block  chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{byKey: make(map[string][]string)}
}

func (p *recordingPublisher) Publish(_ context.Context, ev ports.DomainEvent) error {
	if p.block != nil {
		<-p.block
	}
	if ev.ID == p.failOn {
		return errors.New("broker down")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byKey[ev.Key] = append(p.byKey[ev.Key], ev.ID)
	return nil
}

func TestDispatcher_PreservesPerKeyOrder(t *testing.T) {
	next := newRecordingPublisher()
	d := NewDispatcher(3, next, zerolog.Nop())
	d.Start()

	keys := []string{"listing-a", "listing-b", "listing-c"}
	for i := 0; i < 30; i++ {
		key := keys[i%len(keys)]
		ev := ports.DomainEvent{ID: key + "-" + string(rune('0'+i/len(keys))), Key: key, Type: ports.EventOrderPlaced}
		if err := d.Publish(context.Background(), ev); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, key := range keys {
		got := next.byKey[key]
		if len(got) != 10 {
			t.Fatalf("%s: expected 10 events, got %d", key, len(got))
		}
		for i, id := range got {
			want := key + "-" + string(rune('0'+i))
			if id != want {
				t.Errorf("%s: position %d got %s, want %s", key, i, id, want)
			}
		}
	}
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	next := newRecordingPublisher()
	next.failOn = "bad"
	d := NewDispatcher(1, next, zerolog.Nop())
	d.Start()

	_ = d.Publish(context.Background(), ports.DomainEvent{ID: "bad", Key: "k"})
	_ = d.Publish(context.Background(), ports.DomainEvent{ID: "good", Key: "k"})
	_ = d.Close(context.Background())

	if got := next.byKey["k"]; len(got) != 1 || got[0] != "good" {
		t.Errorf("expected only the good event, got %v", got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, newRecordingPublisher(), zerolog.Nop())
	first := d.shardIndex("listing-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("listing-42") != first {
			t.Fatal("shard index must be deterministic")
		}
	}
	if first < 0 || first >= 8 {
		t.Errorf("index %d out of range", first)
	}
}

func TestDispatcher_FullQueueAndClosed(t *testing.T) {
	next := newRecordingPublisher()
	next.block = make(chan struct{})
	d := NewDispatcher(1, next, zerolog.Nop())
	d.Start()

	var full bool
	for i := 0; i < channelBuffer+2; i++ {
		if err := d.Publish(context.Background(), ports.DomainEvent{Key: "k"}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	if !full {
		t.Error("expected ErrQueueFull once the buffer is exhausted")
	}

	close(next.block)
	_ = d.Close(context.Background())

	if err := d.Publish(context.Background(), ports.DomainEvent{Key: "k"}); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("expected ErrDispatcherClosed, got %v", err)
	}
}
