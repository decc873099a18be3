package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harvestlink/marketplace-api/internal/core/ports"
	"github.com/harvestlink/marketplace-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deliverTimeout = 5 * time.Second
)

// ErrQueueFull is returned by Publish when the event's worker is backed up.
var ErrQueueFull = errors.New("event queue full")

// ErrDispatcherClosed is returned by Publish after Close.
var ErrDispatcherClosed = errors.New("event dispatcher closed")

// Dispatcher decouples request handling from the broker. Events are routed
// to a fixed set of workers by hashing their Key, so events for the same
// listing are delivered in the order they were published.
type Dispatcher struct {
	workers []chan ports.DomainEvent
	next    ports.EventPublisher
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers that
// hand events to next. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, next ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.DomainEvent, numWorkers),
		next:    next,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.DomainEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. They run until Close drains them.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Publish enqueues ev without blocking. The broker call happens later on
// the worker that owns ev.Key.
func (d *Dispatcher) Publish(_ context.Context, ev ports.DomainEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	idx := d.shardIndex(ev.Key)
	select {
	case d.workers[idx] <- ev:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.EventsPublishedTotal.WithLabelValues(ev.Type, "dropped").Inc()
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until queued events are delivered
// or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan ports.DomainEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for ev := range ch {
		metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		err := d.next.Publish(ctx, ev)
		cancel()

		if err != nil {
			metrics.EventsPublishedTotal.WithLabelValues(ev.Type, "error").Inc()
			d.log.Error().Err(err).
				Str("event_id", ev.ID).
				Str("event_type", ev.Type).
				Int("worker_id", id).
				Msg("event publish failed")
			continue
		}
		metrics.EventsPublishedTotal.WithLabelValues(ev.Type, "ok").Inc()
	}
}
