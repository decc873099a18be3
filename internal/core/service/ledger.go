package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

// Ledger is the append-only collection of order records. Remaining stock is
// derived from it, never stored.
//
// Append writes to the durable store first and only then publishes the record
// to readers, so readers never observe an order the store does not have.
//
// A write that keeps failing may still have reached the store. Such a record
// is held in doubt: it is hidden from readers but its quantity stays
// committed until Load settles it from the store.
type Ledger struct {
	store    ports.OrderStore
	attempts int
	backoff  time.Duration

	mu        sync.RWMutex
	orders    []domain.OrderRecord
	byID      map[string]int
	byListing map[string][]int
	byBuyer   map[string][]int
	inDoubt   map[string]domain.OrderRecord
}

const (
	appendAttempts   = 4
	appendBackoff    = 50 * time.Millisecond
	appendBackoffMax = time.Second
)

func NewLedger(store ports.OrderStore) *Ledger {
	return &Ledger{
		store:     store,
		attempts:  appendAttempts,
		backoff:   appendBackoff,
		byID:      make(map[string]int),
		byListing: make(map[string][]int),
		byBuyer:   make(map[string][]int),
		inDoubt:   make(map[string]domain.OrderRecord),
	}
}

// Load rebuilds the ledger from the durable store.
func (l *Ledger) Load(ctx context.Context) error {
	orders, err := l.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].PlacedAt.Before(orders[j].PlacedAt)
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range orders {
		l.add(o)
	}
	// Whatever the store did not return was never written.
	clear(l.inDoubt)
	return nil
}

// Append persists rec and then makes it visible. The store write is not
// cancelled by ctx so a disconnecting caller cannot leave it half done.
//
// OrderStore.Append is idempotent on the order ID, so a failed write is
// retried with the same record. When every attempt fails rec is held in
// doubt and the error is returned.
func (l *Ledger) Append(ctx context.Context, rec domain.OrderRecord) error {
	l.mu.RLock()
	_, dup := l.byID[rec.ID]
	_, doubted := l.inDoubt[rec.ID]
	l.mu.RUnlock()
	if dup || doubted {
		return fmt.Errorf("append order %s: duplicate id", rec.ID)
	}

	if err := l.persist(context.WithoutCancel(ctx), rec); err != nil {
		l.mu.Lock()
		l.inDoubt[rec.ID] = rec
		l.mu.Unlock()
		return fmt.Errorf("append order: %w", err)
	}

	l.mu.Lock()
	l.add(rec)
	l.mu.Unlock()
	return nil
}

func (l *Ledger) persist(ctx context.Context, rec domain.OrderRecord) error {
	wait := l.backoff
	for attempt := 1; ; attempt++ {
		err := l.store.Append(ctx, rec)
		if err == nil {
			return nil
		}
		if attempt >= l.attempts {
			return err
		}
		time.Sleep(wait)
		wait *= 2
		if wait > appendBackoffMax {
			wait = appendBackoffMax
		}
	}
}

// InDoubt reports how many records failed to persist and await Load.
func (l *Ledger) InDoubt() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.inDoubt)
}

// CommittedQuantity sums the quantity of every order against listingID,
// including records held in doubt.
func (l *Ledger) CommittedQuantity(listingID string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sum int64
	for _, i := range l.byListing[listingID] {
		sum += l.orders[i].Quantity
	}
	for _, o := range l.inDoubt {
		if o.ListingID == listingID {
			sum += o.Quantity
		}
	}
	return sum
}

// Get returns the order with the given ID.
func (l *Ledger) Get(id string) (domain.OrderRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byID[id]
	if !ok {
		return domain.OrderRecord{}, false
	}
	return l.orders[i], true
}

// ForListing returns a snapshot of the orders against listingID.
func (l *Ledger) ForListing(listingID string) []domain.OrderRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.byListing[listingID])
}

// ForBuyer returns a snapshot of the orders placed by buyerID.
func (l *Ledger) ForBuyer(buyerID string) []domain.OrderRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.byBuyer[buyerID])
}

// All returns a snapshot of the whole ledger in append order.
func (l *Ledger) All() []domain.OrderRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.OrderRecord, len(l.orders))
	copy(out, l.orders)
	return out
}

func (l *Ledger) collect(idx []int) []domain.OrderRecord {
	out := make([]domain.OrderRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, l.orders[i])
	}
	return out
}

func (l *Ledger) add(o domain.OrderRecord) {
	delete(l.inDoubt, o.ID)
	if _, exists := l.byID[o.ID]; exists {
		return
	}
	i := len(l.orders)
	l.orders = append(l.orders, o)
	l.byID[o.ID] = i
	l.byListing[o.ListingID] = append(l.byListing[o.ListingID], i)
	l.byBuyer[o.BuyerID] = append(l.byBuyer[o.BuyerID], i)
}
