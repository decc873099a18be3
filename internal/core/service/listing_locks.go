package service

import (
	"context"
	"sync"
)

// listingLocks hands out one exclusive section per listing. Sections are
// created on first use and never removed because listings are never deleted.
// Orders against different listings never share a section.
type listingLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newListingLocks() *listingLocks {
	return &listingLocks{locks: make(map[string]chan struct{})}
}

func (l *listingLocks) section(listingID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.locks[listingID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[listingID] = ch
	}
	return ch
}

// acquire enters the section for listingID, waiting while another placement
// holds it. contended reports whether the caller had to wait. The wait ends
// early only if ctx is done, in which case nothing has been entered.
func (l *listingLocks) acquire(ctx context.Context, listingID string) (release func(), contended bool, err error) {
	ch := l.section(listingID)
	release = func() { <-ch }

	select {
	case ch <- struct{}{}:
		return release, false, nil
	default:
	}

	select {
	case ch <- struct{}{}:
		return release, true, nil
	case <-ctx.Done():
		return nil, true, ctx.Err()
	}
}
