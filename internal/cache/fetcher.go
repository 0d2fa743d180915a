package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/matsen/labpage/internal/fetch"
)

// Fetcher records every successful fetch in the cache. In offline mode it
// serves only cached bodies and never calls the wrapped fetcher.
type Fetcher struct {
	next    fetch.Fetcher
	db      *DB
	offline bool
	now     func() time.Time
}

// NewFetcher wraps next with the cache.
func NewFetcher(next fetch.Fetcher, db *DB, offline bool) *Fetcher {
	return &Fetcher{next: next, db: db, offline: offline, now: time.Now}
}

// Fetch implements fetch.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if f.offline {
		item, ok, err := f.db.Get(ctx, source)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotCached, source)
		}
		return item.Body, nil
	}

	body, err := f.next.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := f.db.Put(ctx, source, body, f.now()); err != nil {
		return nil, err
	}
	return body, nil
}
