package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/labpage/internal/fetch"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache", "sources.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, ok, err := db.Get(ctx, "publications.bib"); err != nil || ok {
		t.Fatalf("Get() on empty cache = ok %v, err %v", ok, err)
	}

	if err := db.Put(ctx, "publications.bib", []byte("v1"), when); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := db.Put(ctx, "publications.bib", []byte("v2"), when.Add(time.Hour)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	item, ok, err := db.Get(ctx, "publications.bib")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if string(item.Body) != "v2" {
		t.Errorf("Body = %q, want v2", item.Body)
	}
	if !item.FetchedAt.Equal(when.Add(time.Hour)) {
		t.Errorf("FetchedAt = %v", item.FetchedAt)
	}

	items, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0].Source != "publications.bib" {
		t.Errorf("List() = %+v", items)
	}
}

type stubFetcher struct {
	calls int
	body  string
	err   error
}

func (s *stubFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.body), nil
}

func TestFetcher(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	online := &stubFetcher{body: "@misc{a}"}
	if _, err := NewFetcher(online, db, false).Fetch(ctx, "publications.bib"); err != nil {
		t.Fatalf("online Fetch() error = %v", err)
	}

	dead := &stubFetcher{err: fetch.ErrNetwork}
	offline := NewFetcher(dead, db, true)

	got, err := offline.Fetch(ctx, "publications.bib")
	if err != nil {
		t.Fatalf("offline Fetch() error = %v", err)
	}
	if string(got) != "@misc{a}" {
		t.Errorf("offline Fetch() = %q", got)
	}
	if dead.calls != 0 {
		t.Errorf("offline fetcher called the network %d times", dead.calls)
	}

	if _, err := offline.Fetch(ctx, "data.json"); !errors.Is(err, ErrNotCached) {
		t.Errorf("offline Fetch(miss) error = %v, want ErrNotCached", err)
	}

	// Online failures are passed through untouched and nothing is cached.
	if _, err := NewFetcher(dead, db, false).Fetch(ctx, "data.json"); !errors.Is(err, fetch.ErrNetwork) {
		t.Errorf("online Fetch() error = %v, want ErrNetwork", err)
	}
}
