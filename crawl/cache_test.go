package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/crawl"
	"github.com/fwojciec/boothcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotStore is an in-memory snapshot store.
type snapshotStore struct {
	mu        sync.Mutex
	snapshots []*boothcrawl.Snapshot
	touches   int
}

func (s *snapshotStore) service() *mock.SnapshotService {
	return &mock.SnapshotService{
		CreateSnapshotFn: func(_ context.Context, snap *boothcrawl.Snapshot) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			snap.ID = "snap-" + string(rune('a'+len(s.snapshots)))
			cp := *snap
			s.snapshots = append(s.snapshots, &cp)
			return nil
		},
		FindLatestSnapshotFn: func(_ context.Context, url string) (*boothcrawl.Snapshot, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i := len(s.snapshots) - 1; i >= 0; i-- {
				if s.snapshots[i].URL == url {
					cp := *s.snapshots[i]
					return &cp, nil
				}
			}
			return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "snapshot not found")
		},
		TouchSnapshotFn: func(_ context.Context, id string, fetchedAt time.Time) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.touches++
			for _, snap := range s.snapshots {
				if snap.ID == id {
					snap.FetchedAt = fetchedAt
					return nil
				}
			}
			return boothcrawl.Errorf(boothcrawl.ENOTFOUND, "snapshot not found")
		},
		SetSnapshotExtractionFn: func(_ context.Context, id string, extraction string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, snap := range s.snapshots {
				if snap.ID == id {
					snap.Extraction = extraction
					return nil
				}
			}
			return boothcrawl.Errorf(boothcrawl.ENOTFOUND, "snapshot not found")
		},
	}
}

// collapse stands in for the HTML normalizer.
var collapse = &mock.ContentNormalizer{
	NormalizeFn: func(html string) string { return strings.Join(strings.Fields(html), " ") },
}

func TestContentCache_Fetch(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("stores the first fetch as a new snapshot", func(t *testing.T) {
		t.Parallel()

		store := &snapshotStore{}
		c := &crawl.ContentCache{
			Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				return "<ul><li>Lucky Bar</li></ul>", nil
			}},
			Snapshots:  store.service(),
			Normalizer: collapse,
			Freshness:  time.Hour,
			Now:        func() time.Time { return base },
		}

		res, err := c.Fetch(context.Background(), "https://venues.example/list")
		require.NoError(t, err)

		assert.False(t, res.CacheHit)
		assert.False(t, res.Unchanged)
		assert.Equal(t, "<ul><li>Lucky Bar</li></ul>", res.Snapshot.Content)
		assert.Equal(t, base, res.Snapshot.FetchedAt)
		assert.NotEmpty(t, res.Snapshot.ContentHash)
		assert.Len(t, store.snapshots, 1)
	})

	t.Run("serves a fresh snapshot without scraping", func(t *testing.T) {
		t.Parallel()

		store := &snapshotStore{snapshots: []*boothcrawl.Snapshot{
			{ID: "snap-a", URL: "https://venues.example/list", Content: "<p>cached</p>", ContentHash: "h", FetchedAt: base.Add(-10 * time.Minute)},
		}}
		c := &crawl.ContentCache{
			Fetcher:   &mock.Fetcher{},
			Snapshots: store.service(),
			Freshness: time.Hour,
			Now:       func() time.Time { return base },
		}

		res, err := c.Fetch(context.Background(), "https://venues.example/list")
		require.NoError(t, err)

		assert.True(t, res.CacheHit)
		assert.Equal(t, "<p>cached</p>", res.Snapshot.Content)
		assert.Equal(t, base.Add(-10*time.Minute), store.snapshots[0].FetchedAt)
		assert.Zero(t, store.touches)
	})

	t.Run("hits do not extend the freshness window", func(t *testing.T) {
		t.Parallel()

		store := &snapshotStore{}
		var scrapes int
		now := base
		c := &crawl.ContentCache{
			Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				scrapes++
				return "<p>Lucky Bar</p>", nil
			}},
			Snapshots: store.service(),
			Freshness: 6 * time.Hour,
			Now:       func() time.Time { return now },
		}

		var hits int
		for i := 0; i < 10; i++ {
			now = base.Add(time.Duration(i) * 5 * time.Hour)
			res, err := c.Fetch(context.Background(), "https://venues.example/list")
			require.NoError(t, err)
			if res.CacheHit {
				hits++
			}
		}

		// Scrapes at 0h, 10h, 20h, 30h, 40h; hits at 5h, 15h, 25h, 35h, 45h.
		assert.Equal(t, 5, scrapes)
		assert.Equal(t, 5, hits)
		assert.Len(t, store.snapshots, 1)
	})

	t.Run("unchanged content reuses the snapshot and its memo", func(t *testing.T) {
		t.Parallel()

		store := &snapshotStore{}
		fetches := []string{"<ul> <li>Lucky Bar</li></ul>", "<ul>\n  <li>Lucky Bar</li></ul>"}
		now := base
		c := &crawl.ContentCache{
			Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				html := fetches[0]
				fetches = fetches[1:]
				return html, nil
			}},
			Snapshots:  store.service(),
			Normalizer: collapse,
			Freshness:  time.Hour,
			Now:        func() time.Time { return now },
		}

		first, err := c.Fetch(context.Background(), "https://venues.example/list")
		require.NoError(t, err)
		require.NoError(t, store.service().SetSnapshotExtraction(context.Background(), first.Snapshot.ID, `[{"name":"Lucky Bar"}]`))

		now = base.Add(2 * time.Hour)
		second, err := c.Fetch(context.Background(), "https://venues.example/list")
		require.NoError(t, err)

		assert.True(t, second.Unchanged)
		assert.Equal(t, first.Snapshot.ID, second.Snapshot.ID)
		assert.Equal(t, `[{"name":"Lucky Bar"}]`, second.Snapshot.Extraction)
		assert.Equal(t, now, second.Snapshot.FetchedAt)
		assert.Len(t, store.snapshots, 1)
	})

	t.Run("changed content appends a snapshot", func(t *testing.T) {
		t.Parallel()

		store := &snapshotStore{snapshots: []*boothcrawl.Snapshot{
			{ID: "snap-a", URL: "https://venues.example/list", Content: "<p>old</p>", ContentHash: "old", FetchedAt: base.Add(-2 * time.Hour)},
		}}
		c := &crawl.ContentCache{
			Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				return "<p>new</p>", nil
			}},
			Snapshots: store.service(),
			Freshness: time.Hour,
			Now:       func() time.Time { return base },
		}

		res, err := c.Fetch(context.Background(), "https://venues.example/list")
		require.NoError(t, err)

		assert.False(t, res.Unchanged)
		assert.NotEqual(t, "snap-a", res.Snapshot.ID)
		assert.Len(t, store.snapshots, 2)
		assert.Equal(t, "<p>old</p>", store.snapshots[0].Content, "snapshots are append-only")
	})

	t.Run("zero freshness always scrapes", func(t *testing.T) {
		t.Parallel()

		store := &snapshotStore{snapshots: []*boothcrawl.Snapshot{
			{ID: "snap-a", URL: "https://venues.example/list", Content: "<p>cached</p>", ContentHash: "h", FetchedAt: base},
		}}
		var scraped bool
		c := &crawl.ContentCache{
			Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				scraped = true
				return "<p>fresh</p>", nil
			}},
			Snapshots: store.service(),
			Now:       func() time.Time { return base },
		}

		_, err := c.Fetch(context.Background(), "https://venues.example/list")
		require.NoError(t, err)
		assert.True(t, scraped)
	})

	t.Run("retries transient scrape errors", func(t *testing.T) {
		t.Parallel()

		store := &snapshotStore{}
		var calls int
		c := &crawl.ContentCache{
			Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				calls++
				if calls == 1 {
					return "", boothcrawl.Errorf(boothcrawl.ETRANSIENT, "status 429")
				}
				return "<p>ok</p>", nil
			}},
			Snapshots:   store.service(),
			RetryDelays: []time.Duration{0, 0, 0},
		}

		_, err := c.Fetch(context.Background(), "https://venues.example/list")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("returns permanent scrape errors", func(t *testing.T) {
		t.Parallel()

		store := &snapshotStore{}
		c := &crawl.ContentCache{
			Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				return "", boothcrawl.Errorf(boothcrawl.EPERMANENT, "status 404")
			}},
			Snapshots:   store.service(),
			RetryDelays: []time.Duration{0, 0, 0},
		}

		_, err := c.Fetch(context.Background(), "https://venues.example/missing")
		assert.Equal(t, boothcrawl.EPERMANENT, boothcrawl.ErrorCode(err))
		assert.Empty(t, store.snapshots)
	})

	t.Run("returns snapshot store errors", func(t *testing.T) {
		t.Parallel()

		c := &crawl.ContentCache{
			Snapshots: &mock.SnapshotService{
				FindLatestSnapshotFn: func(context.Context, string) (*boothcrawl.Snapshot, error) {
					return nil, errors.New("disk I/O error")
				},
			},
		}

		_, err := c.Fetch(context.Background(), "https://venues.example/list")
		require.Error(t, err)
	})
}

func TestContentCache_Hash(t *testing.T) {
	t.Parallel()

	c := &crawl.ContentCache{Normalizer: collapse}

	assert.Equal(t, c.Hash("<p>a  b</p>"), c.Hash("<p>a b</p>"))
	assert.NotEqual(t, c.Hash("<p>a b</p>"), c.Hash("<p>a c</p>"))
}
