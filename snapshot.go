package boothcrawl

import (
	"context"
	"time"
)

// Snapshot is the raw content fetched from a URL at a point in time.
// Snapshots are append-only: changed content produces a new snapshot with a
// new hash, unchanged content only refreshes FetchedAt.
type Snapshot struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
	CreatedAt   time.Time `json:"createdAt"`

	// Extraction memoizes the JSON-encoded candidates the generic
	// extractor derived from this exact content. Empty when none.
	Extraction string `json:"extraction,omitempty"`
}

// Validate returns an error if the snapshot contains invalid fields.
func (s *Snapshot) Validate() error {
	if s.URL == "" {
		return Errorf(EINVALID, "snapshot URL required")
	}
	if s.ContentHash == "" {
		return Errorf(EINVALID, "snapshot content hash required")
	}
	return nil
}

// SnapshotService is the raw content store.
type SnapshotService interface {
	// CreateSnapshot appends a new snapshot.
	CreateSnapshot(ctx context.Context, snapshot *Snapshot) error

	// FindLatestSnapshot returns the most recently created snapshot for url.
	// Returns ENOTFOUND if the URL has never been fetched.
	FindLatestSnapshot(ctx context.Context, url string) (*Snapshot, error)

	// TouchSnapshot records that the snapshot's content was seen again.
	TouchSnapshot(ctx context.Context, id string, fetchedAt time.Time) error

	// SetSnapshotExtraction stores the extraction memo for a snapshot.
	SetSnapshotExtraction(ctx context.Context, id string, extraction string) error
}

// ContentNormalizer strips volatile markup so that semantically unchanged
// pages hash identically.
type ContentNormalizer interface {
	Normalize(html string) string
}
