package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/boothcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ boothcrawl.SnapshotService = (*SnapshotService)(nil)

// SnapshotService implements boothcrawl.SnapshotService using SQLite.
// Rows are only ever appended; updates touch fetched_at and the
// extraction memo, never the content.
type SnapshotService struct {
	db *DB
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(db *DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// CreateSnapshot appends a new snapshot.
func (s *SnapshotService) CreateSnapshot(ctx context.Context, snapshot *boothcrawl.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	snapshot.ID = uuid.New().String()
	snapshot.CreatedAt = time.Now().UTC()
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = snapshot.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, url, content, content_hash, extraction, fetched_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snapshot.ID, snapshot.URL, snapshot.Content, snapshot.ContentHash, snapshot.Extraction,
		formatTime(snapshot.FetchedAt), formatTime(snapshot.CreatedAt))

	return err
}

// FindLatestSnapshot returns the most recently created snapshot for url.
func (s *SnapshotService) FindLatestSnapshot(ctx context.Context, url string) (*boothcrawl.Snapshot, error) {
	var snapshot boothcrawl.Snapshot
	var fetchedAt, createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, content, content_hash, extraction, fetched_at, created_at
		FROM snapshots
		WHERE url = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, url).Scan(&snapshot.ID, &snapshot.URL, &snapshot.Content, &snapshot.ContentHash, &snapshot.Extraction,
		&fetchedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "no snapshot for %s", url)
	}
	if err != nil {
		return nil, err
	}

	if snapshot.FetchedAt, err = parseTime(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}
	if snapshot.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// TouchSnapshot updates the fetch timestamp of a snapshot.
func (s *SnapshotService) TouchSnapshot(ctx context.Context, id string, fetchedAt time.Time) error {
	return s.update(ctx, `UPDATE snapshots SET fetched_at = ? WHERE id = ?`, formatTime(fetchedAt), id)
}

// SetSnapshotExtraction stores the extraction memo for a snapshot.
func (s *SnapshotService) SetSnapshotExtraction(ctx context.Context, id string, extraction string) error {
	return s.update(ctx, `UPDATE snapshots SET extraction = ? WHERE id = ?`, extraction, id)
}

func (s *SnapshotService) update(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return boothcrawl.Errorf(boothcrawl.ENOTFOUND, "snapshot not found")
	}

	return nil
}
