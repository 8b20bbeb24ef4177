package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/boothcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ boothcrawl.SourceService = (*SourceService)(nil)

// SourceService implements boothcrawl.SourceService using SQLite.
type SourceService struct {
	db *DB
}

// NewSourceService creates a new SourceService.
func NewSourceService(db *DB) *SourceService {
	return &SourceService{db: db}
}

const sourceColumns = `id, name, urls, extractor_type, enabled, priority, trust, country, sitemap, filter,
	render_js, max_pages, status, total_found, total_added, last_error, last_crawled_at, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*boothcrawl.Source, error) {
	var source boothcrawl.Source
	var urls, extractorType, status, createdAt, updatedAt string
	var enabled, sitemap, renderJS int
	var lastCrawledAt sql.NullString

	if err := row.Scan(&source.ID, &source.Name, &urls, &extractorType, &enabled, &source.Priority,
		&source.Trust, &source.Country, &sitemap, &source.Filter, &renderJS, &source.MaxPages, &status,
		&source.TotalFound, &source.TotalAdded, &source.LastError, &lastCrawledAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	source.URLs = strings.Split(urls, "\n")
	source.ExtractorType = boothcrawl.ExtractorType(extractorType)
	source.Status = boothcrawl.SourceStatus(status)
	source.Enabled = enabled != 0
	source.Sitemap = sitemap != 0
	source.RenderJS = renderJS != 0

	var err error
	if source.LastCrawledAt, err = parseNullTime(lastCrawledAt, "last_crawled_at"); err != nil {
		return nil, err
	}
	if source.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if source.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &source, nil
}

// CreateSource creates a new source.
func (s *SourceService) CreateSource(ctx context.Context, source *boothcrawl.Source) error {
	if source.ExtractorType == "" {
		source.ExtractorType = boothcrawl.ExtractorGeneric
	}
	if err := source.Validate(); err != nil {
		return err
	}

	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	source.Status = boothcrawl.SourceIdle
	source.CreatedAt = now
	source.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, urls, extractor_type, enabled, priority, trust, country, sitemap, filter,
			render_js, max_pages, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, source.ID, source.Name, strings.Join(source.URLs, "\n"), string(source.ExtractorType),
		boolInt(source.Enabled), source.Priority, source.Trust, source.Country, boolInt(source.Sitemap),
		source.Filter, boolInt(source.RenderJS), source.MaxPages, string(source.Status),
		formatTime(source.CreatedAt), formatTime(source.UpdatedAt))
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return boothcrawl.Errorf(boothcrawl.ECONFLICT, "source %q already exists", source.Name)
	}
	return err
}

// FindSourceByID retrieves a source by ID.
func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*boothcrawl.Source, error) {
	source, err := scanSource(s.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "source not found")
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

// FindSources retrieves sources matching the filter.
func (s *SourceService) FindSources(ctx context.Context, filter boothcrawl.SourceFilter) ([]*boothcrawl.Source, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + sourceColumns + " FROM sources WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	if filter.Enabled != nil {
		query.WriteString(" AND enabled = ?")
		args = append(args, boolInt(*filter.Enabled))
	}

	query.WriteString(" ORDER BY priority DESC, name ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*boothcrawl.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// UpdateSource updates an existing source.
func (s *SourceService) UpdateSource(ctx context.Context, id string, upd boothcrawl.SourceUpdate) (*boothcrawl.Source, error) {
	source, err := s.FindSourceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		source.Name = *upd.Name
	}
	if upd.URLs != nil {
		source.URLs = upd.URLs
	}
	if upd.ExtractorType != nil {
		source.ExtractorType = *upd.ExtractorType
	}
	if upd.Enabled != nil {
		source.Enabled = *upd.Enabled
	}
	if upd.Priority != nil {
		source.Priority = *upd.Priority
	}
	if upd.Trust != nil {
		source.Trust = *upd.Trust
	}
	if upd.Country != nil {
		source.Country = *upd.Country
	}
	if upd.MaxPages != nil {
		source.MaxPages = *upd.MaxPages
	}
	if upd.Status != nil {
		source.Status = *upd.Status
	}

	if err := source.Validate(); err != nil {
		return nil, err
	}

	source.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE sources
		SET name = ?, urls = ?, extractor_type = ?, enabled = ?, priority = ?, trust = ?, country = ?,
			max_pages = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, source.Name, strings.Join(source.URLs, "\n"), string(source.ExtractorType), boolInt(source.Enabled),
		source.Priority, source.Trust, source.Country, source.MaxPages, string(source.Status),
		formatTime(source.UpdatedAt), id)
	if err != nil {
		return nil, err
	}

	return source, nil
}

// AcquireSource atomically marks an enabled, idle source as running.
func (s *SourceService) AcquireSource(ctx context.Context, id string) (*boothcrawl.Source, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sources SET status = ?, updated_at = ?
		WHERE id = ? AND enabled = 1 AND status != ?
	`, string(boothcrawl.SourceRunning), formatTime(time.Now()), id, string(boothcrawl.SourceRunning))
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	source, err := s.FindSourceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if !source.Enabled {
			return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "source %q is disabled", source.Name)
		}
		return nil, boothcrawl.Errorf(boothcrawl.ECONFLICT, "source %q is already running", source.Name)
	}
	return source, nil
}

// RecordRunResult updates counters and status and appends a run entry in
// a single transaction.
func (s *SourceService) RecordRunResult(ctx context.Context, id string, result boothcrawl.RunResult) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE sources
		SET total_found = total_found + ?, total_added = total_added + ?, status = ?, last_error = ?,
			last_crawled_at = ?, updated_at = ?
		WHERE id = ?
	`, result.Found, result.Added, string(result.Status), result.Error, formatTime(now), formatTime(now), id)
	if err != nil {
		return fmt.Errorf("updating source: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return boothcrawl.Errorf(boothcrawl.ENOTFOUND, "source not found")
	}

	startedAt := result.StartedAt
	if startedAt.IsZero() {
		startedAt = now
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, source_id, status, found, added, updated, rejected, pages, failed_pages, error,
			started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), id, string(result.Status), result.Found, result.Added, result.Updated,
		result.Rejected, result.Pages, result.FailedPages, result.Error, formatTime(startedAt), formatTime(now)); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	return tx.Commit()
}

// FindRuns retrieves run history, most recent first.
func (s *SourceService) FindRuns(ctx context.Context, filter boothcrawl.RunFilter) ([]*boothcrawl.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, source_id, status, found, added, updated, rejected, pages, failed_pages, error,
		started_at, finished_at FROM runs WHERE 1=1`)

	if filter.SourceID != nil {
		query.WriteString(" AND source_id = ?")
		args = append(args, *filter.SourceID)
	}

	query.WriteString(" ORDER BY finished_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*boothcrawl.Run
	for rows.Next() {
		var run boothcrawl.Run
		var status, startedAt, finishedAt string
		if err := rows.Scan(&run.ID, &run.SourceID, &status, &run.Found, &run.Added, &run.Updated,
			&run.Rejected, &run.Pages, &run.FailedPages, &run.Error, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		run.Status = boothcrawl.SourceStatus(status)
		if run.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
