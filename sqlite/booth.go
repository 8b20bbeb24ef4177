package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/boothcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ boothcrawl.BoothService = (*BoothService)(nil)

// BoothService implements boothcrawl.BoothService using SQLite.
type BoothService struct {
	db *DB
}

// NewBoothService creates a new BoothService.
func NewBoothService(db *DB) *BoothService {
	return &BoothService{db: db}
}

const boothColumns = `id, name, normalized_name, address, city, normalized_city, street_key, region, country,
	latitude, longitude, metadata, source_id, source_trust, created_at, updated_at`

func scanBooth(row rowScanner) (*boothcrawl.Booth, error) {
	var b boothcrawl.Booth
	var lat, lng sql.NullFloat64
	var metadata, createdAt, updatedAt string

	if err := row.Scan(&b.ID, &b.Name, &b.NormalizedName, &b.Address, &b.City, &b.NormalizedCity, &b.StreetKey,
		&b.Region, &b.Country, &lat, &lng, &metadata, &b.SourceID, &b.SourceTrust, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	b.Latitude = floatPtr(lat)
	b.Longitude = floatPtr(lng)
	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &b.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &b, nil
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(buf), nil
}

// CreateBooth inserts a new booth.
func (s *BoothService) CreateBooth(ctx context.Context, b *boothcrawl.Booth) error {
	if err := b.Validate(); err != nil {
		return err
	}
	metadata, err := encodeMetadata(b.Metadata)
	if err != nil {
		return err
	}

	b.ID = uuid.New().String()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO booths (`+boothColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.NormalizedName, b.Address, b.City, b.NormalizedCity, b.StreetKey, b.Region, b.Country,
		nullFloat(b.Latitude), nullFloat(b.Longitude), metadata, b.SourceID, b.SourceTrust,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt))

	return err
}

// UpdateBooth replaces the mutable fields of an existing booth.
func (s *BoothService) UpdateBooth(ctx context.Context, b *boothcrawl.Booth) error {
	if err := b.Validate(); err != nil {
		return err
	}
	metadata, err := encodeMetadata(b.Metadata)
	if err != nil {
		return err
	}

	b.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE booths
		SET name = ?, normalized_name = ?, address = ?, city = ?, normalized_city = ?, street_key = ?,
			region = ?, country = ?, latitude = ?, longitude = ?, metadata = ?, source_id = ?,
			source_trust = ?, updated_at = ?
		WHERE id = ?
	`, b.Name, b.NormalizedName, b.Address, b.City, b.NormalizedCity, b.StreetKey, b.Region, b.Country,
		nullFloat(b.Latitude), nullFloat(b.Longitude), metadata, b.SourceID, b.SourceTrust,
		formatTime(b.UpdatedAt), b.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return boothcrawl.Errorf(boothcrawl.ENOTFOUND, "booth not found")
	}

	return nil
}

// FindBoothByID retrieves a booth by ID.
func (s *BoothService) FindBoothByID(ctx context.Context, id string) (*boothcrawl.Booth, error) {
	b, err := scanBooth(s.db.QueryRowContext(ctx, `SELECT `+boothColumns+` FROM booths WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "booth not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindBooths retrieves booths matching the filter.
func (s *BoothService) FindBooths(ctx context.Context, filter boothcrawl.BoothFilter) ([]*boothcrawl.Booth, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + boothColumns + " FROM booths WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.NormalizedName != nil {
		query.WriteString(" AND normalized_name = ?")
		args = append(args, *filter.NormalizedName)
	}
	if filter.NormalizedCity != nil {
		query.WriteString(" AND normalized_city = ?")
		args = append(args, *filter.NormalizedCity)
	}
	if filter.SourceID != nil {
		query.WriteString(" AND source_id = ?")
		args = append(args, *filter.SourceID)
	}

	query.WriteString(" ORDER BY created_at ASC, rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var booths []*boothcrawl.Booth
	for rows.Next() {
		b, err := scanBooth(rows)
		if err != nil {
			return nil, err
		}
		booths = append(booths, b)
	}

	return booths, rows.Err()
}
