package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fwojciec/boothcrawl"
)

// Compile-time interface verification.
var _ boothcrawl.PatternService = (*PatternService)(nil)

// PatternService implements boothcrawl.PatternService using SQLite.
type PatternService struct {
	db *DB
}

// NewPatternService creates a new PatternService.
func NewPatternService(db *DB) *PatternService {
	return &PatternService{db: db}
}

// FindPatternBySource returns the pattern learned for a source.
func (s *PatternService) FindPatternBySource(ctx context.Context, sourceID string) (*boothcrawl.Pattern, error) {
	var p boothcrawl.Pattern
	var usable int
	var learnedAt, validatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT source_id, container, name_selector, address_selector, city_selector, confidence, usable,
			misses, learned_at, validated_at
		FROM patterns
		WHERE source_id = ?
	`, sourceID).Scan(&p.SourceID, &p.Container, &p.NameSelector, &p.AddressSelector, &p.CitySelector,
		&p.Confidence, &usable, &p.Misses, &learnedAt, &validatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "pattern not found")
	}
	if err != nil {
		return nil, err
	}

	p.Usable = usable != 0
	if p.LearnedAt, err = parseTime(learnedAt, "learned_at"); err != nil {
		return nil, err
	}
	if p.ValidatedAt, err = parseTime(validatedAt, "validated_at"); err != nil {
		return nil, err
	}

	return &p, nil
}

// SavePattern creates or replaces the pattern for its source.
func (s *PatternService) SavePattern(ctx context.Context, p *boothcrawl.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patterns (source_id, container, name_selector, address_selector, city_selector, confidence,
			usable, misses, learned_at, validated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			container = excluded.container,
			name_selector = excluded.name_selector,
			address_selector = excluded.address_selector,
			city_selector = excluded.city_selector,
			confidence = excluded.confidence,
			usable = excluded.usable,
			misses = excluded.misses,
			learned_at = excluded.learned_at,
			validated_at = excluded.validated_at
	`, p.SourceID, p.Container, p.NameSelector, p.AddressSelector, p.CitySelector, p.Confidence,
		boolInt(p.Usable), p.Misses, formatTime(p.LearnedAt), formatTime(p.ValidatedAt))

	return err
}
