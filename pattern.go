package boothcrawl

import (
	"context"
	"strings"
	"time"
)

// Pattern is a learned, source-specific extraction rule. Selectors are CSS
// selectors: Container matches one element per venue, field selectors are
// evaluated relative to it.
type Pattern struct {
	SourceID        string    `json:"sourceId"`
	Container       string    `json:"container"`
	NameSelector    string    `json:"nameSelector"`
	AddressSelector string    `json:"addressSelector"`
	CitySelector    string    `json:"citySelector"`
	Confidence      float64   `json:"confidence"`
	Usable          bool      `json:"usable"`
	Misses          int       `json:"misses"`
	LearnedAt       time.Time `json:"learnedAt"`
	ValidatedAt     time.Time `json:"validatedAt"`
}

// Validate returns an error if the pattern contains invalid fields.
func (p *Pattern) Validate() error {
	if p.SourceID == "" {
		return Errorf(EINVALID, "pattern source ID required")
	}
	if p.Container == "" {
		return Errorf(EINVALID, "pattern container selector required")
	}
	if p.NameSelector == "" {
		return Errorf(EINVALID, "pattern name selector required")
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return Errorf(EINVALID, "pattern confidence must be within [0, 1]")
	}
	return nil
}

// Signature identifies the pattern's structure independent of its score.
func (p *Pattern) Signature() string {
	return strings.Join([]string{p.Container, p.NameSelector, p.AddressSelector, p.CitySelector}, "|")
}

// Eligible reports whether the pattern may be replayed given the usable
// confidence floor. A nil pattern is never eligible.
func (p *Pattern) Eligible(floor float64) bool {
	return p != nil && p.Usable && p.Confidence >= floor
}

// PatternService stores one learned pattern per source.
type PatternService interface {
	// FindPatternBySource returns the source's pattern.
	// Returns ENOTFOUND if none has been learned.
	FindPatternBySource(ctx context.Context, sourceID string) (*Pattern, error)

	// SavePattern creates or replaces the source's pattern.
	SavePattern(ctx context.Context, pattern *Pattern) error
}
