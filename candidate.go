package boothcrawl

import "context"

// Variant identifies which extraction path produced a candidate.
type Variant string

// Extraction variants.
const (
	VariantSpecialized Variant = "specialized"
	VariantPatterned   Variant = "patterned"
	VariantGeneric     Variant = "generic"
)

// Candidate is an unvalidated venue record extracted from a single page.
// Candidates exist only within a run and are never persisted directly.
type Candidate struct {
	Name       string            `json:"name"`
	Address    string            `json:"address,omitempty"`
	City       string            `json:"city,omitempty"`
	Region     string            `json:"region,omitempty"`
	Country    string            `json:"country,omitempty"`
	Latitude   *float64          `json:"latitude,omitempty"`
	Longitude  *float64          `json:"longitude,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`

	SourceID string  `json:"-"`
	PageURL  string  `json:"-"`
	Variant  Variant `json:"-"`
}

// Page is a fetched page handed to an extractor.
type Page struct {
	URL         string
	HTML        string
	ContentHash string
}

// CandidateExtractor is a deterministic, hand-tuned extractor for a known
// source family. It must not call out to the network.
type CandidateExtractor interface {
	// Extract returns the candidates found on the page.
	// An empty result is not an error.
	Extract(page *Page) ([]*Candidate, error)

	// Name returns the extractor's identifier.
	Name() string
}

// CandidateExtractorRegistry maps extractor types to specialized extractors.
type CandidateExtractorRegistry interface {
	// Get returns the extractor registered for t, or nil.
	Get(t ExtractorType) CandidateExtractor
}

// PatternExtractor replays and derives learned extraction patterns.
type PatternExtractor interface {
	// Apply extracts candidates from the page using a stored pattern.
	Apply(page *Page, pattern *Pattern) ([]*Candidate, error)

	// Derive infers a pattern from the page structure that reproduces the
	// given example candidates. Returns ENOTFOUND when no repeating
	// structure explains the examples.
	Derive(page *Page, examples []*Candidate) (*Pattern, error)
}

// LLM extracts structured venue candidates from page content.
type LLM interface {
	// ExtractCandidates sends content to the model with a fixed output
	// schema. strict selects a stricter re-ask prompt. Returns ESCHEMA when
	// the model's output does not conform to the schema.
	ExtractCandidates(ctx context.Context, content string, strict bool) ([]*Candidate, error)
}
