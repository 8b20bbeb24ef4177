package boothcrawl

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ExtractorType discriminates how a source's pages are turned into candidates.
type ExtractorType string

// Supported extractor types. Every type other than ExtractorGeneric names a
// hand-tuned extractor for a known source family.
const (
	ExtractorGeneric      ExtractorType = "generic"
	ExtractorSchemaOrg    ExtractorType = "schemaorg"
	ExtractorStoreLocator ExtractorType = "storelocator"
)

// ExtractorTypes lists all known extractor types.
var ExtractorTypes = []ExtractorType{ExtractorGeneric, ExtractorSchemaOrg, ExtractorStoreLocator}

// SourceStatus is the run status stored on the registry row.
type SourceStatus string

// Source statuses. SourceRunning is the only status that blocks a new run.
const (
	SourceIdle    SourceStatus = "idle"
	SourceRunning SourceStatus = "running"
	SourceSuccess SourceStatus = "success"
	SourcePartial SourceStatus = "partial"
	SourceFailed  SourceStatus = "failed"
)

// Source represents a configured origin site or page set to crawl.
type Source struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	URLs          []string      `json:"urls" yaml:"urls"`
	ExtractorType ExtractorType `json:"extractorType" yaml:"extractor"`
	Enabled       bool          `json:"enabled" yaml:"enabled"`
	Priority      int           `json:"priority" yaml:"priority"`

	// Trust ranks sources against each other when reconciling conflicting
	// field values. Higher wins.
	Trust int `json:"trust" yaml:"trust"`

	// Country is applied to candidates that do not carry one.
	Country string `json:"country" yaml:"country"`

	// Sitemap enables page discovery through the site's sitemap.
	Sitemap bool `json:"sitemap" yaml:"sitemap"`

	// Filter holds newline-separated regexps for discovered URLs. Patterns
	// prefixed with "!" exclude.
	Filter string `json:"filter" yaml:"filter"`

	// RenderJS routes fetches through a headless browser.
	RenderJS bool `json:"renderJs" yaml:"render_js"`

	// MaxPages caps the number of pages fetched per run, including
	// pagination. Zero means DefaultMaxPages.
	MaxPages int `json:"maxPages" yaml:"max_pages"`

	Status        SourceStatus `json:"status" yaml:"-"`
	TotalFound    int          `json:"totalFound" yaml:"-"`
	TotalAdded    int          `json:"totalAdded" yaml:"-"`
	LastError     string       `json:"lastError" yaml:"-"`
	LastCrawledAt *time.Time   `json:"lastCrawledAt" yaml:"-"`
	CreatedAt     time.Time    `json:"createdAt" yaml:"-"`
	UpdatedAt     time.Time    `json:"updatedAt" yaml:"-"`
}

// DefaultMaxPages is the page cap for sources that do not set MaxPages.
const DefaultMaxPages = 25

// PageLimit returns the effective page cap for a run.
func (s *Source) PageLimit() int {
	if s.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return s.MaxPages
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Errorf(EINVALID, "source name required")
	}
	if len(s.URLs) == 0 {
		return Errorf(EINVALID, "source requires at least one URL")
	}
	for _, raw := range s.URLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Errorf(EINVALID, "invalid source URL %q", raw)
		}
	}
	if !s.ExtractorType.Valid() {
		return Errorf(EINVALID, "unknown extractor type %q", s.ExtractorType)
	}
	if _, err := s.URLFilter(); err != nil {
		return err
	}
	return nil
}

// Valid reports whether t is a known extractor type.
func (t ExtractorType) Valid() bool {
	for _, known := range ExtractorTypes {
		if t == known {
			return true
		}
	}
	return false
}

// URLFilter compiles the source's Filter patterns.
// Returns nil when the source has no patterns.
func (s *Source) URLFilter() (*URLFilter, error) {
	if strings.TrimSpace(s.Filter) == "" {
		return nil, nil
	}
	filter := &URLFilter{}
	for _, pattern := range strings.Split(s.Filter, "\n") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		exclude := strings.HasPrefix(pattern, "!")
		re, err := regexp.Compile(strings.TrimPrefix(pattern, "!"))
		if err != nil {
			return nil, Errorf(EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		if exclude {
			filter.Exclude = append(filter.Exclude, re)
		} else {
			filter.Include = append(filter.Include, re)
		}
	}
	return filter, nil
}

// SourceService represents the source registry.
type SourceService interface {
	// CreateSource creates a new source. Status starts as SourceIdle.
	CreateSource(ctx context.Context, source *Source) error

	// FindSourceByID retrieves a source by ID.
	// Returns ENOTFOUND if the source does not exist; any other error is a
	// storage failure that may be retried.
	FindSourceByID(ctx context.Context, id string) (*Source, error)

	// FindSources retrieves sources matching the filter, highest priority first.
	FindSources(ctx context.Context, filter SourceFilter) ([]*Source, error)

	// UpdateSource updates configuration fields of an existing source.
	// Returns ENOTFOUND if the source does not exist.
	UpdateSource(ctx context.Context, id string, upd SourceUpdate) (*Source, error)

	// AcquireSource atomically moves an enabled, non-running source to
	// SourceRunning and returns it.
	// Returns ENOTFOUND, EINVALID if the source is disabled, or ECONFLICT
	// if a run is already in progress.
	AcquireSource(ctx context.Context, id string) (*Source, error)

	// RecordRunResult atomically adds the run's counts to the source
	// counters, stores the final status and error, and appends a run
	// history entry.
	RecordRunResult(ctx context.Context, id string, result RunResult) error

	// FindRuns retrieves run history, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// SourceFilter represents a filter for FindSources.
type SourceFilter struct {
	ID      *string `json:"id"`
	Name    *string `json:"name"`
	Enabled *bool   `json:"enabled"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SourceUpdate represents fields that can be updated on a source.
type SourceUpdate struct {
	Name          *string        `json:"name"`
	URLs          []string       `json:"urls"`
	ExtractorType *ExtractorType `json:"extractorType"`
	Enabled       *bool          `json:"enabled"`
	Priority      *int           `json:"priority"`
	Trust         *int           `json:"trust"`
	Country       *string        `json:"country"`
	MaxPages      *int           `json:"maxPages"`
	Status        *SourceStatus  `json:"status"`
}
