package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// Ensure LoggingRegistry implements boothcrawl.CandidateExtractorRegistry.
var _ boothcrawl.CandidateExtractorRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a CandidateExtractorRegistry so that the
// specialized extractors it returns log each extraction.
type LoggingRegistry struct {
	next   boothcrawl.CandidateExtractorRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next boothcrawl.CandidateExtractorRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Get returns the wrapped registry's extractor for t, or nil.
func (r *LoggingRegistry) Get(t boothcrawl.ExtractorType) boothcrawl.CandidateExtractor {
	extractor := r.next.Get(t)
	if extractor == nil {
		return nil
	}
	return &loggingExtractor{next: extractor, logger: r.logger}
}

type loggingExtractor struct {
	next   boothcrawl.CandidateExtractor
	logger *slog.Logger
}

func (e *loggingExtractor) Extract(page *boothcrawl.Page) (candidates []*boothcrawl.Candidate, err error) {
	defer func(begin time.Time) {
		e.logger.Info("specialized extraction",
			"extractor", e.next.Name(),
			"url", page.URL,
			"candidates", len(candidates),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(page)
}

func (e *loggingExtractor) Name() string {
	return e.next.Name()
}
