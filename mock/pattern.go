package mock

import (
	"context"

	"github.com/fwojciec/boothcrawl"
)

var _ boothcrawl.PatternService = (*PatternService)(nil)

// PatternService is a mock implementation of boothcrawl.PatternService.
type PatternService struct {
	FindPatternBySourceFn func(ctx context.Context, sourceID string) (*boothcrawl.Pattern, error)
	SavePatternFn         func(ctx context.Context, pattern *boothcrawl.Pattern) error
}

func (s *PatternService) FindPatternBySource(ctx context.Context, sourceID string) (*boothcrawl.Pattern, error) {
	return s.FindPatternBySourceFn(ctx, sourceID)
}

func (s *PatternService) SavePattern(ctx context.Context, pattern *boothcrawl.Pattern) error {
	return s.SavePatternFn(ctx, pattern)
}

var _ boothcrawl.PatternExtractor = (*PatternExtractor)(nil)

// PatternExtractor is a mock implementation of boothcrawl.PatternExtractor.
type PatternExtractor struct {
	ApplyFn  func(page *boothcrawl.Page, pattern *boothcrawl.Pattern) ([]*boothcrawl.Candidate, error)
	DeriveFn func(page *boothcrawl.Page, examples []*boothcrawl.Candidate) (*boothcrawl.Pattern, error)
}

func (e *PatternExtractor) Apply(page *boothcrawl.Page, pattern *boothcrawl.Pattern) ([]*boothcrawl.Candidate, error) {
	return e.ApplyFn(page, pattern)
}

func (e *PatternExtractor) Derive(page *boothcrawl.Page, examples []*boothcrawl.Candidate) (*boothcrawl.Pattern, error) {
	return e.DeriveFn(page, examples)
}
