package mock

import (
	"context"

	"github.com/fwojciec/boothcrawl"
)

var _ boothcrawl.CandidateExtractor = (*CandidateExtractor)(nil)

// CandidateExtractor is a mock implementation of boothcrawl.CandidateExtractor.
type CandidateExtractor struct {
	ExtractFn func(page *boothcrawl.Page) ([]*boothcrawl.Candidate, error)
	NameFn    func() string
}

func (e *CandidateExtractor) Extract(page *boothcrawl.Page) ([]*boothcrawl.Candidate, error) {
	return e.ExtractFn(page)
}

func (e *CandidateExtractor) Name() string {
	return e.NameFn()
}

var _ boothcrawl.CandidateExtractorRegistry = (*CandidateExtractorRegistry)(nil)

// CandidateExtractorRegistry is a mock implementation of
// boothcrawl.CandidateExtractorRegistry.
type CandidateExtractorRegistry struct {
	GetFn func(t boothcrawl.ExtractorType) boothcrawl.CandidateExtractor
}

func (r *CandidateExtractorRegistry) Get(t boothcrawl.ExtractorType) boothcrawl.CandidateExtractor {
	return r.GetFn(t)
}

var _ boothcrawl.LLM = (*LLM)(nil)

// LLM is a mock implementation of boothcrawl.LLM.
type LLM struct {
	ExtractCandidatesFn func(ctx context.Context, content string, strict bool) ([]*boothcrawl.Candidate, error)
}

func (l *LLM) ExtractCandidates(ctx context.Context, content string, strict bool) ([]*boothcrawl.Candidate, error) {
	return l.ExtractCandidatesFn(ctx, content, strict)
}
