package mock

import "github.com/fwojciec/boothcrawl"

var _ boothcrawl.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of boothcrawl.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*boothcrawl.ExtractResult, error)
}

func (e *ContentExtractor) Extract(html string) (*boothcrawl.ExtractResult, error) {
	return e.ExtractFn(html)
}
