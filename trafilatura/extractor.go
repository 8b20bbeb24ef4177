// Package trafilatura provides the primary boothcrawl.ContentExtractor,
// isolating a listing page's main content from navigation and chrome.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/boothcrawl"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements boothcrawl.ContentExtractor at compile time.
var _ boothcrawl.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. Tables are kept because many venue
// directories are laid out as tables; comments are dropped.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
}

// Extract returns the page's main content.
// Returns ENOTFOUND when nothing substantive is found so callers can fall
// back to another extractor.
func (e *Extractor) Extract(rawHTML string) (*boothcrawl.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, boothcrawl.WrapError(boothcrawl.ENOTFOUND, err, "no main content")
	}
	if result == nil || result.ContentNode == nil {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "no main content")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.ContentText) == "" && strings.TrimSpace(buf.String()) == "" {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "no main content")
	}

	return &boothcrawl.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: buf.String(),
	}, nil
}
