// Package readability provides the fallback boothcrawl.ContentExtractor
// used when trafilatura finds no main content.
package readability

import (
	"strings"

	"github.com/fwojciec/boothcrawl"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements boothcrawl.ContentExtractor at compile time.
var _ boothcrawl.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page's main content.
// Returns ENOTFOUND when the article body is empty.
func (e *Extractor) Extract(rawHTML string) (*boothcrawl.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, boothcrawl.WrapError(boothcrawl.ENOTFOUND, err, "no readable content")
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "no readable content")
	}

	return &boothcrawl.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
