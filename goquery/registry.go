// Package goquery provides HTML-structure based candidate extraction:
// specialized extractors for known markup families, replay and derivation
// of learned patterns, and pagination link discovery.
package goquery

import (
	"sort"

	"github.com/fwojciec/boothcrawl"
)

var _ boothcrawl.CandidateExtractorRegistry = (*Registry)(nil)

// Registry maps extractor types to specialized extractors.
type Registry struct {
	extractors map[boothcrawl.ExtractorType]boothcrawl.CandidateExtractor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[boothcrawl.ExtractorType]boothcrawl.CandidateExtractor),
	}
}

// NewDefaultRegistry returns a Registry with every built-in specialized
// extractor registered under its extractor type.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(boothcrawl.ExtractorSchemaOrg, NewSchemaOrgExtractor())
	r.Register(boothcrawl.ExtractorStoreLocator, NewStoreLocatorExtractor())
	return r
}

// Get returns the extractor for t, or nil if none is registered.
// The generic type never has a specialized extractor.
func (r *Registry) Get(t boothcrawl.ExtractorType) boothcrawl.CandidateExtractor {
	if t == boothcrawl.ExtractorGeneric {
		return nil
	}
	return r.extractors[t]
}

// Register adds an extractor for a type, replacing any existing one.
func (r *Registry) Register(t boothcrawl.ExtractorType, e boothcrawl.CandidateExtractor) {
	r.extractors[t] = e
}

// List returns all registered types in sorted order.
func (r *Registry) List() []boothcrawl.ExtractorType {
	types := make([]boothcrawl.ExtractorType, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
