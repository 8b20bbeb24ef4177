package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/boothcrawl"
)

var _ boothcrawl.CandidateExtractor = (*StoreLocatorExtractor)(nil)

// locatorContainers are tried in order; the first that yields a named
// candidate wins.
var locatorContainers = []string{
	"[data-store-id]",
	"[data-location-id]",
	"[data-lat][data-lng]",
	"[data-latitude][data-longitude]",
	".store-locator .store",
	".store-list .store",
	".location-list .location",
	"li.location",
	"div.location",
	".venue",
	".store-item",
	".location-item",
}

const (
	locatorName    = ".store-name, .location-name, .venue-name, .name, [itemprop=name], h2, h3, h4"
	locatorAddress = ".street-address, .store-address, .location-address, .address, address"
	locatorCity    = ".city, .locality, .addressLocality"
	locatorRegion  = ".region, .state, .province"
	locatorPhone   = ".phone, .tel, a[href^='tel:']"
	locatorHours   = ".hours, .opening-hours"
)

// StoreLocatorExtractor reads venues from the repeating list markup used by
// common store-locator widgets.
type StoreLocatorExtractor struct{}

// NewStoreLocatorExtractor creates a new StoreLocatorExtractor.
func NewStoreLocatorExtractor() *StoreLocatorExtractor {
	return &StoreLocatorExtractor{}
}

// Name returns the extractor's identifier.
func (e *StoreLocatorExtractor) Name() string {
	return string(boothcrawl.ExtractorStoreLocator)
}

// Extract returns one candidate per store-locator entry.
func (e *StoreLocatorExtractor) Extract(page *boothcrawl.Page) ([]*boothcrawl.Candidate, error) {
	doc, err := parseDocument(page.HTML)
	if err != nil {
		return nil, err
	}

	for _, container := range locatorContainers {
		var candidates []*boothcrawl.Candidate
		doc.Find(container).Each(func(_ int, s *goquery.Selection) {
			if c := locatorCandidate(s); c != nil {
				candidates = append(candidates, c)
			}
		})
		if len(candidates) > 0 {
			return candidates, nil
		}
	}

	return nil, nil
}

func locatorCandidate(s *goquery.Selection) *boothcrawl.Candidate {
	name := textOf(s, locatorName)
	if name == "" {
		name = collapse(s.AttrOr("data-name", ""))
	}
	if name == "" {
		return nil
	}

	c := &boothcrawl.Candidate{
		Name:       name,
		Address:    textOf(s, locatorAddress),
		City:       textOf(s, locatorCity),
		Region:     textOf(s, locatorRegion),
		Latitude:   attrCoordinate(s, "data-lat", "data-latitude"),
		Longitude:  attrCoordinate(s, "data-lng", "data-lon", "data-longitude"),
		Confidence: 0.9,
	}
	if c.Address == "" {
		c.Address = collapse(s.AttrOr("data-address", ""))
	}

	c.Metadata = metadata(map[string]string{
		"telephone":    textOf(s, locatorPhone),
		"openingHours": textOf(s, locatorHours),
	})
	return c
}
