package crawl

import (
	"context"

	"github.com/fwojciec/boothcrawl"
)

// DefaultPatternFloor is the minimum confidence for replaying a learned
// pattern.
const DefaultPatternFloor = 0.5

// Extraction is the outcome of extracting one page.
type Extraction struct {
	Candidates []*boothcrawl.Candidate
	Variant    boothcrawl.Variant

	// PatternMiss is set when an eligible pattern yielded nothing and the
	// page fell back to the generic path.
	PatternMiss bool
}

// Engine dispatches a page to one of three extraction paths: the source's
// specialized extractor if its type has one, else the learned pattern if it
// is eligible, else the generic LLM path.
type Engine struct {
	Registry boothcrawl.CandidateExtractorRegistry
	Patterns boothcrawl.PatternExtractor
	Generic  *Generic

	// PatternFloor is the confidence below which patterns are not replayed.
	PatternFloor float64
}

// Extract produces the candidates of one page. Zero candidates is a valid
// outcome and not an error.
func (e *Engine) Extract(ctx context.Context, source *boothcrawl.Source, pattern *boothcrawl.Pattern, snapshot *boothcrawl.Snapshot) (*Extraction, error) {
	page := &boothcrawl.Page{
		URL:         snapshot.URL,
		HTML:        snapshot.Content,
		ContentHash: snapshot.ContentHash,
	}

	var extraction *Extraction
	if extractor := e.specialized(source.ExtractorType); extractor != nil {
		candidates, err := extractor.Extract(page)
		if err != nil {
			return nil, err
		}
		extraction = &Extraction{Candidates: candidates, Variant: boothcrawl.VariantSpecialized}
	} else {
		var miss bool
		if pattern.Eligible(e.PatternFloor) && e.Patterns != nil {
			candidates, err := e.Patterns.Apply(page, pattern)
			if err == nil && len(candidates) > 0 {
				for _, c := range candidates {
					if c.City == "" {
						c.City = boothcrawl.InferCity(c.Address)
					}
				}
				extraction = &Extraction{Candidates: candidates, Variant: boothcrawl.VariantPatterned}
			} else {
				miss = true
			}
		}
		if extraction == nil {
			candidates, err := e.Generic.Extract(ctx, snapshot)
			if err != nil {
				return nil, err
			}
			extraction = &Extraction{Candidates: candidates, Variant: boothcrawl.VariantGeneric, PatternMiss: miss}
		}
	}

	for _, c := range extraction.Candidates {
		c.SourceID = source.ID
		c.PageURL = snapshot.URL
		c.Variant = extraction.Variant
		if c.Country == "" {
			c.Country = source.Country
		}
	}
	return extraction, nil
}

func (e *Engine) specialized(t boothcrawl.ExtractorType) boothcrawl.CandidateExtractor {
	if e.Registry == nil || t == boothcrawl.ExtractorGeneric {
		return nil
	}
	return e.Registry.Get(t)
}
