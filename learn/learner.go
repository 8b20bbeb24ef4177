// Package learn maintains the learned extraction pattern of each source.
//
// After a run, pages extracted by the generic or patterned path are scored
// by how many of their candidates passed validation. A page with enough
// valid records derives a pattern; a pattern with the same structure as the
// stored one reinforces it, a different structure replaces it. A patterned
// run that produced no valid records decays the stored pattern until it
// drops below the usable floor.
package learn

import (
	"context"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// Config holds the learning parameters.
type Config struct {
	// MinRecords is the number of valid records a page needs before a
	// pattern is derived from it.
	MinRecords int

	// MinPassRate is the minimum share of candidates that passed validation.
	MinPassRate float64

	// InitialConfidence is the confidence of a newly derived pattern.
	InitialConfidence float64

	// Reinforce is added to the confidence when a run confirms the pattern.
	Reinforce float64

	// Decay multiplies the confidence after a patterned run without valid
	// records.
	Decay float64

	// Floor is the confidence below which a pattern is no longer usable.
	Floor float64
}

// DefaultConfig returns the default learning parameters.
func DefaultConfig() Config {
	return Config{
		MinRecords:        3,
		MinPassRate:       0.8,
		InitialConfidence: 0.6,
		Reinforce:         0.1,
		Decay:             0.5,
		Floor:             0.5,
	}
}

// Observation is the extraction outcome of one page of a run.
type Observation struct {
	Page        *boothcrawl.Page
	Variant     boothcrawl.Variant
	PatternMiss bool

	// Candidates is every candidate extracted from the page.
	Candidates []*boothcrawl.Candidate

	// Valid is the subset of Candidates that passed validation.
	Valid []*boothcrawl.Candidate
}

// Outcome describes what Learn did.
type Outcome string

// Learning outcomes.
const (
	OutcomeNone       Outcome = "none"
	OutcomeLearned    Outcome = "learned"
	OutcomeReinforced Outcome = "reinforced"
	OutcomeDecayed    Outcome = "decayed"
)

// Learner reads the stored pattern before and writes it after each run.
type Learner struct {
	Patterns  boothcrawl.PatternService
	Extractor boothcrawl.PatternExtractor
	Config    Config

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Learn updates the source's pattern from the pages of a finished run. It
// returns the source's pattern after the update, nil when it has none.
func (l *Learner) Learn(ctx context.Context, sourceID string, observations []Observation) (*boothcrawl.Pattern, Outcome, error) {
	current, err := l.Patterns.FindPatternBySource(ctx, sourceID)
	if err != nil && boothcrawl.ErrorCode(err) != boothcrawl.ENOTFOUND {
		return nil, OutcomeNone, err
	}

	var patterned, patternedValid int
	var best *Observation
	for i := range observations {
		o := &observations[i]
		if o.Variant == boothcrawl.VariantPatterned || o.PatternMiss {
			patterned++
			if o.Variant == boothcrawl.VariantPatterned {
				patternedValid += len(o.Valid)
			}
		}
		if !l.qualifies(o) {
			continue
		}
		if best == nil || len(o.Valid) > len(best.Valid) {
			best = o
		}
	}

	now := l.now()

	if current != nil && patterned > 0 && patternedValid == 0 {
		current.Confidence *= l.Config.Decay
		current.Misses++
		if current.Confidence < l.Config.Floor {
			current.Usable = false
		}
		if err := l.Patterns.SavePattern(ctx, current); err != nil {
			return nil, OutcomeNone, err
		}
		if best == nil {
			return current, OutcomeDecayed, nil
		}
	}

	if best == nil {
		return current, OutcomeNone, nil
	}

	var derived *boothcrawl.Pattern
	if best.Variant == boothcrawl.VariantPatterned && current != nil {
		derived = current
	} else {
		derived, err = l.Extractor.Derive(best.Page, best.Valid)
		if boothcrawl.ErrorCode(err) == boothcrawl.ENOTFOUND {
			return current, OutcomeNone, nil
		} else if err != nil {
			return nil, OutcomeNone, err
		}
	}

	// A pattern decayed below the floor is relearned, not reinforced.
	outcome := OutcomeLearned
	if current != nil && current.Usable && current.Signature() == derived.Signature() {
		current.Confidence = min(1, current.Confidence+l.Config.Reinforce)
		current.Usable = current.Confidence >= l.Config.Floor
		current.ValidatedAt = now
		derived = current
		outcome = OutcomeReinforced
	} else {
		derived.SourceID = sourceID
		derived.Confidence = l.Config.InitialConfidence
		derived.Usable = derived.Confidence >= l.Config.Floor
		derived.Misses = 0
		derived.LearnedAt = now
		derived.ValidatedAt = now
	}

	if err := l.Patterns.SavePattern(ctx, derived); err != nil {
		return nil, OutcomeNone, err
	}
	return derived, outcome, nil
}

// qualifies reports whether a page produced enough valid records to learn
// from.
func (l *Learner) qualifies(o *Observation) bool {
	if o.Variant != boothcrawl.VariantGeneric && o.Variant != boothcrawl.VariantPatterned {
		return false
	}
	if o.Page == nil || len(o.Candidates) == 0 {
		return false
	}
	if len(o.Valid) < l.Config.MinRecords {
		return false
	}
	return float64(len(o.Valid))/float64(len(o.Candidates)) >= l.Config.MinPassRate
}

func (l *Learner) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
