// Package reconcile merges validated records into the canonical booth store.
//
// A record matches a booth when their normalized names are equal and their
// locations agree: coordinates within the configured radius, or the same
// normalized city and street-number prefix. A side without any location
// evidence matches on normalized name and city alone. Matching records are
// merged field by field; unmatched records become new booths.
package reconcile

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// DefaultRadiusMeters is the coordinate proximity within which two records
// with the same name are the same venue.
const DefaultRadiusMeters = 50

// Config holds the reconciliation tuning parameters.
type Config struct {
	RadiusMeters float64
}

// DefaultConfig returns the default reconciliation parameters.
func DefaultConfig() Config {
	return Config{RadiusMeters: DefaultRadiusMeters}
}

// Reconciler creates sessions against the canonical store.
type Reconciler struct {
	Booths boothcrawl.BoothService
	Config Config

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Result holds the writes made by one Apply call.
type Result struct {
	Added   int
	Updated int
}

// NewSession starts reconciling the records of one run of source.
func (r *Reconciler) NewSession(source *boothcrawl.Source) *Session {
	return &Session{
		r:      r,
		source: source,
		byName: make(map[string][]*entry),
	}
}

// Session reconciles the batches of a single run. Booths matched or created
// earlier in the run are kept in memory, so later records that match them
// are merged before any further write. It is safe for concurrent use.
type Session struct {
	r      *Reconciler
	source *boothcrawl.Source

	mu     sync.Mutex
	byName map[string][]*entry
}

type entry struct {
	booth  *boothcrawl.Booth
	stored bool
	dirty  bool
}

// Apply reconciles one batch and commits its writes. Records of the batch
// that match the same booth produce a single write.
func (s *Session) Apply(ctx context.Context, records []*boothcrawl.ValidatedRecord) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var touched []*entry
	for _, rec := range records {
		e, err := s.match(ctx, rec)
		if err != nil {
			return Result{}, err
		}
		if e == nil {
			e = &entry{booth: s.newBooth(rec), dirty: true}
			s.byName[rec.NormalizedName] = append(s.byName[rec.NormalizedName], e)
			touched = append(touched, e)
			continue
		}
		if merge(e.booth, rec, s.source) && !e.dirty {
			e.dirty = true
			touched = append(touched, e)
		}
	}

	var result Result
	for _, e := range touched {
		if e.stored {
			e.booth.UpdatedAt = s.now()
			if err := s.r.Booths.UpdateBooth(ctx, e.booth); err != nil {
				return result, fmt.Errorf("update booth %s: %w", e.booth.ID, err)
			}
			result.Updated++
		} else {
			if err := s.r.Booths.CreateBooth(ctx, e.booth); err != nil {
				return result, fmt.Errorf("create booth %q: %w", e.booth.Name, err)
			}
			e.stored = true
			result.Added++
		}
		e.dirty = false
	}
	return result, nil
}

// match returns the known booth rec refers to, loading same-name booths
// from the store on first sight of the name.
func (s *Session) match(ctx context.Context, rec *boothcrawl.ValidatedRecord) (*entry, error) {
	entries, ok := s.byName[rec.NormalizedName]
	if !ok {
		name := rec.NormalizedName
		booths, err := s.r.Booths.FindBooths(ctx, boothcrawl.BoothFilter{NormalizedName: &name})
		if err != nil {
			return nil, fmt.Errorf("find booths: %w", err)
		}
		for _, b := range booths {
			entries = append(entries, &entry{booth: b, stored: true})
		}
		s.byName[rec.NormalizedName] = entries
	}

	for _, e := range entries {
		if Matches(e.booth, rec, s.radius()) {
			return e, nil
		}
	}
	return nil, nil
}

func (s *Session) newBooth(rec *boothcrawl.ValidatedRecord) *boothcrawl.Booth {
	now := s.now()
	b := &boothcrawl.Booth{
		Name:           rec.Name,
		NormalizedName: rec.NormalizedName,
		Address:        rec.Address,
		City:           rec.City,
		NormalizedCity: rec.NormalizedCity,
		StreetKey:      rec.StreetKey,
		Region:         rec.Region,
		Country:        rec.Country,
		Latitude:       rec.Latitude,
		Longitude:      rec.Longitude,
		Metadata:       maps.Clone(rec.Metadata),
		SourceID:       s.source.ID,
		SourceTrust:    s.source.Trust,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return b
}

func (s *Session) radius() float64 {
	if s.r.Config.RadiusMeters <= 0 {
		return DefaultRadiusMeters
	}
	return s.r.Config.RadiusMeters
}

func (s *Session) now() time.Time {
	if s.r.Now != nil {
		return s.r.Now()
	}
	return time.Now()
}

// Matches reports whether rec refers to booth b.
func Matches(b *boothcrawl.Booth, rec *boothcrawl.ValidatedRecord, radius float64) bool {
	if b.NormalizedName != rec.NormalizedName {
		return false
	}
	if b.HasCoordinates() && rec.HasCoordinates() &&
		boothcrawl.Distance(*b.Latitude, *b.Longitude, *rec.Latitude, *rec.Longitude) <= radius {
		return true
	}
	if b.NormalizedCity != rec.NormalizedCity {
		return false
	}
	if b.StreetKey != "" && b.StreetKey == rec.StreetKey {
		return true
	}
	// Records without location evidence only fold into booths that have
	// none either, and only within a named city.
	unlocated := func(hasCoords bool, streetKey string) bool { return !hasCoords && streetKey == "" }
	return rec.NormalizedCity != "" &&
		unlocated(b.HasCoordinates(), b.StreetKey) && unlocated(rec.HasCoordinates(), rec.StreetKey)
}

// merge copies rec's fields into b where b is empty, or where the source
// outranks the booth's current trust. Empty values never overwrite. Reports
// whether b changed.
func merge(b *boothcrawl.Booth, rec *boothcrawl.ValidatedRecord, source *boothcrawl.Source) bool {
	higher := source.Trust > b.SourceTrust
	changed := false

	set := func(dst *string, v string) {
		if v == "" || *dst == v {
			return
		}
		if *dst == "" || higher {
			*dst = v
			changed = true
		}
	}
	set(&b.Name, rec.Name)
	set(&b.Address, rec.Address)
	set(&b.City, rec.City)
	set(&b.Region, rec.Region)
	set(&b.Country, rec.Country)
	b.StreetKey = boothcrawl.StreetKey(b.Address)
	b.NormalizedCity = boothcrawl.NormalizeCity(b.City)

	if rec.HasCoordinates() && (!b.HasCoordinates() || higher) &&
		(!b.HasCoordinates() || *b.Latitude != *rec.Latitude || *b.Longitude != *rec.Longitude) {
		lat, lng := *rec.Latitude, *rec.Longitude
		b.Latitude, b.Longitude = &lat, &lng
		changed = true
	}

	for k, v := range rec.Metadata {
		if v == "" || b.Metadata[k] == v {
			continue
		}
		if b.Metadata[k] == "" || higher {
			if b.Metadata == nil {
				b.Metadata = make(map[string]string)
			}
			b.Metadata[k] = v
			changed = true
		}
	}

	if higher {
		b.SourceTrust = source.Trust
		b.SourceID = source.ID
		changed = true
	}
	return changed
}
