package boothcrawl

import (
	"strings"
	"unicode/utf8"
)

// MinAddressLength is the shortest address accepted as a street address.
const MinAddressLength = 10

// ValidatedRecord is a candidate that passed field validation.
// Display fields are trimmed but otherwise untouched; match keys are
// computed separately.
type ValidatedRecord struct {
	Candidate

	NormalizedName string
	NormalizedCity string
	StreetKey      string

	// Sanitized is set when trimming or coordinate clearing changed the
	// candidate.
	Sanitized bool

	// Errors is empty for every record returned by Validate.
	Errors []string
}

// HasCoordinates reports whether both coordinates are set.
func (r *ValidatedRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Validate checks a candidate against the structural field rules and
// returns the sanitized record. Rejections return EREJECTED with the reason.
// Validate is a gate, not a corrector: it never rewrites name or address
// beyond trimming whitespace.
func Validate(c *Candidate) (*ValidatedRecord, error) {
	if c == nil {
		return nil, Errorf(EREJECTED, "candidate required")
	}

	rec := &ValidatedRecord{Candidate: *c}
	trim := func(s *string) {
		if t := strings.TrimSpace(*s); t != *s {
			*s = t
			rec.Sanitized = true
		}
	}
	trim(&rec.Name)
	trim(&rec.Address)
	trim(&rec.City)
	trim(&rec.Region)
	trim(&rec.Country)

	if rec.Name == "" {
		return nil, Errorf(EREJECTED, "name is empty")
	}

	if rec.Address != "" {
		if utf8.RuneCountInString(rec.Address) < MinAddressLength {
			return nil, Errorf(EREJECTED, "address %q is shorter than %d characters", rec.Address, MinAddressLength)
		}
		if sameText(rec.Address, rec.Name) {
			return nil, Errorf(EREJECTED, "address repeats the name %q", rec.Name)
		}
		if !HasStreetNumber(rec.Address) {
			return nil, Errorf(EREJECTED, "address %q has no street number", rec.Address)
		}
	}

	if rec.Latitude != nil || rec.Longitude != nil {
		if rec.Latitude == nil || rec.Longitude == nil || !ValidCoordinates(*rec.Latitude, *rec.Longitude) {
			rec.Latitude = nil
			rec.Longitude = nil
			rec.Sanitized = true
		}
	}

	if len(c.Metadata) > 0 {
		rec.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			t := strings.TrimSpace(v)
			if t != v {
				rec.Sanitized = true
			}
			if t != "" {
				rec.Metadata[k] = t
			}
		}
	}

	rec.NormalizedName = NormalizeName(rec.Name)
	rec.NormalizedCity = NormalizeCity(rec.City)
	rec.StreetKey = StreetKey(rec.Address)
	if rec.NormalizedName == "" {
		rec.NormalizedName = strings.ToLower(rec.Name)
	}

	return rec, nil
}

// sameText compares two strings ignoring case and runs of whitespace.
func sameText(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}
