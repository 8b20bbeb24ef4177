package boothcrawl

import (
	"context"
	"time"
)

// Booth is the canonical, deduplicated record of a real-world venue.
// NormalizedName, NormalizedCity and StreetKey are match keys derived from
// the display fields.
type Booth struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	NormalizedName string            `json:"normalizedName"`
	Address        string            `json:"address"`
	City           string            `json:"city"`
	NormalizedCity string            `json:"normalizedCity"`
	StreetKey      string            `json:"streetKey"`
	Region         string            `json:"region"`
	Country        string            `json:"country"`
	Latitude       *float64          `json:"latitude"`
	Longitude      *float64          `json:"longitude"`
	Metadata       map[string]string `json:"metadata"`
	SourceID       string            `json:"sourceId"`
	SourceTrust    int               `json:"sourceTrust"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// Validate returns an error if the booth contains invalid fields.
func (b *Booth) Validate() error {
	if b.Name == "" {
		return Errorf(EINVALID, "booth name required")
	}
	if b.NormalizedName == "" {
		return Errorf(EINVALID, "booth normalized name required")
	}
	if (b.Latitude == nil) != (b.Longitude == nil) {
		return Errorf(EINVALID, "booth coordinates must be set together")
	}
	return nil
}

// HasCoordinates reports whether both coordinates are set.
func (b *Booth) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// BoothService represents the canonical store.
type BoothService interface {
	// CreateBooth inserts a new booth.
	CreateBooth(ctx context.Context, booth *Booth) error

	// UpdateBooth replaces the mutable fields of an existing booth.
	// Returns ENOTFOUND if the booth does not exist.
	UpdateBooth(ctx context.Context, booth *Booth) error

	// FindBoothByID retrieves a booth by ID.
	// Returns ENOTFOUND if the booth does not exist.
	FindBoothByID(ctx context.Context, id string) (*Booth, error)

	// FindBooths retrieves booths matching the filter.
	FindBooths(ctx context.Context, filter BoothFilter) ([]*Booth, error)
}

// BoothFilter represents a filter for FindBooths.
type BoothFilter struct {
	ID             *string `json:"id"`
	NormalizedName *string `json:"normalizedName"`
	NormalizedCity *string `json:"normalizedCity"`
	SourceID       *string `json:"sourceId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
