package boothcrawl_test

import (
	"testing"

	"github.com/fwojciec/boothcrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts street address", func(t *testing.T) {
		t.Parallel()

		rec, err := boothcrawl.Validate(&boothcrawl.Candidate{
			Name:    "Photo Booth Bar",
			Address: "123 Main St, Springfield",
			City:    "Springfield",
		})

		require.NoError(t, err)
		assert.Equal(t, "123 Main St, Springfield", rec.Address)
		assert.Equal(t, "photo booth bar", rec.NormalizedName)
		assert.Equal(t, "springfield", rec.NormalizedCity)
		assert.Equal(t, "123 main", rec.StreetKey)
		assert.False(t, rec.Sanitized)
		assert.Empty(t, rec.Errors)
	})

	t.Run("rejects short addresses regardless of other fields", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{"1 A St", "12 Elm", "9 Oak Rd"} {
			_, err := boothcrawl.Validate(&boothcrawl.Candidate{
				Name:      "Venue",
				Address:   addr,
				City:      "Springfield",
				Latitude:  ptr(40),
				Longitude: ptr(-89),
			})
			require.Error(t, err, addr)
			assert.Equal(t, boothcrawl.EREJECTED, boothcrawl.ErrorCode(err))
		}
	})

	t.Run("rejects address equal to name ignoring case and whitespace", func(t *testing.T) {
		t.Parallel()

		_, err := boothcrawl.Validate(&boothcrawl.Candidate{
			Name:    "The 123 Lounge Bar",
			Address: "  the 123   LOUNGE bar ",
		})

		require.Error(t, err)
		assert.Equal(t, boothcrawl.EREJECTED, boothcrawl.ErrorCode(err))
		assert.Contains(t, boothcrawl.ErrorMessage(err), "repeats the name")
	})

	t.Run("rejects address without street number", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{"Main Street, Springfield", "Downtown near the station", "Unit 5"} {
			_, err := boothcrawl.Validate(&boothcrawl.Candidate{Name: "Venue", Address: addr})
			require.Error(t, err, addr)
			assert.Equal(t, boothcrawl.EREJECTED, boothcrawl.ErrorCode(err))
		}
	})

	t.Run("accepts embedded street number", func(t *testing.T) {
		t.Parallel()

		rec, err := boothcrawl.Validate(&boothcrawl.Candidate{Name: "Venue", Address: "Corner of 5th and 42 Broadway"})

		require.NoError(t, err)
		assert.Equal(t, "42 broadway", rec.StreetKey)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		_, err := boothcrawl.Validate(&boothcrawl.Candidate{Name: "   ", Address: "123 Main St, Springfield"})

		require.Error(t, err)
		assert.Equal(t, boothcrawl.EREJECTED, boothcrawl.ErrorCode(err))
	})

	t.Run("accepts missing address", func(t *testing.T) {
		t.Parallel()

		rec, err := boothcrawl.Validate(&boothcrawl.Candidate{Name: "Venue", Latitude: ptr(51.5), Longitude: ptr(-0.12)})

		require.NoError(t, err)
		assert.Empty(t, rec.StreetKey)
		assert.True(t, rec.HasCoordinates())
	})

	t.Run("clears out of range coordinates without rejecting", func(t *testing.T) {
		t.Parallel()

		rec, err := boothcrawl.Validate(&boothcrawl.Candidate{
			Name:      "Venue",
			Address:   "123 Main St, Springfield",
			Latitude:  ptr(123.4),
			Longitude: ptr(10),
		})

		require.NoError(t, err)
		assert.Nil(t, rec.Latitude)
		assert.Nil(t, rec.Longitude)
		assert.True(t, rec.Sanitized)
	})

	t.Run("trims without rewriting", func(t *testing.T) {
		t.Parallel()

		rec, err := boothcrawl.Validate(&boothcrawl.Candidate{
			Name:     "  Café Flash ",
			Address:  "\t12 Rue de Rivoli, Paris ",
			Metadata: map[string]string{"phone": " +33 1 23 ", "hours": "  "},
		})

		require.NoError(t, err)
		assert.Equal(t, "Café Flash", rec.Name)
		assert.Equal(t, "12 Rue de Rivoli, Paris", rec.Address)
		assert.Equal(t, "cafe flash", rec.NormalizedName)
		assert.Equal(t, map[string]string{"phone": "+33 1 23"}, rec.Metadata)
		assert.True(t, rec.Sanitized)
	})

	t.Run("does not mutate the candidate", func(t *testing.T) {
		t.Parallel()

		c := &boothcrawl.Candidate{Name: " Venue ", Address: "123 Main St, Springfield", Latitude: ptr(500), Longitude: ptr(1)}
		_, err := boothcrawl.Validate(c)

		require.NoError(t, err)
		assert.Equal(t, " Venue ", c.Name)
		require.NotNil(t, c.Latitude)
	})
}
