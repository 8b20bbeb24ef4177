package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestBoothService_CreateBooth(t *testing.T) {
	t.Parallel()

	t.Run("round trips coordinates and metadata", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBoothService(setupTestDB(t))
		ctx := context.Background()

		booth := &boothcrawl.Booth{
			Name:           "Joe's Bar",
			NormalizedName: "joes bar",
			Address:        "123 Elm St, Springfield",
			City:           "Springfield",
			NormalizedCity: "springfield",
			StreetKey:      "123 elm",
			Latitude:       ptr(40.1),
			Longitude:      ptr(-73.2),
			Metadata:       map[string]string{"hours": "9-5"},
			SourceID:       "src",
			SourceTrust:    2,
		}
		require.NoError(t, svc.CreateBooth(ctx, booth))
		assert.NotEmpty(t, booth.ID)

		found, err := svc.FindBoothByID(ctx, booth.ID)
		require.NoError(t, err)
		assert.Equal(t, "Joe's Bar", found.Name)
		require.NotNil(t, found.Latitude)
		assert.InDelta(t, 40.1, *found.Latitude, 1e-9)
		assert.Equal(t, map[string]string{"hours": "9-5"}, found.Metadata)
		assert.Equal(t, 2, found.SourceTrust)
	})

	t.Run("stores missing coordinates as null", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBoothService(setupTestDB(t))
		ctx := context.Background()

		booth := &boothcrawl.Booth{Name: "Venue", NormalizedName: "venue"}
		require.NoError(t, svc.CreateBooth(ctx, booth))

		found, err := svc.FindBoothByID(ctx, booth.ID)
		require.NoError(t, err)
		assert.Nil(t, found.Latitude)
		assert.Nil(t, found.Longitude)
		assert.Nil(t, found.Metadata)
	})

	t.Run("rejects half a coordinate pair", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBoothService(setupTestDB(t))
		err := svc.CreateBooth(context.Background(), &boothcrawl.Booth{
			Name: "Venue", NormalizedName: "venue", Latitude: ptr(1),
		})
		assert.Equal(t, boothcrawl.EINVALID, boothcrawl.ErrorCode(err))
	})
}

func TestBoothService_UpdateBooth(t *testing.T) {
	t.Parallel()

	t.Run("replaces fields", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBoothService(setupTestDB(t))
		ctx := context.Background()
		booth := &boothcrawl.Booth{Name: "Venue", NormalizedName: "venue"}
		require.NoError(t, svc.CreateBooth(ctx, booth))

		booth.Address = "1 Main St, Town"
		booth.Latitude = ptr(1)
		booth.Longitude = ptr(2)
		require.NoError(t, svc.UpdateBooth(ctx, booth))

		found, err := svc.FindBoothByID(ctx, booth.ID)
		require.NoError(t, err)
		assert.Equal(t, "1 Main St, Town", found.Address)
		assert.True(t, found.HasCoordinates())
	})

	t.Run("returns not found for missing booth", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBoothService(setupTestDB(t))
		err := svc.UpdateBooth(context.Background(), &boothcrawl.Booth{ID: "missing", Name: "x", NormalizedName: "x"})
		assert.Equal(t, boothcrawl.ENOTFOUND, boothcrawl.ErrorCode(err))
	})
}

func TestBoothService_FindBooths(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewBoothService(setupTestDB(t))
	ctx := context.Background()
	for _, b := range []*boothcrawl.Booth{
		{Name: "Joe's Bar", NormalizedName: "joes bar", NormalizedCity: "springfield", SourceID: "a"},
		{Name: "Joes Bar", NormalizedName: "joes bar", NormalizedCity: "shelbyville", SourceID: "b"},
		{Name: "Moe's", NormalizedName: "moes", NormalizedCity: "springfield", SourceID: "a"},
	} {
		require.NoError(t, svc.CreateBooth(ctx, b))
	}

	t.Run("filters by normalized name", func(t *testing.T) {
		t.Parallel()

		name := "joes bar"
		booths, err := svc.FindBooths(ctx, boothcrawl.BoothFilter{NormalizedName: &name})
		require.NoError(t, err)
		assert.Len(t, booths, 2)
	})

	t.Run("combines filters", func(t *testing.T) {
		t.Parallel()

		name := "joes bar"
		city := "springfield"
		booths, err := svc.FindBooths(ctx, boothcrawl.BoothFilter{NormalizedName: &name, NormalizedCity: &city})
		require.NoError(t, err)
		require.Len(t, booths, 1)
		assert.Equal(t, "Joe's Bar", booths[0].Name)
	})

	t.Run("filters by source", func(t *testing.T) {
		t.Parallel()

		source := "a"
		booths, err := svc.FindBooths(ctx, boothcrawl.BoothFilter{SourceID: &source, Limit: 1})
		require.NoError(t, err)
		assert.Len(t, booths, 1)
	})
}
