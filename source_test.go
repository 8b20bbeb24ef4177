package boothcrawl_test

import (
	"testing"

	"github.com/fwojciec/boothcrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *boothcrawl.Source {
		return &boothcrawl.Source{
			Name:          "city-guide",
			URLs:          []string{"https://venues.example/booths"},
			ExtractorType: boothcrawl.ExtractorGeneric,
		}
	}

	t.Run("accepts a complete source", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, valid().Validate())
	})

	t.Run("requires a name", func(t *testing.T) {
		t.Parallel()
		s := valid()
		s.Name = "  "
		assert.Equal(t, boothcrawl.EINVALID, boothcrawl.ErrorCode(s.Validate()))
	})

	t.Run("requires URLs", func(t *testing.T) {
		t.Parallel()
		s := valid()
		s.URLs = nil
		assert.Equal(t, boothcrawl.EINVALID, boothcrawl.ErrorCode(s.Validate()))
	})

	t.Run("rejects non-HTTP URLs", func(t *testing.T) {
		t.Parallel()
		s := valid()
		s.URLs = []string{"ftp://venues.example"}
		assert.Equal(t, boothcrawl.EINVALID, boothcrawl.ErrorCode(s.Validate()))
	})

	t.Run("rejects unknown extractor types", func(t *testing.T) {
		t.Parallel()
		s := valid()
		s.ExtractorType = "magic"
		assert.Equal(t, boothcrawl.EINVALID, boothcrawl.ErrorCode(s.Validate()))
	})

	t.Run("rejects invalid filter patterns", func(t *testing.T) {
		t.Parallel()
		s := valid()
		s.Filter = "!(unclosed"
		assert.Equal(t, boothcrawl.EINVALID, boothcrawl.ErrorCode(s.Validate()))
	})
}

func TestSource_PageLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, boothcrawl.DefaultMaxPages, (&boothcrawl.Source{}).PageLimit())
	assert.Equal(t, 7, (&boothcrawl.Source{MaxPages: 7}).PageLimit())
}

func TestSource_URLFilter(t *testing.T) {
	t.Parallel()

	t.Run("nil without patterns", func(t *testing.T) {
		t.Parallel()

		filter, err := (&boothcrawl.Source{Filter: "\n  \n"}).URLFilter()
		require.NoError(t, err)
		assert.Nil(t, filter)
		assert.True(t, filter.Match("https://venues.example/anything"))
	})

	t.Run("includes and excludes", func(t *testing.T) {
		t.Parallel()

		filter, err := (&boothcrawl.Source{Filter: "/venues/\n!/venues/closed/\n/booths/"}).URLFilter()
		require.NoError(t, err)
		require.NotNil(t, filter)
		assert.Len(t, filter.Include, 2)
		assert.Len(t, filter.Exclude, 1)

		assert.True(t, filter.Match("https://venues.example/venues/lucky-bar"))
		assert.True(t, filter.Match("https://venues.example/booths/berlin"))
		assert.False(t, filter.Match("https://venues.example/venues/closed/old-bar"))
		assert.False(t, filter.Match("https://venues.example/about"))
	})

	t.Run("exclude only keeps everything else", func(t *testing.T) {
		t.Parallel()

		filter, err := (&boothcrawl.Source{Filter: "!\\.pdf$"}).URLFilter()
		require.NoError(t, err)
		assert.True(t, filter.Match("https://venues.example/list"))
		assert.False(t, filter.Match("https://venues.example/list.pdf"))
	})
}
