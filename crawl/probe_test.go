package crawl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/crawl"
	"github.com/fwojciec/boothcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lengthExtractor returns fixed main content per input page.
func lengthExtractor(content map[string]string) *mock.ContentExtractor {
	return &mock.ContentExtractor{ExtractFn: func(html string) (*boothcrawl.ExtractResult, error) {
		c, ok := content[html]
		if !ok {
			return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "no main content")
		}
		return &boothcrawl.ExtractResult{ContentHTML: c}, nil
	}}
}

func TestContentDiffers(t *testing.T) {
	t.Parallel()

	t.Run("rendered content more than 50% longer", func(t *testing.T) {
		t.Parallel()

		extractor := lengthExtractor(map[string]string{
			"static":   "short content",
			"rendered": "a venue list that only appears once scripts have run",
		})
		assert.True(t, crawl.ContentDiffers("static", "rendered", extractor))
	})

	t.Run("similar lengths", func(t *testing.T) {
		t.Parallel()

		extractor := lengthExtractor(map[string]string{
			"static":   "Lucky Bar, 12 Main Street",
			"rendered": "Lucky Bar, 12 Main Street!",
		})
		assert.False(t, crawl.ContentDiffers("static", "rendered", extractor))
	})

	t.Run("empty static content", func(t *testing.T) {
		t.Parallel()

		extractor := lengthExtractor(map[string]string{"static": "", "rendered": "Lucky Bar"})
		assert.True(t, crawl.ContentDiffers("static", "rendered", extractor))
	})

	t.Run("extraction error", func(t *testing.T) {
		t.Parallel()

		extractor := lengthExtractor(map[string]string{"rendered": "Lucky Bar"})
		assert.True(t, crawl.ContentDiffers("static", "rendered", extractor))
	})
}

func TestNeedsRendering(t *testing.T) {
	t.Parallel()

	page := func(html string, err error) *mock.Fetcher {
		return &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) { return html, err }}
	}
	extractor := lengthExtractor(map[string]string{
		"static":   "",
		"rendered": "Lucky Bar, 12 Main Street",
		"same":     "Lucky Bar, 12 Main Street",
	})

	t.Run("rendered page has the venues", func(t *testing.T) {
		t.Parallel()

		got, err := crawl.NeedsRendering(context.Background(), "https://venues.example", page("static", nil), page("rendered", nil), extractor)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("static page is enough", func(t *testing.T) {
		t.Parallel()

		got, err := crawl.NeedsRendering(context.Background(), "https://venues.example", page("same", nil), page("same", nil), extractor)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("static fetch fails", func(t *testing.T) {
		t.Parallel()

		got, err := crawl.NeedsRendering(context.Background(), "https://venues.example", page("", errors.New("403")), page("rendered", nil), extractor)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("browser fails", func(t *testing.T) {
		t.Parallel()

		got, err := crawl.NeedsRendering(context.Background(), "https://venues.example", page("same", nil), page("", errors.New("chrome crashed")), extractor)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("both fail", func(t *testing.T) {
		t.Parallel()

		_, err := crawl.NeedsRendering(context.Background(), "https://venues.example", page("", errors.New("dns")), page("", errors.New("dns")), extractor)
		require.Error(t, err)
	})
}
