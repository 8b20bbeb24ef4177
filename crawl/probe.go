package crawl

import (
	"context"

	"github.com/fwojciec/boothcrawl"
)

// ContentDiffers compares the main content of a statically fetched page
// with its browser-rendered version. It returns true if the rendered
// content is more than 50% longer, or if extraction fails on either.
func ContentDiffers(staticHTML, renderedHTML string, extractor boothcrawl.ContentExtractor) bool {
	staticResult, err := extractor.Extract(staticHTML)
	if err != nil {
		return true
	}
	renderedResult, err := extractor.Extract(renderedHTML)
	if err != nil {
		return true
	}

	staticLen := len(staticResult.ContentHTML)
	renderedLen := len(renderedResult.ContentHTML)
	if staticLen == 0 && renderedLen > 0 {
		return true
	}
	return float64(renderedLen) > float64(staticLen)*1.5
}

// NeedsRendering probes url with both fetchers and reports whether the
// source should be fetched through the browser. A failing static fetch
// means rendering is needed; a failing browser fetch means it is not.
func NeedsRendering(ctx context.Context, url string, static, browser boothcrawl.Fetcher, extractor boothcrawl.ContentExtractor) (bool, error) {
	staticHTML, staticErr := static.Fetch(ctx, url)
	renderedHTML, renderedErr := browser.Fetch(ctx, url)

	switch {
	case staticErr != nil && renderedErr != nil:
		return false, renderedErr
	case staticErr != nil:
		return true, nil
	case renderedErr != nil:
		return false, nil
	}
	return ContentDiffers(staticHTML, renderedHTML, extractor), nil
}
