package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/crawl"
)

// Prober decides whether a source needs browser rendering.
type Prober struct {
	Static    boothcrawl.Fetcher
	Browser   boothcrawl.Fetcher
	Extractor boothcrawl.ContentExtractor
}

// NeedsRendering fetches url with both fetchers and compares the content.
func (p *Prober) NeedsRendering(ctx context.Context, url string) (bool, error) {
	return crawl.NeedsRendering(ctx, url, p.Static, p.Browser, p.Extractor)
}

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	source := &boothcrawl.Source{
		Name:          c.Name,
		URLs:          c.URLs,
		ExtractorType: boothcrawl.ExtractorType(c.Extractor),
		Enabled:       !c.Disabled,
		Priority:      c.Priority,
		Trust:         c.Trust,
		Country:       c.Country,
		Sitemap:       c.Sitemap,
		Filter:        strings.Join(c.Filter, "\n"),
		RenderJS:      c.RenderJS,
		MaxPages:      c.MaxPages,
	}
	if err := source.Validate(); err != nil {
		return reportError(deps, err)
	}

	if c.Probe && deps.Prober != nil && !c.RenderJS {
		render, err := deps.Prober.NeedsRendering(deps.Ctx, source.URLs[0])
		source.RenderJS = render
		switch {
		case err != nil:
			fmt.Fprintf(deps.Stderr, "warning: probe failed, keeping static fetching: %s\n", boothcrawl.ErrorMessage(err))
		case render:
			fmt.Fprintln(deps.Stdout, "  Probe: content appears after rendering, enabling render_js")
		default:
			fmt.Fprintln(deps.Stdout, "  Probe: static HTML is sufficient")
		}
	}

	if err := deps.Sources.CreateSource(deps.Ctx, source); err != nil {
		return reportError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Added source %q (%s)\n", source.Name, source.ID)
	return nil
}
