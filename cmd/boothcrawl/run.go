package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/crawl"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	if deps.Runner == nil {
		return boothcrawl.Errorf(boothcrawl.EINTERNAL, "runner not configured")
	}

	sources, err := c.sources(deps)
	if err != nil {
		return reportError(deps, err)
	}
	if len(sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No enabled sources. Use 'boothcrawl enable' to enable one.")
		return nil
	}

	var failed int
	for _, source := range sources {
		if deps.Ctx.Err() != nil {
			break
		}
		if !c.runOne(deps, source) {
			failed++
		}
	}

	if failed > 0 {
		return boothcrawl.Errorf(boothcrawl.EINTERNAL, "%d of %d runs failed", failed, len(sources))
	}
	return deps.Ctx.Err()
}

func (c *RunCmd) sources(deps *Dependencies) ([]*boothcrawl.Source, error) {
	if c.All {
		enabled := true
		return deps.Sources.FindSources(deps.Ctx, boothcrawl.SourceFilter{Enabled: &enabled})
	}
	if len(c.Sources) == 0 {
		return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "name a source or use --all")
	}

	sources := make([]*boothcrawl.Source, 0, len(c.Sources))
	for _, ref := range c.Sources {
		source, err := findSource(deps, ref)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, nil
}

// runOne streams one source run to stdout. It returns false when the run
// failed or could not start.
func (c *RunCmd) runOne(deps *Dependencies, source *boothcrawl.Source) bool {
	fmt.Fprintf(deps.Stdout, "%s (%s)\n", source.Name, source.ID)

	start := time.Now()
	ok := true
	for event := range deps.Runner.Stream(deps.Ctx, source.ID) {
		switch event.Type {
		case boothcrawl.EventStage:
			if event.Stage.Final() {
				continue
			}
			fmt.Fprintf(deps.Stdout, "  %s\n", event.Stage)
		case boothcrawl.EventLog:
			fmt.Fprintf(deps.Stderr, "  %s\n", event.Message)
		case boothcrawl.EventComplete:
			line := fmt.Sprintf("  %s in %s", event.Message, time.Since(start).Round(time.Millisecond))
			if event.Counts != nil {
				line += ": " + crawl.FormatCounts(*event.Counts)
			}
			fmt.Fprintln(deps.Stdout, line)
		case boothcrawl.EventError:
			fmt.Fprintf(deps.Stderr, "  error: %s\n", event.Message)
			ok = false
		}
	}
	return ok
}
