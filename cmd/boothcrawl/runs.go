package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := boothcrawl.RunFilter{Limit: c.Limit}
	if c.Source != "" {
		source, err := findSource(deps, c.Source)
		if err != nil {
			return reportError(deps, err)
		}
		filter.SourceID = &source.ID
	}

	runs, err := deps.Sources.FindRuns(deps.Ctx, filter)
	if err != nil {
		return reportError(deps, err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'boothcrawl run' to crawl a source.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tSOURCE\tSTATUS\tPAGES\tFOUND\tADDED\tUPDATED\tREJECTED\tDURATION\tERROR")
	for _, r := range runs {
		pages := fmt.Sprintf("%d", r.Pages)
		if r.FailedPages > 0 {
			pages = fmt.Sprintf("%d/%d", r.Pages-r.FailedPages, r.Pages)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.FinishedAt.Format("2006-01-02 15:04"), r.SourceID, r.Status, pages,
			r.Found, r.Added, r.Updated, r.Rejected,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), r.Error)
	}
	return w.Flush()
}
