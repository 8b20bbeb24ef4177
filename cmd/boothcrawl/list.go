package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/crawl"
)

// maxURLDisplay bounds the seed URL shown per source.
const maxURLDisplay = 40

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	sources, err := deps.Sources.FindSources(deps.Ctx, boothcrawl.SourceFilter{})
	if err != nil {
		return reportError(deps, err)
	}

	if len(sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources found. Use 'boothcrawl add' or 'boothcrawl import' to register one.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tURL\tEXTRACTOR\tSTATUS\tENABLED\tFOUND\tADDED\tLAST CRAWLED")
	for _, s := range sources {
		crawled := "never"
		if s.LastCrawledAt != nil {
			crawled = s.LastCrawledAt.Format("2006-01-02 15:04")
		}
		seed := ""
		if len(s.URLs) > 0 {
			seed = crawl.TruncateURL(s.URLs[0], maxURLDisplay)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%d\t%d\t%s\n",
			s.ID, s.Name, seed, s.ExtractorType, s.Status, s.Enabled, s.TotalFound, s.TotalAdded, crawled)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, s := range sources {
		if s.LastError != "" {
			fmt.Fprintf(deps.Stdout, "%s last error: %s\n", s.Name, s.LastError)
		}
	}
	return nil
}
