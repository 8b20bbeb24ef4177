package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/boothcrawl"
)

// Run executes the booths command.
func (c *BoothsCmd) Run(deps *Dependencies) error {
	filter := boothcrawl.BoothFilter{Limit: c.Limit}
	if c.City != "" {
		city := boothcrawl.NormalizeCity(c.City)
		filter.NormalizedCity = &city
	}
	if c.Name != "" {
		name := boothcrawl.NormalizeName(c.Name)
		filter.NormalizedName = &name
	}
	if c.Source != "" {
		source, err := findSource(deps, c.Source)
		if err != nil {
			return reportError(deps, err)
		}
		filter.SourceID = &source.ID
	}

	booths, err := deps.Booths.FindBooths(deps.Ctx, filter)
	if err != nil {
		return reportError(deps, err)
	}

	if len(booths) == 0 {
		fmt.Fprintln(deps.Stdout, "No booths found.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tCITY\tCOUNTRY\tCOORDINATES\tID")
	for _, b := range booths {
		coords := "-"
		if b.HasCoordinates() {
			coords = fmt.Sprintf("%.5f,%.5f", *b.Latitude, *b.Longitude)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", b.Name, b.Address, b.City, b.Country, coords, b.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "%d booths\n", len(booths))
	return nil
}
