package main

import (
	"fmt"

	"github.com/fwojciec/boothcrawl"
)

// Run executes the enable command.
func (c *EnableCmd) Run(deps *Dependencies) error {
	return setEnabled(deps, c.Source, true)
}

// Run executes the disable command.
func (c *DisableCmd) Run(deps *Dependencies) error {
	return setEnabled(deps, c.Source, false)
}

func setEnabled(deps *Dependencies, ref string, enabled bool) error {
	source, err := findSource(deps, ref)
	if err != nil {
		return reportError(deps, err)
	}

	if _, err := deps.Sources.UpdateSource(deps.Ctx, source.ID, boothcrawl.SourceUpdate{Enabled: &enabled}); err != nil {
		return reportError(deps, err)
	}

	verb := "Disabled"
	if enabled {
		verb = "Enabled"
	}
	fmt.Fprintf(deps.Stdout, "%s source %q\n", verb, source.Name)
	return nil
}

// Run executes the reset command. Only a source left in running by an
// interrupted process is reset; other statuses are reported unchanged.
func (c *ResetCmd) Run(deps *Dependencies) error {
	source, err := findSource(deps, c.Source)
	if err != nil {
		return reportError(deps, err)
	}

	if source.Status != boothcrawl.SourceRunning {
		fmt.Fprintf(deps.Stdout, "Source %q is %s, nothing to reset\n", source.Name, source.Status)
		return nil
	}

	idle := boothcrawl.SourceIdle
	if _, err := deps.Sources.UpdateSource(deps.Ctx, source.ID, boothcrawl.SourceUpdate{Status: &idle}); err != nil {
		return reportError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Reset source %q to idle\n", source.Name)
	return nil
}
