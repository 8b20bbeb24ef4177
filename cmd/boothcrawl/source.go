package main

import (
	"fmt"

	"github.com/fwojciec/boothcrawl"
)

// findSource resolves a source by ID, falling back to its name.
func findSource(deps *Dependencies, ref string) (*boothcrawl.Source, error) {
	source, err := deps.Sources.FindSourceByID(deps.Ctx, ref)
	if err == nil {
		return source, nil
	}
	if boothcrawl.ErrorCode(err) != boothcrawl.ENOTFOUND {
		return nil, err
	}

	sources, err := deps.Sources.FindSources(deps.Ctx, boothcrawl.SourceFilter{Name: &ref, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "source %q not found", ref)
	}
	return sources[0], nil
}

// reportError prints err for the operator and returns it.
func reportError(deps *Dependencies, err error) error {
	msg := boothcrawl.ErrorMessage(err)
	if boothcrawl.ErrorCode(err) == boothcrawl.ENOTFOUND {
		msg += ". Use 'boothcrawl list' to see registered sources."
	}
	fmt.Fprintf(deps.Stderr, "error: %s\n", msg)
	return err
}
