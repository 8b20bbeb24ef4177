package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/boothcrawl"
	"gopkg.in/yaml.v3"
)

// sourceFile is the YAML document read by the import command.
type sourceFile struct {
	Sources []yaml.Node `yaml:"sources"`
}

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	f, err := os.Open(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	defer f.Close()

	sources, err := DecodeSources(f)
	if err != nil {
		return reportError(deps, err)
	}

	var added, skipped, failed int
	for _, source := range sources {
		existing, err := deps.Sources.FindSources(deps.Ctx, boothcrawl.SourceFilter{Name: &source.Name, Limit: 1})
		if err != nil {
			return reportError(deps, err)
		}
		if len(existing) > 0 {
			fmt.Fprintf(deps.Stdout, "  skip %q: already registered (%s)\n", source.Name, existing[0].ID)
			skipped++
			continue
		}

		if err := deps.Sources.CreateSource(deps.Ctx, source); err != nil {
			fmt.Fprintf(deps.Stderr, "  fail %q: %s\n", source.Name, boothcrawl.ErrorMessage(err))
			failed++
			continue
		}
		fmt.Fprintf(deps.Stdout, "  add %q (%s)\n", source.Name, source.ID)
		added++
	}

	fmt.Fprintf(deps.Stdout, "Imported %d sources (%d skipped, %d failed)\n", added, skipped, failed)
	if failed > 0 {
		return boothcrawl.Errorf(boothcrawl.EINVALID, "%d of %d sources could not be imported", failed, len(sources))
	}
	return nil
}

// DecodeSources reads source definitions from a YAML document with a
// top-level sources list. Sources are enabled and use the generic extractor
// unless the document says otherwise. Every source is validated.
func DecodeSources(r io.Reader) ([]*boothcrawl.Source, error) {
	var file sourceFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "source file is empty")
		}
		return nil, boothcrawl.WrapError(boothcrawl.EINVALID, err, "invalid source file")
	}

	sources := make([]*boothcrawl.Source, 0, len(file.Sources))
	for i := range file.Sources {
		node := &file.Sources[i]
		source := &boothcrawl.Source{
			Enabled:       true,
			ExtractorType: boothcrawl.ExtractorGeneric,
		}
		if err := node.Decode(source); err != nil {
			return nil, boothcrawl.WrapError(boothcrawl.EINVALID, err, "source at line %d", node.Line)
		}
		if err := source.Validate(); err != nil {
			return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "source at line %d: %s", node.Line, boothcrawl.ErrorMessage(err))
		}
		sources = append(sources, source)
	}
	return sources, nil
}
