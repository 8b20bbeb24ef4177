package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/crawl"
	"github.com/fwojciec/boothcrawl/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	DB      *sqlite.DB
	Sources boothcrawl.SourceService
	Booths  boothcrawl.BoothService

	// Runner is wired for the run command only.
	Runner *crawl.Runner

	// Prober is wired for add --probe only.
	Prober *Prober
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"BOOTHCRAWL_DB" help:"SQLite database path"`
	Verbose bool   `short:"v" help:"Log fetches, LLM calls and registry writes to stderr"`

	Add     AddCmd     `cmd:"" help:"Register a venue source"`
	Import  ImportCmd  `cmd:"" help:"Register sources from a YAML file"`
	List    ListCmd    `cmd:"" help:"List registered sources"`
	Enable  EnableCmd  `cmd:"" help:"Enable a source"`
	Disable DisableCmd `cmd:"" help:"Disable a source"`
	Reset   ResetCmd   `cmd:"" help:"Mark a source stuck in running as idle"`
	Run     RunCmd     `cmd:"" help:"Crawl sources and reconcile their booths"`
	Runs    RunsCmd    `cmd:"" help:"Show run history"`
	Booths  BoothsCmd  `cmd:"" help:"List canonical booths"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Name      string   `arg:"" help:"Source name"`
	URLs      []string `arg:"" name:"url" help:"Seed URLs"`
	Extractor string   `short:"e" default:"generic" enum:"generic,schemaorg,storelocator" help:"Extractor type (${enum})"`
	Trust     int      `short:"t" default:"50" help:"Source trust, higher wins conflicts"`
	Priority  int      `short:"p" default:"0" help:"Run order, higher first"`
	Country   string   `short:"C" help:"Country for booths that do not name one"`
	Filter    []string `short:"F" name:"filter" help:"Keep discovered URLs matching this regex, or drop them with a ! prefix (repeatable)"`
	Sitemap   bool     `help:"Discover pages from the site's sitemap"`
	RenderJS  bool     `name:"render-js" help:"Fetch pages through the headless browser"`
	MaxPages  int      `name:"max-pages" help:"Page limit per run (default 25)"`
	Disabled  bool     `help:"Register the source disabled"`
	Probe     bool     `help:"Fetch the first URL statically and rendered to decide on --render-js"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML file with a top-level sources list"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// EnableCmd is the "enable" subcommand.
type EnableCmd struct {
	Source string `arg:"" help:"Source ID or name"`
}

// DisableCmd is the "disable" subcommand.
type DisableCmd struct {
	Source string `arg:"" help:"Source ID or name"`
}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct {
	Source string `arg:"" help:"Source ID or name"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Sources     []string      `arg:"" optional:"" name:"source" help:"Source IDs or names"`
	All         bool          `short:"a" help:"Run every enabled source"`
	Deadline    time.Duration `default:"10m" help:"Wall-clock limit per run"`
	Concurrency int           `short:"c" default:"4" help:"Pages fetched and extracted at once"`
	Freshness   time.Duration `default:"6h" help:"Reuse snapshots younger than this without fetching"`
	Radius      float64       `default:"50" help:"Coordinate match radius in meters"`
	ArchiveDir  string        `name:"archive-dir" type:"path" help:"Also write raw snapshots below this directory"`
	Browser     bool          `help:"Start a headless browser for sources with render_js"`
	APIKey      string        `name:"api-key" env:"GEMINI_API_KEY" help:"Gemini API key for generic extraction"`
	Model       string        `env:"BOOTHCRAWL_MODEL" default:"gemini-2.5-flash" help:"Gemini model for generic extraction"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Source string `arg:"" optional:"" help:"Source ID or name"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of runs"`
}

// BoothsCmd is the "booths" subcommand.
type BoothsCmd struct {
	City   string `help:"Only booths in this city"`
	Name   string `help:"Only booths with this name"`
	Source string `help:"Only booths last attributed to this source ID or name"`
	Limit  int    `short:"n" default:"100" help:"Maximum number of booths"`
}
