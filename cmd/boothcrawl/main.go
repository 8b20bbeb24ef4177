package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/bluemonday"
	"github.com/fwojciec/boothcrawl/crawl"
	"github.com/fwojciec/boothcrawl/fs"
	"github.com/fwojciec/boothcrawl/gemini"
	"github.com/fwojciec/boothcrawl/goquery"
	"github.com/fwojciec/boothcrawl/htmltomarkdown"
	boothhttp "github.com/fwojciec/boothcrawl/http"
	"github.com/fwojciec/boothcrawl/learn"
	"github.com/fwojciec/boothcrawl/readability"
	"github.com/fwojciec/boothcrawl/reconcile"
	"github.com/fwojciec/boothcrawl/rod"
	boothslog "github.com/fwojciec/boothcrawl/slog"
	"github.com/fwojciec/boothcrawl/sqlite"
	"github.com/fwojciec/boothcrawl/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); --db overrides it.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	SourceService   boothcrawl.SourceService
	BoothService    boothcrawl.BoothService
	SnapshotService boothcrawl.SnapshotService
	PatternService  boothcrawl.PatternService

	// closers are released by Close in reverse order.
	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	for i := len(m.closers) - 1; i >= 0; i-- {
		_ = m.closers[i].Close()
	}
	m.closers = nil
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("boothcrawl"),
		kong.Description("Crawl photo booth venue sources into one deduplicated directory"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'boothcrawl --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(cli.Verbose, stderr)

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set BOOTHCRAWL_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.SourceService = sqlite.NewSourceService(m.DB)
	m.BoothService = sqlite.NewBoothService(m.DB)
	m.SnapshotService = sqlite.NewSnapshotService(m.DB)
	m.PatternService = sqlite.NewPatternService(m.DB)
	deps.DB = m.DB
	deps.Sources = boothslog.NewLoggingSourceService(m.SourceService, deps.Logger)
	deps.Booths = m.BoothService

	switch {
	case cmd == "add" && cli.Add.Probe:
		prober, err := m.newProber(deps.Logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --probe")
			return err
		}
		deps.Prober = prober
	case cmd == "run":
		runner, err := m.newRunner(ctx, &cli.Run, deps, stderr)
		if err != nil {
			return err
		}
		deps.Runner = runner
	}

	return kongCtx.Run(deps)
}

func (m *Main) newProber(logger *slog.Logger) (*Prober, error) {
	browser, err := rod.NewFetcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.closers = append(m.closers, browser)

	return &Prober{
		Static:    boothslog.NewLoggingFetcher(boothhttp.NewFetcher(), logger),
		Browser:   boothslog.NewLoggingFetcher(browser, logger),
		Extractor: trafilatura.NewExtractor(),
	}, nil
}

func (m *Main) newRunner(ctx context.Context, c *RunCmd, deps *Dependencies, stderr io.Writer) (*crawl.Runner, error) {
	logger := deps.Logger

	fetcher := boothslog.NewLoggingFetcher(boothhttp.NewFetcher(), logger)
	m.closers = append(m.closers, fetcher)

	var browser boothcrawl.Fetcher
	if c.Browser {
		f, err := rod.NewFetcher()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --browser")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		lf := boothslog.NewLoggingFetcher(f, logger)
		m.closers = append(m.closers, lf)
		browser = lf
	}

	var snapshots boothcrawl.SnapshotService = m.SnapshotService
	if c.ArchiveDir != "" {
		snapshots = fs.NewArchive(snapshots, c.ArchiveDir)
	}

	llm, err := newLLM(ctx, c, logger)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, err
	}

	tokenCounter, err := gemini.NewTokenCounter(c.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create token counter: %w", err)
	}

	patterns := goquery.NewPatternExtractor()

	return &crawl.Runner{
		Sources:    deps.Sources,
		Snapshots:  snapshots,
		Patterns:   m.PatternService,
		Fetcher:    fetcher,
		Normalizer: bluemonday.NewNormalizer(),
		Engine: &crawl.Engine{
			Registry: boothslog.NewLoggingRegistry(goquery.NewDefaultRegistry(), logger),
			Patterns: patterns,
			Generic: &crawl.Generic{
				Extractors:   []boothcrawl.ContentExtractor{trafilatura.NewExtractor(), readability.NewExtractor()},
				Converter:    htmltomarkdown.NewConverter(),
				TokenCounter: tokenCounter,
				LLM:          llm,
				Snapshots:    snapshots,
			},
			PatternFloor: crawl.DefaultPatternFloor,
		},
		Reconciler: &reconcile.Reconciler{
			Booths: m.BoothService,
			Config: reconcile.Config{RadiusMeters: c.Radius},
		},
		Learner: &learn.Learner{
			Patterns:  m.PatternService,
			Extractor: patterns,
			Config:    learn.DefaultConfig(),
		},
		Limiter:  crawl.NewDomainLimiter(crawl.DefaultRequestsPerSecond),
		Browser:  browser,
		Sitemaps: boothslog.NewLoggingSitemapService(boothhttp.NewSitemapService(nil), logger),
		Paginate: goquery.NextLinks,
		Config: crawl.Config{
			Deadline:    c.Deadline,
			Concurrency: c.Concurrency,
			Freshness:   c.Freshness,
		},
	}, nil
}

func newLLM(ctx context.Context, c *RunCmd, logger *slog.Logger) (boothcrawl.LLM, error) {
	if c.APIKey == "" {
		return keylessLLM{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return boothslog.NewLoggingLLM(gemini.NewLLM(client, c.Model), logger), nil
}

// keylessLLM fails generic extraction when no API key is configured.
// Specialized and patterned extraction are unaffected.
type keylessLLM struct{}

func (keylessLLM) ExtractCandidates(context.Context, string, bool) ([]*boothcrawl.Candidate, error) {
	return nil, boothcrawl.Errorf(boothcrawl.EPERMANENT, "generic extraction needs GEMINI_API_KEY. Get a key at https://aistudio.google.com/apikey")
}

func newLogger(verbose bool, stderr io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "boothcrawl.db"
	}
	dir := filepath.Join(home, ".boothcrawl")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "boothcrawl.db")
}
