package crawl

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/learn"
	"github.com/fwojciec/boothcrawl/reconcile"
	"golang.org/x/sync/errgroup"
)

// Run defaults.
const (
	DefaultDeadline    = 10 * time.Minute
	DefaultConcurrency = 4
)

// Config holds the run tuning parameters.
type Config struct {
	// Deadline is the wall-clock limit of one run.
	Deadline time.Duration

	// Concurrency bounds the pages fetched and extracted at once.
	Concurrency int

	// RetryDelays are the backoff delays for transient errors of fetches
	// and source lookups. Nil means DefaultRetryDelays.
	RetryDelays []time.Duration

	// Freshness is the snapshot freshness window.
	Freshness time.Duration
}

// LinkFunc returns the pagination links of a fetched page.
type LinkFunc func(html, pageURL string) ([]string, error)

// Runner executes source runs. Each run acquires the source, fetches its
// pages through the content cache, extracts, validates and reconciles them
// page by page, updates the learned pattern and records the result.
type Runner struct {
	Sources    boothcrawl.SourceService
	Snapshots  boothcrawl.SnapshotService
	Patterns   boothcrawl.PatternService
	Fetcher    boothcrawl.Fetcher
	Normalizer boothcrawl.ContentNormalizer
	Engine     *Engine
	Reconciler *reconcile.Reconciler
	Learner    *learn.Learner
	Limiter    boothcrawl.DomainLimiter

	// Browser, if set, fetches the pages of sources with RenderJS.
	Browser boothcrawl.Fetcher

	// Sitemaps, if set, discovers pages of sources with Sitemap.
	Sitemaps boothcrawl.SitemapService

	// Paginate, if set, finds further pages to follow on each fetched page.
	Paginate LinkFunc

	Config Config

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// RunSummary is the outcome of one run.
type RunSummary struct {
	SourceID   string
	Stage      boothcrawl.Stage
	Counts     boothcrawl.Counts
	CacheHits  int
	Pattern    learn.Outcome
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Stream runs the source in the background and returns its progress
// events. The channel is closed after exactly one terminal event. Callers
// must drain the channel.
func (r *Runner) Stream(ctx context.Context, id string) <-chan boothcrawl.ProgressEvent {
	ch := make(chan boothcrawl.ProgressEvent, 16)
	go func() {
		defer close(ch)
		_, _ = r.RunSource(ctx, id, func(event boothcrawl.ProgressEvent) {
			ch <- event
		})
	}()
	return ch
}

// RunSource runs the source to completion. progress, if provided, receives
// one stage event per transition, log events for page-level issues and
// exactly one terminal event.
//
// A run that ends partial or failed returns its summary and a nil error;
// errors are returned when the run could not start or its result could not
// be recorded.
func (r *Runner) RunSource(ctx context.Context, id string, progress boothcrawl.ProgressFunc) (*RunSummary, error) {
	em := &emitter{progress: progress, now: r.now}
	em.advance(boothcrawl.StagePending)

	if _, err := r.findSource(ctx, id); err != nil {
		em.terminal(boothcrawl.EventError, err.Error())
		return nil, err
	}

	source, err := r.Sources.AcquireSource(ctx, id)
	if err != nil {
		switch boothcrawl.ErrorCode(err) {
		case boothcrawl.ENOTFOUND, boothcrawl.EINVALID, boothcrawl.ECONFLICT:
		default:
			err = boothcrawl.WrapError(boothcrawl.EREGISTRY, err, "acquire source %s", id)
		}
		em.terminal(boothcrawl.EventError, err.Error())
		return nil, err
	}

	summary := r.run(ctx, source, em)

	result := boothcrawl.RunResult{
		Status:      summary.Stage.SourceStatus(),
		Found:       summary.Counts.Valid,
		Added:       summary.Counts.Added,
		Updated:     summary.Counts.Updated,
		Rejected:    summary.Counts.Rejected,
		Pages:       summary.Counts.Pages,
		FailedPages: summary.Counts.FailedPages,
		Error:       summary.Error,
		StartedAt:   summary.StartedAt,
	}
	if err := r.Sources.RecordRunResult(context.WithoutCancel(ctx), source.ID, result); err != nil {
		err = boothcrawl.WrapError(boothcrawl.EREGISTRY, err, "record run result for source %s", id)
		summary.Stage = boothcrawl.StageFailed
		summary.Error = err.Error()
		em.advance(boothcrawl.StageFailed)
		em.terminal(boothcrawl.EventError, err.Error())
		return summary, err
	}

	em.advance(summary.Stage)
	switch summary.Stage {
	case boothcrawl.StageFailed:
		em.terminal(boothcrawl.EventError, summary.Error)
	default:
		em.terminal(boothcrawl.EventComplete, fmt.Sprintf("%s: %d found, %d added, %d updated", summary.Stage, summary.Counts.Valid, summary.Counts.Added, summary.Counts.Updated))
	}
	return summary, nil
}

// findSource looks the source up, retrying storage errors.
func (r *Runner) findSource(ctx context.Context, id string) (*boothcrawl.Source, error) {
	delays := r.retryDelays()
	for attempt := 0; ; attempt++ {
		source, err := r.Sources.FindSourceByID(ctx, id)
		if err == nil {
			return source, nil
		}
		if boothcrawl.ErrorCode(err) == boothcrawl.ENOTFOUND {
			return nil, err
		}
		if attempt >= len(delays) {
			return nil, boothcrawl.WrapError(boothcrawl.EREGISTRY, err, "find source %s", id)
		}
		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// pageResult is the outcome of fetching and extracting one page.
type pageResult struct {
	url         string
	fetch       *FetchResult
	extraction  *Extraction
	err         error
	interrupted bool
}

// run processes the acquired source and returns its summary. It never
// returns early without a final stage.
func (r *Runner) run(ctx context.Context, source *boothcrawl.Source, em *emitter) *RunSummary {
	summary := &RunSummary{SourceID: source.ID, StartedAt: r.now()}
	defer func() { summary.FinishedAt = r.now() }()

	deadline := r.Config.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	// Writes of completed pages survive the deadline and cancellation.
	flushCtx := context.WithoutCancel(ctx)

	pattern, err := r.Patterns.FindPatternBySource(runCtx, source.ID)
	if err != nil {
		pattern = nil
		if boothcrawl.ErrorCode(err) != boothcrawl.ENOTFOUND {
			em.logf("pattern unavailable: %v", err)
		}
	}

	limit := source.PageLimit()
	frontier := NewFrontier(max(frontierExpectedURLs, uint(limit)*10), frontierFalsePositiveRate)
	var scheduleMu sync.Mutex
	scheduled := 0
	schedule := func(u string) {
		scheduleMu.Lock()
		defer scheduleMu.Unlock()
		if scheduled < limit && frontier.Push(u) {
			scheduled++
		}
	}
	for _, u := range source.URLs {
		schedule(u)
	}
	for _, u := range r.discover(runCtx, source, em) {
		schedule(u)
	}

	fetcher := r.Fetcher
	if source.RenderJS && r.Browser != nil {
		fetcher = r.Browser
	}
	cache := &ContentCache{
		Fetcher:     fetcher,
		Snapshots:   r.Snapshots,
		Normalizer:  r.Normalizer,
		Freshness:   r.Config.Freshness,
		RetryDelays: r.retryDelays(),
		Logger:      em.logf,
		Now:         r.Now,
	}

	session := r.Reconciler.NewSession(source)
	var observations []learn.Observation
	var fatal error
	interrupted := false

	em.advance(boothcrawl.StageFetching)
	for frontier.Len() > 0 && runCtx.Err() == nil && fatal == nil {
		results := make(chan pageResult)
		var g errgroup.Group
		g.SetLimit(r.concurrency())

		go func() {
			for _, pageURL := range frontier.Drain(frontier.Len()) {
				g.Go(func() error {
					results <- r.processPage(runCtx, source, pattern, cache, em, pageURL, schedule)
					return nil
				})
			}
			_ = g.Wait()
			close(results)
		}()

		for res := range results {
			if fatal != nil {
				continue
			}
			if res.interrupted {
				interrupted = true
				em.logf("page %s interrupted", res.url)
				continue
			}
			if res.err != nil {
				summary.Counts.FailedPages++
				em.logf("page %s failed: %v", res.url, res.err)
				continue
			}

			summary.Counts.Pages++
			if res.fetch.CacheHit {
				summary.CacheHits++
			}
			if res.extraction.PatternMiss {
				em.logf("pattern yielded no venues on %s, used generic extraction", res.url)
			}

			obs, records := r.validate(res, summary, em)
			observations = append(observations, obs)

			em.advance(boothcrawl.StageReconciling)
			written, err := session.Apply(flushCtx, records)
			summary.Counts.Added += written.Added
			summary.Counts.Updated += written.Updated
			if err != nil {
				fatal = err
				cancel()
			}
			em.counts(summary.Counts)
		}
	}
	if runCtx.Err() != nil && fatal == nil {
		interrupted = true
	}

	if len(observations) > 0 && r.Learner != nil && fatal == nil {
		p, outcome, err := r.Learner.Learn(flushCtx, source.ID, observations)
		if err != nil {
			em.logf("pattern learning failed: %v", err)
		} else {
			summary.Pattern = outcome
			if outcome != learn.OutcomeNone && p != nil {
				em.logf("pattern %s (confidence %.2f)", outcome, p.Confidence)
			}
		}
	}

	switch {
	case fatal != nil:
		summary.Stage = boothcrawl.StageFailed
		summary.Error = fmt.Sprintf("reconcile: %v", fatal)
	case interrupted:
		summary.Stage = boothcrawl.StagePartial
		if summary.Counts.Pages == 0 {
			summary.Stage = boothcrawl.StageFailed
		}
		summary.Error = fmt.Sprintf("run interrupted: %v", context.Cause(runCtx))
	case summary.Counts.Pages == 0 && summary.Counts.FailedPages > 0:
		summary.Stage = boothcrawl.StageFailed
		summary.Error = fmt.Sprintf("all %d pages failed", summary.Counts.FailedPages)
	case summary.Counts.FailedPages > 0:
		summary.Stage = boothcrawl.StagePartial
		summary.Error = fmt.Sprintf("%d of %d pages failed", summary.Counts.FailedPages, summary.Counts.FailedPages+summary.Counts.Pages)
	default:
		summary.Stage = boothcrawl.StageSucceeded
	}
	return summary
}

// processPage fetches and extracts one page and schedules its pagination
// links.
func (r *Runner) processPage(ctx context.Context, source *boothcrawl.Source, pattern *boothcrawl.Pattern, cache *ContentCache, em *emitter, pageURL string, schedule func(string)) pageResult {
	res := pageResult{url: pageURL}
	defer func() {
		if res.err != nil && ctx.Err() != nil {
			res.interrupted = true
		}
	}()

	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}
	if r.Limiter != nil {
		if u, err := url.Parse(pageURL); err == nil {
			if err := r.Limiter.Wait(ctx, u.Host); err != nil {
				res.err = err
				return res
			}
		}
	}

	res.fetch, res.err = cache.Fetch(ctx, pageURL)
	if res.err != nil {
		return res
	}

	if r.Paginate != nil {
		links, err := r.Paginate(res.fetch.Snapshot.Content, pageURL)
		if err != nil {
			em.logf("pagination on %s: %v", pageURL, err)
		}
		for _, link := range links {
			schedule(link)
		}
	}

	em.advance(boothcrawl.StageExtracting)
	res.extraction, res.err = r.Engine.Extract(ctx, source, pattern, res.fetch.Snapshot)
	return res
}

// validate filters the candidates of a page and returns its learning
// observation along with the records to reconcile.
func (r *Runner) validate(res pageResult, summary *RunSummary, em *emitter) (learn.Observation, []*boothcrawl.ValidatedRecord) {
	em.advance(boothcrawl.StageValidating)

	snapshot := res.fetch.Snapshot
	obs := learn.Observation{
		Page:        &boothcrawl.Page{URL: snapshot.URL, HTML: snapshot.Content, ContentHash: snapshot.ContentHash},
		Variant:     res.extraction.Variant,
		PatternMiss: res.extraction.PatternMiss,
		Candidates:  res.extraction.Candidates,
	}

	var records []*boothcrawl.ValidatedRecord
	for _, c := range res.extraction.Candidates {
		summary.Counts.Candidates++
		rec, err := boothcrawl.Validate(c)
		if err != nil {
			summary.Counts.Rejected++
			em.logf("rejected %q: %s", c.Name, boothcrawl.ErrorMessage(err))
			continue
		}
		summary.Counts.Valid++
		records = append(records, rec)
		obs.Valid = append(obs.Valid, c)
	}
	return obs, records
}

// discover returns the sitemap URLs of a source that enables discovery.
func (r *Runner) discover(ctx context.Context, source *boothcrawl.Source, em *emitter) []string {
	if !source.Sitemap || r.Sitemaps == nil || len(source.URLs) == 0 {
		return nil
	}
	filter, err := source.URLFilter()
	if err != nil {
		em.logf("sitemap filter: %v", err)
		return nil
	}
	u, err := url.Parse(source.URLs[0])
	if err != nil {
		return nil
	}
	base := u.Scheme + "://" + u.Host
	urls, err := r.Sitemaps.DiscoverURLs(ctx, base, filter)
	if err != nil {
		em.logf("sitemap discovery: %v", err)
		return nil
	}
	return urls
}

func (r *Runner) concurrency() int {
	if r.Config.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return r.Config.Concurrency
}

func (r *Runner) retryDelays() []time.Duration {
	if r.Config.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return r.Config.RetryDelays
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// stageOrder ranks the non-final stages so that each transition is
// reported once even when pages move through them concurrently.
var stageOrder = map[boothcrawl.Stage]int{
	boothcrawl.StagePending:     0,
	boothcrawl.StageFetching:    1,
	boothcrawl.StageExtracting:  2,
	boothcrawl.StageValidating:  3,
	boothcrawl.StageReconciling: 4,
}

// emitter serializes progress events of one run.
type emitter struct {
	progress boothcrawl.ProgressFunc
	now      func() time.Time

	mu     sync.Mutex
	stage  boothcrawl.Stage
	latest boothcrawl.Counts
	done   bool
}

func (e *emitter) send(event boothcrawl.ProgressEvent) {
	if e.progress == nil || e.done {
		return
	}
	event.Time = e.now()
	e.progress(event)
}

// advance reports a transition to stage if it lies ahead of the current
// one. Final stages are always reported.
func (e *emitter) advance(stage boothcrawl.Stage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stage != "" {
		if stage == e.stage {
			return
		}
		if !stage.Final() && stageOrder[stage] <= stageOrder[e.stage] {
			return
		}
	}
	e.stage = stage
	counts := e.latest
	e.send(boothcrawl.ProgressEvent{Type: boothcrawl.EventStage, Stage: stage, Message: string(stage), Counts: &counts})
}

func (e *emitter) logf(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(boothcrawl.ProgressEvent{Type: boothcrawl.EventLog, Stage: e.stage, Message: fmt.Sprintf(format, args...)})
}

// counts records the running totals reported with later events.
func (e *emitter) counts(c boothcrawl.Counts) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest = c
}

func (e *emitter) terminal(t boothcrawl.EventType, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	counts := e.latest
	e.send(boothcrawl.ProgressEvent{Type: t, Stage: e.stage, Message: message, Counts: &counts})
	e.done = true
}
