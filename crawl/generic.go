package crawl

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/fwojciec/boothcrawl"
)

// DefaultTokenBudget caps the page content sent to the LLM.
const DefaultTokenBudget = 24000

// approxCharsPerToken is used to size content when no TokenCounter is set.
const approxCharsPerToken = 4

// Generic is the LLM-assisted extraction path. It reduces a page to its
// main content as markdown, fits it into the token budget and asks the LLM
// for candidates. Results are memoized on the snapshot.
type Generic struct {
	// Extractors are tried in order for the main content; the raw page is
	// used when none yields any.
	Extractors   []boothcrawl.ContentExtractor
	Converter    boothcrawl.Converter
	TokenCounter boothcrawl.TokenCounter
	LLM          boothcrawl.LLM
	Snapshots    boothcrawl.SnapshotService

	// TokenBudget is the maximum number of content tokens per LLM call.
	// Zero means DefaultTokenBudget.
	TokenBudget int
}

// Extract returns the candidates for snapshot. A snapshot carrying an
// extraction memo is answered from the memo. Malformed LLM output is
// re-asked once with the strict prompt and then treated as zero
// candidates. Any other LLM error fails the page.
func (g *Generic) Extract(ctx context.Context, snapshot *boothcrawl.Snapshot) ([]*boothcrawl.Candidate, error) {
	if snapshot.Extraction != "" {
		var memo []*boothcrawl.Candidate
		if err := json.Unmarshal([]byte(snapshot.Extraction), &memo); err == nil {
			return memo, nil
		}
	}

	content, err := g.content(ctx, snapshot.Content)
	if err != nil {
		return nil, err
	}

	candidates, err := g.LLM.ExtractCandidates(ctx, content, false)
	if boothcrawl.ErrorCode(err) == boothcrawl.ESCHEMA {
		candidates, err = g.LLM.ExtractCandidates(ctx, content, true)
		if boothcrawl.ErrorCode(err) == boothcrawl.ESCHEMA {
			return nil, nil
		}
	}
	if err != nil {
		return nil, err
	}

	g.memoize(ctx, snapshot, candidates)
	return candidates, nil
}

// memoize stores candidates on the snapshot. Write failures are ignored.
func (g *Generic) memoize(ctx context.Context, snapshot *boothcrawl.Snapshot, candidates []*boothcrawl.Candidate) {
	if candidates == nil {
		candidates = []*boothcrawl.Candidate{}
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	snapshot.Extraction = string(data)
	if g.Snapshots != nil && snapshot.ID != "" {
		_ = g.Snapshots.SetSnapshotExtraction(ctx, snapshot.ID, snapshot.Extraction)
	}
}

// content reduces html to budget-sized markdown.
func (g *Generic) content(ctx context.Context, html string) (string, error) {
	main := html
	for _, extractor := range g.Extractors {
		result, err := extractor.Extract(html)
		if err == nil && result.ContentHTML != "" {
			main = result.ContentHTML
			break
		}
	}

	markdown, err := g.Converter.Convert(main)
	if err != nil {
		if boothcrawl.ErrorCode(err) == boothcrawl.EINVALID {
			return "", nil
		}
		return "", err
	}

	return g.truncate(ctx, markdown)
}

// truncate shortens text until it fits the token budget.
func (g *Generic) truncate(ctx context.Context, text string) (string, error) {
	budget := g.TokenBudget
	if budget <= 0 {
		budget = DefaultTokenBudget
	}

	if g.TokenCounter == nil {
		return truncateRunes(text, budget*approxCharsPerToken), nil
	}

	for range 4 {
		tokens, err := g.TokenCounter.CountTokens(ctx, text)
		if err != nil {
			return "", err
		}
		if tokens <= budget {
			return text, nil
		}
		n := utf8.RuneCountInString(text)
		// Shrink slightly more than proportionally so the loop converges.
		text = truncateRunes(text, n*budget/tokens*9/10)
	}
	return text, nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
