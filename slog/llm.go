package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// Ensure LoggingLLM implements boothcrawl.LLM.
var _ boothcrawl.LLM = (*LoggingLLM)(nil)

// LoggingLLM wraps an LLM with logging.
type LoggingLLM struct {
	next   boothcrawl.LLM
	logger *slog.Logger
}

// NewLoggingLLM creates a new LoggingLLM.
func NewLoggingLLM(next boothcrawl.LLM, logger *slog.Logger) *LoggingLLM {
	return &LoggingLLM{next: next, logger: logger}
}

// ExtractCandidates delegates to the wrapped LLM and logs the operation.
func (l *LoggingLLM) ExtractCandidates(ctx context.Context, content string, strict bool) (candidates []*boothcrawl.Candidate, err error) {
	defer func(begin time.Time) {
		l.logger.Info("llm extraction",
			"bytes", len(content),
			"strict", strict,
			"candidates", len(candidates),
			"duration", time.Since(begin),
			"code", boothcrawl.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return l.next.ExtractCandidates(ctx, content, strict)
}
