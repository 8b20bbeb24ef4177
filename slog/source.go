package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// Ensure LoggingSourceService implements boothcrawl.SourceService.
var _ boothcrawl.SourceService = (*LoggingSourceService)(nil)

// LoggingSourceService wraps a SourceService and logs the calls that
// change run state. Read and configuration calls are delegated as is.
type LoggingSourceService struct {
	boothcrawl.SourceService
	logger *slog.Logger
}

// NewLoggingSourceService creates a new LoggingSourceService.
func NewLoggingSourceService(next boothcrawl.SourceService, logger *slog.Logger) *LoggingSourceService {
	return &LoggingSourceService{SourceService: next, logger: logger}
}

// AcquireSource delegates to the wrapped service and logs the operation.
func (s *LoggingSourceService) AcquireSource(ctx context.Context, id string) (source *boothcrawl.Source, err error) {
	defer func(begin time.Time) {
		s.logger.Info("acquire source",
			"id", id,
			"duration", time.Since(begin),
			"code", boothcrawl.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return s.SourceService.AcquireSource(ctx, id)
}

// RecordRunResult delegates to the wrapped service and logs the operation.
func (s *LoggingSourceService) RecordRunResult(ctx context.Context, id string, result boothcrawl.RunResult) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("record run result",
			"id", id,
			"status", result.Status,
			"found", result.Found,
			"added", result.Added,
			"updated", result.Updated,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.SourceService.RecordRunResult(ctx, id, result)
}
