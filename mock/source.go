package mock

import (
	"context"

	"github.com/fwojciec/boothcrawl"
)

var _ boothcrawl.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of boothcrawl.SourceService.
type SourceService struct {
	CreateSourceFn    func(ctx context.Context, source *boothcrawl.Source) error
	FindSourceByIDFn  func(ctx context.Context, id string) (*boothcrawl.Source, error)
	FindSourcesFn     func(ctx context.Context, filter boothcrawl.SourceFilter) ([]*boothcrawl.Source, error)
	UpdateSourceFn    func(ctx context.Context, id string, upd boothcrawl.SourceUpdate) (*boothcrawl.Source, error)
	AcquireSourceFn   func(ctx context.Context, id string) (*boothcrawl.Source, error)
	RecordRunResultFn func(ctx context.Context, id string, result boothcrawl.RunResult) error
	FindRunsFn        func(ctx context.Context, filter boothcrawl.RunFilter) ([]*boothcrawl.Run, error)
}

func (s *SourceService) CreateSource(ctx context.Context, source *boothcrawl.Source) error {
	return s.CreateSourceFn(ctx, source)
}

func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*boothcrawl.Source, error) {
	return s.FindSourceByIDFn(ctx, id)
}

func (s *SourceService) FindSources(ctx context.Context, filter boothcrawl.SourceFilter) ([]*boothcrawl.Source, error) {
	return s.FindSourcesFn(ctx, filter)
}

func (s *SourceService) UpdateSource(ctx context.Context, id string, upd boothcrawl.SourceUpdate) (*boothcrawl.Source, error) {
	return s.UpdateSourceFn(ctx, id, upd)
}

func (s *SourceService) AcquireSource(ctx context.Context, id string) (*boothcrawl.Source, error) {
	return s.AcquireSourceFn(ctx, id)
}

func (s *SourceService) RecordRunResult(ctx context.Context, id string, result boothcrawl.RunResult) error {
	return s.RecordRunResultFn(ctx, id, result)
}

func (s *SourceService) FindRuns(ctx context.Context, filter boothcrawl.RunFilter) ([]*boothcrawl.Run, error) {
	return s.FindRunsFn(ctx, filter)
}
