package mock

import (
	"context"
	"time"

	"github.com/fwojciec/boothcrawl"
)

var _ boothcrawl.SnapshotService = (*SnapshotService)(nil)

// SnapshotService is a mock implementation of boothcrawl.SnapshotService.
type SnapshotService struct {
	CreateSnapshotFn        func(ctx context.Context, snapshot *boothcrawl.Snapshot) error
	FindLatestSnapshotFn    func(ctx context.Context, url string) (*boothcrawl.Snapshot, error)
	TouchSnapshotFn         func(ctx context.Context, id string, fetchedAt time.Time) error
	SetSnapshotExtractionFn func(ctx context.Context, id string, extraction string) error
}

func (s *SnapshotService) CreateSnapshot(ctx context.Context, snapshot *boothcrawl.Snapshot) error {
	return s.CreateSnapshotFn(ctx, snapshot)
}

func (s *SnapshotService) FindLatestSnapshot(ctx context.Context, url string) (*boothcrawl.Snapshot, error) {
	return s.FindLatestSnapshotFn(ctx, url)
}

func (s *SnapshotService) TouchSnapshot(ctx context.Context, id string, fetchedAt time.Time) error {
	return s.TouchSnapshotFn(ctx, id, fetchedAt)
}

func (s *SnapshotService) SetSnapshotExtraction(ctx context.Context, id string, extraction string) error {
	return s.SetSnapshotExtractionFn(ctx, id, extraction)
}

var _ boothcrawl.ContentNormalizer = (*ContentNormalizer)(nil)

// ContentNormalizer is a mock implementation of boothcrawl.ContentNormalizer.
type ContentNormalizer struct {
	NormalizeFn func(html string) string
}

func (n *ContentNormalizer) Normalize(html string) string {
	return n.NormalizeFn(html)
}
