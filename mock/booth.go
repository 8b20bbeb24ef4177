package mock

import (
	"context"

	"github.com/fwojciec/boothcrawl"
)

var _ boothcrawl.BoothService = (*BoothService)(nil)

// BoothService is a mock implementation of boothcrawl.BoothService.
type BoothService struct {
	CreateBoothFn   func(ctx context.Context, booth *boothcrawl.Booth) error
	UpdateBoothFn   func(ctx context.Context, booth *boothcrawl.Booth) error
	FindBoothByIDFn func(ctx context.Context, id string) (*boothcrawl.Booth, error)
	FindBoothsFn    func(ctx context.Context, filter boothcrawl.BoothFilter) ([]*boothcrawl.Booth, error)
}

func (s *BoothService) CreateBooth(ctx context.Context, booth *boothcrawl.Booth) error {
	return s.CreateBoothFn(ctx, booth)
}

func (s *BoothService) UpdateBooth(ctx context.Context, booth *boothcrawl.Booth) error {
	return s.UpdateBoothFn(ctx, booth)
}

func (s *BoothService) FindBoothByID(ctx context.Context, id string) (*boothcrawl.Booth, error) {
	return s.FindBoothByIDFn(ctx, id)
}

func (s *BoothService) FindBooths(ctx context.Context, filter boothcrawl.BoothFilter) ([]*boothcrawl.Booth, error) {
	return s.FindBoothsFn(ctx, filter)
}
