package timeslot

import (
	"context"
	"fmt"
	"sync"
)

type CreateRequest struct {
	Start string
	End   string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*TimeSlot, error)
	GetByID(ctx context.Context, id string) (*TimeSlot, error)
	List(ctx context.Context) ([]*TimeSlot, error)
	// Verify loads the catalog and checks that it is consistent.
	Verify(ctx context.Context) error
}

type service struct {
	repo Repository
	// mu serializes catalog extension so two admins cannot add overlapping slots at once.
	mu sync.Mutex
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*TimeSlot, error) {
	start, err := NormalizeClock(req.Start)
	if err != nil {
		return nil, err
	}
	end, err := NormalizeClock(req.End)
	if err != nil {
		return nil, err
	}
	slot := &TimeSlot{Start: start, End: end}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateCatalog(append(existing, slot)); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*TimeSlot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*TimeSlot, error) {
	return s.repo.List(ctx)
}

func (s *service) Verify(ctx context.Context) error {
	slots, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if err := ValidateCatalog(slots); err != nil {
		return fmt.Errorf("time slot catalog is inconsistent: %w", err)
	}
	return nil
}
