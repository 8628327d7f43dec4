package resource

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/sport-hall-booking/internal/sport"
)

type CreateRequest struct {
	Name         string
	SportID      string
	LocationKind LocationKind
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	// IDsByLocationKind returns every resource id of the given kind.
	IDsByLocationKind(ctx context.Context, kind LocationKind) ([]string, error)
}

type service struct {
	repo         Repository
	sportService sport.Service
}

func NewService(repo Repository, sportService sport.Service) Service {
	return &service{
		repo:         repo,
		sportService: sportService,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !req.LocationKind.Valid() {
		return nil, ErrInvalidLocationKind
	}
	if req.SportID == "" {
		return nil, ErrInvalidSport
	}

	// Validation: Check if Sport exists
	if _, err := s.sportService.GetByID(ctx, req.SportID); err != nil {
		if errors.Is(err, sport.ErrNotFound) {
			return nil, ErrInvalidSport
		}
		return nil, err
	}

	res := &Resource{
		Name:         name,
		SportID:      req.SportID,
		LocationKind: req.LocationKind,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	if filter.LocationKind != "" && !filter.LocationKind.Valid() {
		return nil, 0, ErrInvalidLocationKind
	}
	return s.repo.List(ctx, filter)
}

func (s *service) IDsByLocationKind(ctx context.Context, kind LocationKind) ([]string, error) {
	if !kind.Valid() {
		return nil, ErrInvalidLocationKind
	}

	const pageSize = 100
	var ids []string
	for page := 1; ; page++ {
		items, total, err := s.repo.List(ctx, Filter{LocationKind: kind, Page: page, PageSize: pageSize})
		if err != nil {
			return nil, err
		}
		for _, r := range items {
			ids = append(ids, r.ID)
		}
		if len(items) < pageSize || len(ids) >= total {
			return ids, nil
		}
	}
}
