package vehicle

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roadsphere/roadsphere/internal/apperr"
)

var (
	ErrVehicleNotFound = apperr.New(apperr.KindNotFound, "vehicle_not_found", "Vehicle not found")
	ErrInvalidID       = apperr.New(apperr.KindValidation, "invalid_id", "Missing or invalid id")
	ErrInvalidFilter   = apperr.New(apperr.KindValidation, "invalid_filter", "Invalid search filter")
)

// Service answers listing searches.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Search returns listings matching f. An empty result is an empty slice.
func (s *Service) Search(ctx context.Context, f Filter) ([]Vehicle, error) {
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return nil, ErrInvalidFilter
	}
	out, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if out == nil {
		out = []Vehicle{}
	}
	return out, nil
}

// Get returns one listing.
func (s *Service) Get(ctx context.Context, id int64) (Vehicle, error) {
	if id <= 0 {
		return Vehicle{}, ErrInvalidID
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Vehicle{}, ErrVehicleNotFound
		}
		return Vehicle{}, apperr.Internal(err)
	}
	return v, nil
}
