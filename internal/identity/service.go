package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roadsphere/roadsphere/internal/apperr"
)

var (
	ErrUserNotFound  = apperr.New(apperr.KindNotFound, "user_not_found", "User not found")
	ErrInvalidUserID = apperr.New(apperr.KindValidation, "invalid_id", "Missing or invalid id")
	ErrForbidden     = apperr.New(apperr.KindAuthorization, "forbidden", "Access forbidden")
)

// Service exposes profile lookups and admin user management.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new identity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Profile returns the caller's own record.
func (s *Service) Profile(ctx context.Context, id int64) (Profile, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, apperr.Internal(err)
	}
	return u.Profile(), nil
}

// ListUsers returns every account for administrators.
func (s *Service) ListUsers(ctx context.Context, actor Principal) ([]Profile, error) {
	if !actor.Role.Can(CapListUsers) {
		return nil, ErrForbidden
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

// DeleteUser removes an account. An actor cannot delete someone ranked above them.
func (s *Service) DeleteUser(ctx context.Context, actor Principal, id int64) error {
	if id <= 0 {
		return ErrInvalidUserID
	}
	if !actor.Role.Can(CapDeleteUsers) {
		return ErrForbidden
	}
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}
	if !actor.Role.AtLeast(target.Role) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}
	if s.logger != nil {
		s.logger.Info("user deleted", slog.Int64("user_id", id), slog.Int64("actor_id", actor.ID))
	}
	return nil
}
