package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roadsphere/roadsphere/internal/apperr"
	"github.com/roadsphere/roadsphere/internal/identity"
	"github.com/roadsphere/roadsphere/internal/metrics"
	"github.com/roadsphere/roadsphere/internal/store"
	"github.com/roadsphere/roadsphere/internal/vehicle"
)

var (
	ErrInsufficientKYC    = apperr.New(apperr.KindAuthorization, "kyc_required", "Your KYC level does not allow booking. Please complete verification")
	ErrInvalidDates       = apperr.New(apperr.KindValidation, "invalid_dates", "start_date must be before end_date and not in the past")
	ErrMissingVehicle     = apperr.New(apperr.KindValidation, "missing_vehicle", "vehicle_id is required")
	ErrVehicleNotFound    = apperr.New(apperr.KindNotFound, "vehicle_not_found", "Vehicle not found")
	ErrVehicleUnavailable = apperr.New(apperr.KindConflict, "vehicle_unavailable", "Vehicle is not available for rent")
	ErrAlreadyBooked      = apperr.New(apperr.KindConflict, "already_booked", "Vehicle is already booked for these dates")
)

// CreateInput is a booking request.
type CreateInput struct {
	VehicleID int64
	StartDate time.Time
	EndDate   time.Time
}

// Service creates and lists bookings.
type Service struct {
	bookings Repository
	vehicles vehicle.Repository
	tx       store.Transactor
	minKYC   int
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService builds a booking service. Callers below minKYC cannot book.
func NewService(bookings Repository, vehicles vehicle.Repository, tx store.Transactor, minKYC int, logger *slog.Logger, m *metrics.Metrics) *Service {
	if tx == nil {
		tx = store.NopTransactor{}
	}
	return &Service{
		bookings: bookings,
		vehicles: vehicles,
		tx:       tx,
		minKYC:   minKYC,
		now:      time.Now,
		logger:   logger,
		metrics:  m,
	}
}

// Create books a vehicle for actor. The vehicle row stays locked from the
// availability check until the insert commits.
func (s *Service) Create(ctx context.Context, actor identity.Principal, in CreateInput) (Booking, error) {
	if !actor.Role.Can(identity.CapBookVehicle) {
		return Booking{}, identity.ErrForbidden
	}
	if actor.KYCLevel < s.minKYC {
		s.metrics.Booking("kyc_rejected")
		return Booking{}, ErrInsufficientKYC
	}
	if in.VehicleID <= 0 {
		return Booking{}, ErrMissingVehicle
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if !in.StartDate.Before(in.EndDate) || in.StartDate.Before(today) {
		return Booking{}, ErrInvalidDates
	}

	var created Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vehicles.LockByID(ctx, in.VehicleID)
		if err != nil {
			if errors.Is(err, vehicle.ErrNotFound) {
				return ErrVehicleNotFound
			}
			return apperr.Internal(err)
		}
		if !v.Rentable() {
			return ErrVehicleUnavailable
		}

		busy, err := s.bookings.HasOverlap(ctx, v.ID, in.StartDate, in.EndDate)
		if err != nil {
			return apperr.Internal(err)
		}
		if busy {
			return ErrAlreadyBooked
		}

		b := Booking{
			UserID:    actor.ID,
			VehicleID: v.ID,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			Status:    StatusPending,
		}
		b.TotalPrice = b.Days() * v.PricePerDay

		created, err = s.bookings.Create(ctx, b)
		if err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		s.metrics.Booking("rejected")
		return Booking{}, apperr.From(err)
	}

	s.metrics.Booking("created")
	s.logger.Info("booking created", "booking_id", created.ID, "user_id", actor.ID, "vehicle_id", created.VehicleID)
	return created, nil
}

// ListMine returns the caller's bookings, newest start first.
func (s *Service) ListMine(ctx context.Context, actor identity.Principal) ([]Booking, error) {
	out, err := s.bookings.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if out == nil {
		out = []Booking{}
	}
	return out, nil
}
