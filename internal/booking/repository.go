package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadsphere/roadsphere/internal/store"
)

// Repository persists bookings.
type Repository interface {
	Create(ctx context.Context, b Booking) (Booking, error)
	// HasOverlap reports whether a non-cancelled booking for vehicleID
	// intersects [start, end).
	HasOverlap(ctx context.Context, vehicleID int64, start, end time.Time) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Booking, error)
}

const bookingColumns = `id, user_id, vehicle_id, start_date, end_date, total_price, status, created_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed booking repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, b Booking) (Booking, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `INSERT INTO bookings (user_id, vehicle_id, start_date, end_date, total_price, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+bookingColumns,
		b.UserID, b.VehicleID, b.StartDate.UTC(), b.EndDate.UTC(), b.TotalPrice, string(b.Status))
	created, err := scanBooking(row)
	if err != nil {
		return Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) HasOverlap(ctx context.Context, vehicleID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := store.Conn(ctx, r.db).QueryRow(ctx, `SELECT EXISTS (
            SELECT 1 FROM bookings
            WHERE vehicle_id = $1
                AND status <> 'cancelled'
                AND start_date < $3
                AND end_date > $2
        )`, vehicleID, start.UTC(), end.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking overlap: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Booking, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `SELECT `+bookingColumns+` FROM bookings
        WHERE user_id = $1
        ORDER BY start_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (Booking, error) {
	var (
		b      Booking
		status string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.VehicleID, &b.StartDate, &b.EndDate, &b.TotalPrice, &status, &b.CreatedAt); err != nil {
		return Booking{}, err
	}
	b.Status = Status(status)
	b.StartDate = b.StartDate.UTC()
	b.EndDate = b.EndDate.UTC()
	return b, nil
}
