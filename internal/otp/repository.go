package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadsphere/roadsphere/internal/store"
)

// ErrNotFound is returned when no usable code matches.
var ErrNotFound = errors.New("otp not found")

// Repository persists one-time passwords.
type Repository interface {
	Create(ctx context.Context, o OTP) (OTP, error)
	// FindActive returns the newest row matching code, email and purpose that
	// is unconsumed and expires after now.
	FindActive(ctx context.Context, code, email string, purpose Purpose, now time.Time) (OTP, error)
	MarkVerified(ctx context.Context, id int64, at time.Time) (OTP, error)
}

const otpColumns = `id, otp_code, assigned_to, assigned_for, creation_time, expiration_time, is_verified, verification_time`

// PostgresRepository stores codes in the otps table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed otp repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a fresh code row.
func (r *PostgresRepository) Create(ctx context.Context, o OTP) (OTP, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `INSERT INTO otps (otp_code, assigned_to, assigned_for, creation_time, expiration_time)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+otpColumns,
		o.Code, o.AssignedTo, string(o.AssignedFor), o.CreationTime.UTC(), o.ExpirationTime.UTC())
	created, err := scanOTP(row)
	if err != nil {
		return OTP{}, fmt.Errorf("insert otp: %w", err)
	}
	return created, nil
}

// FindActive looks up a usable code.
func (r *PostgresRepository) FindActive(ctx context.Context, code, email string, purpose Purpose, now time.Time) (OTP, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+otpColumns+` FROM otps
        WHERE otp_code = $1
            AND assigned_to = $2
            AND assigned_for = $3
            AND expiration_time > $4
            AND is_verified = FALSE
        ORDER BY creation_time DESC, id DESC
        LIMIT 1
        FOR UPDATE`, code, email, string(purpose), now.UTC())
	o, err := scanOTP(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OTP{}, ErrNotFound
		}
		return OTP{}, fmt.Errorf("find otp: %w", err)
	}
	return o, nil
}

// MarkVerified consumes the code. Rows already consumed are left untouched
// and reported as ErrNotFound.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id int64, at time.Time) (OTP, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `UPDATE otps
        SET is_verified = TRUE, verification_time = $2
        WHERE id = $1 AND is_verified = FALSE
        RETURNING `+otpColumns, id, at.UTC())
	o, err := scanOTP(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OTP{}, ErrNotFound
		}
		return OTP{}, fmt.Errorf("consume otp: %w", err)
	}
	return o, nil
}

func scanOTP(row pgx.Row) (OTP, error) {
	var (
		o       OTP
		purpose string
	)
	if err := row.Scan(&o.ID, &o.Code, &o.AssignedTo, &purpose, &o.CreationTime, &o.ExpirationTime,
		&o.IsVerified, &o.VerificationTime); err != nil {
		return OTP{}, err
	}
	o.AssignedFor = Purpose(purpose)
	o.CreationTime = o.CreationTime.UTC()
	o.ExpirationTime = o.ExpirationTime.UTC()
	return o, nil
}
