package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadsphere/roadsphere/internal/store"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the unique email constraint rejects an insert.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	MarkVerified(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	TouchLastActive(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id int64) error
}

const userColumns = `id, email, first_name, last_name, password_hash, role, kyc_level,
        COALESCE(phone_number, ''), is_verified, last_active, created_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user and returns it with the datastore-assigned id.
func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `INSERT INTO users (email, first_name, last_name, password_hash, role, kyc_level, is_verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+userColumns,
		user.Email, user.FirstName, user.LastName, user.PasswordHash, string(user.Role), user.KYCLevel, user.IsVerified)
	created, err := scanUser(row)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// FindByEmail fetches a user by exact email match.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUserOrNotFound(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUserOrNotFound(row)
}

// MarkVerified flags the user's email as confirmed.
func (r *PostgresRepository) MarkVerified(ctx context.Context, email string) error {
	return r.execOne(ctx, `UPDATE users SET is_verified = TRUE WHERE email = $1`, email)
}

// UpdatePassword overwrites the stored credential.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $2 WHERE email = $1`, email, passwordHash)
}

// TouchLastActive refreshes the activity marker. ErrNotFound means the id no
// longer exists.
func (r *PostgresRepository) TouchLastActive(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_active = $2 WHERE id = $1`, id, at.UTC())
}

// List returns every user ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes the user row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, sql string, args ...any) error {
	cmd, err := store.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUserOrNotFound(row pgx.Row) (User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u         User
		role      string
		createdAt time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &role, &u.KYCLevel,
		&u.PhoneNumber, &u.IsVerified, &u.LastActive, &createdAt); err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	u.CreatedAt = createdAt.UTC()
	return u, nil
}
