package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadsphere/roadsphere/internal/store"
)

// ErrNotFound is returned when no vehicle has the requested id.
var ErrNotFound = errors.New("vehicle not found")

// Repository reads vehicle listings.
type Repository interface {
	Search(ctx context.Context, f Filter) ([]Vehicle, error)
	FindByID(ctx context.Context, id int64) (Vehicle, error)
	// LockByID reads the vehicle and holds a row lock until the surrounding
	// transaction ends.
	LockByID(ctx context.Context, id int64) (Vehicle, error)
}

const vehicleColumns = `id, owner_id, make, model, year, location, price_per_day, listing_type,
        is_available, COALESCE(image_url, ''), COALESCE(description, ''), created_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed vehicle repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Search lists vehicles matching f, cheapest first.
func (r *PostgresRepository) Search(ctx context.Context, f Filter) ([]Vehicle, error) {
	f = f.normalized()
	query, args := searchQuery(f)
	rows, err := store.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search vehicles: %w", err)
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func searchQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	add("listing_type = ?", string(f.ListingType))
	if f.Make != "" {
		add(`make ILIKE ? ESCAPE '\'`, escapeLike(f.Make))
	}
	if f.Location != "" {
		add(`location ILIKE ? ESCAPE '\'`, "%"+escapeLike(f.Location)+"%")
	}
	if f.MaxPrice != nil {
		add("price_per_day <= ?", *f.MaxPrice)
	}
	if f.Available != nil {
		add("is_available = ?", *f.Available)
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY price_per_day, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// FindByID fetches a single vehicle.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (Vehicle, error) {
	return r.one(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
}

// LockByID fetches a vehicle with SELECT ... FOR UPDATE.
func (r *PostgresRepository) LockByID(ctx context.Context, id int64) (Vehicle, error) {
	return r.one(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) one(ctx context.Context, query string, id int64) (Vehicle, error) {
	v, err := scanVehicle(store.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, ErrNotFound
		}
		return Vehicle{}, fmt.Errorf("find vehicle: %w", err)
	}
	return v, nil
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var (
		v           Vehicle
		listingType string
	)
	if err := row.Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Year, &v.Location, &v.PricePerDay,
		&listingType, &v.IsAvailable, &v.ImageURL, &v.Description, &v.CreatedAt); err != nil {
		return Vehicle{}, err
	}
	v.ListingType = ListingType(listingType)
	return v, nil
}
