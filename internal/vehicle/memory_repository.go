package vehicle

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository keeps vehicles in memory for tests and local runs.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	vehicles map[int64]Vehicle
}

// NewMemoryRepository builds an empty in-memory vehicle store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{vehicles: make(map[int64]Vehicle)}
}

// Add stores a vehicle and assigns its id.
func (r *MemoryRepository) Add(v Vehicle) Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	v.ID = r.nextID
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	r.vehicles[v.ID] = v
	return v
}

func (r *MemoryRepository) Search(_ context.Context, f Filter) ([]Vehicle, error) {
	f = f.normalized()
	r.mu.RLock()
	var out []Vehicle
	for _, v := range r.vehicles {
		if matches(v, f) {
			out = append(out, v)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].PricePerDay != out[j].PricePerDay {
			return out[i].PricePerDay < out[j].PricePerDay
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(v Vehicle, f Filter) bool {
	switch {
	case v.ListingType != f.ListingType:
		return false
	case f.Make != "" && !strings.EqualFold(v.Make, f.Make):
		return false
	case f.Location != "" && !strings.Contains(strings.ToLower(v.Location), strings.ToLower(f.Location)):
		return false
	case f.MaxPrice != nil && v.PricePerDay > *f.MaxPrice:
		return false
	case f.Available != nil && v.IsAvailable != *f.Available:
		return false
	}
	return true
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vehicles[id]
	if !ok {
		return Vehicle{}, ErrNotFound
	}
	return v, nil
}

func (r *MemoryRepository) LockByID(ctx context.Context, id int64) (Vehicle, error) {
	return r.FindByID(ctx, id)
}
