package otp

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   []OTP
}

// NewMemoryRepository builds an in-memory otp store for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, o OTP) (OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	r.rows = append(r.rows, o)
	return o, nil
}

func (r *memoryRepository) FindActive(_ context.Context, code, email string, purpose Purpose, now time.Time) (OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Newest rows are at the end.
	for i := len(r.rows) - 1; i >= 0; i-- {
		o := r.rows[i]
		if o.Code == code && o.AssignedTo == email && o.AssignedFor == purpose && !o.IsVerified && !o.ExpiredAt(now) {
			return o, nil
		}
	}
	return OTP{}, ErrNotFound
}

func (r *memoryRepository) MarkVerified(_ context.Context, id int64, at time.Time) (OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && !r.rows[i].IsVerified {
			ts := at
			r.rows[i].IsVerified = true
			r.rows[i].VerificationTime = &ts
			return r.rows[i], nil
		}
	}
	return OTP{}, ErrNotFound
}
