package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"
)

// TTL is how long an issued code stays usable.
const TTL = 10 * time.Minute

const (
	codeMin  = 100000
	codeSpan = 900000
)

// ErrInvalid covers unknown, expired and already consumed codes alike.
var ErrInvalid = errors.New("otp invalid or expired")

// Engine issues and checks one-time codes.
type Engine struct {
	repo Repository
	now  func() time.Time
	rand io.Reader
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand overrides the randomness source used for codes.
func WithRand(r io.Reader) Option {
	return func(e *Engine) { e.rand = r }
}

// NewEngine builds an OTP engine over repo.
func NewEngine(repo Repository, opts ...Option) *Engine {
	e := &Engine{repo: repo, now: time.Now, rand: rand.Reader}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate draws a code uniformly from [100000, 999999].
func (e *Engine) Generate() (string, error) {
	n, err := rand.Int(e.rand, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// Issue persists a fresh code for email and purpose. Earlier outstanding
// codes are left as they are.
func (e *Engine) Issue(ctx context.Context, email string, purpose Purpose) (OTP, error) {
	code, err := e.Generate()
	if err != nil {
		return OTP{}, err
	}
	now := e.now().UTC()
	return e.repo.Create(ctx, OTP{
		Code:           code,
		AssignedTo:     email,
		AssignedFor:    purpose,
		CreationTime:   now,
		ExpirationTime: now.Add(TTL),
	})
}

// Validate finds the usable code matching all three keys.
func (e *Engine) Validate(ctx context.Context, email, code string, purpose Purpose) (OTP, error) {
	o, err := e.repo.FindActive(ctx, code, email, purpose, e.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return OTP{}, ErrInvalid
		}
		return OTP{}, err
	}
	return o, nil
}

// Consume marks a validated code as used.
func (e *Engine) Consume(ctx context.Context, id int64) (OTP, error) {
	o, err := e.repo.MarkVerified(ctx, id, e.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return OTP{}, ErrInvalid
		}
		return OTP{}, err
	}
	return o, nil
}
