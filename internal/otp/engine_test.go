package otp

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine() (*Engine, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewEngine(NewMemoryRepository(), WithClock(clock.Now)), clock
}

func TestGenerateIsSixDigits(t *testing.T) {
	e, _ := newTestEngine()
	for i := 0; i < 200; i++ {
		code, err := e.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateLowerBound(t *testing.T) {
	// All-zero entropy yields the smallest code.
	e := NewEngine(NewMemoryRepository(), WithRand(bytes.NewReader(make([]byte, 64))))
	code, err := e.Generate()
	require.NoError(t, err)
	assert.Equal(t, "100000", code)
}

func TestIssueSetsExpiry(t *testing.T) {
	e, clock := newTestEngine()
	o, err := e.Issue(context.Background(), "a@x.com", PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), o.CreationTime)
	assert.Equal(t, clock.Now().Add(10*time.Minute), o.ExpirationTime)
	assert.False(t, o.IsVerified)
	assert.Nil(t, o.VerificationTime)
}

func TestValidateThenConsumeIsSingleUse(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	o, err := e.Issue(ctx, "a@x.com", PurposeEmailVerification)
	require.NoError(t, err)

	got, err := e.Validate(ctx, "a@x.com", o.Code, PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	consumed, err := e.Consume(ctx, got.ID)
	require.NoError(t, err)
	assert.True(t, consumed.IsVerified)
	require.NotNil(t, consumed.VerificationTime)

	_, err = e.Validate(ctx, "a@x.com", o.Code, PurposeEmailVerification)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = e.Consume(ctx, got.ID)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRequiresAllKeys(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	o, err := e.Issue(ctx, "a@x.com", PurposePasswordReset)
	require.NoError(t, err)

	_, err = e.Validate(ctx, "b@x.com", o.Code, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = e.Validate(ctx, "a@x.com", o.Code, PurposeEmailVerification)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = e.Validate(ctx, "A@x.com", o.Code, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRejectsExpired(t *testing.T) {
	e, clock := newTestEngine()
	ctx := context.Background()
	o, err := e.Issue(ctx, "a@x.com", PurposeEmailVerification)
	require.NoError(t, err)

	clock.Advance(TTL - time.Second)
	_, err = e.Validate(ctx, "a@x.com", o.Code, PurposeEmailVerification)
	require.NoError(t, err)

	clock.Advance(time.Second + time.Millisecond)
	_, err = e.Validate(ctx, "a@x.com", o.Code, PurposeEmailVerification)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestOutstandingCodesCoexist(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	first, err := e.Issue(ctx, "a@x.com", PurposePasswordReset)
	require.NoError(t, err)
	second, err := e.Issue(ctx, "a@x.com", PurposePasswordReset)
	require.NoError(t, err)

	for _, code := range []string{first.Code, second.Code} {
		_, err := e.Validate(ctx, "a@x.com", code, PurposePasswordReset)
		assert.NoError(t, err)
	}
}

func TestParsePurpose(t *testing.T) {
	p, err := ParsePurpose("password reset")
	require.NoError(t, err)
	assert.Equal(t, PurposePasswordReset, p)
	assert.Equal(t, "Password Reset OTP", p.Subject())
	assert.Equal(t, "Verify Email OTP", PurposeEmailVerification.Subject())

	_, err = ParsePurpose("login")
	assert.Error(t, err)
}
