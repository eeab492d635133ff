package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	issuer := NewTokenIssuer("secret", clk.Now)
	want := SessionClaims{ID: 7, Email: "a@x.com", FirstName: "A", LastName: "B", Role: "admin", KYCLevel: 3, PhoneNumber: "+1", IsVerified: true}

	tok, exp, err := issuer.IssueSession(want, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), exp)

	clk.Advance(59 * time.Minute)
	got, err := issuer.VerifySession(tok)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	clk.Advance(2 * time.Minute)
	_, err = issuer.VerifySession(tok)
	assert.ErrorIs(t, err, errTokenExpired)
}

func TestSessionTokenRejectsForeignSignature(t *testing.T) {
	tok, _, err := NewTokenIssuer("one", nil).IssueSession(SessionClaims{ID: 1, Role: "user"}, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", nil).VerifySession(tok)
	assert.ErrorIs(t, err, errTokenMalformed)

	_, err = NewTokenIssuer("one", nil).VerifySession("garbage")
	assert.ErrorIs(t, err, errTokenMalformed)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	issuer := NewTokenIssuer("secret", nil)
	reset, err := issuer.IssueReset("a@x.com", "123456", time.Minute)
	require.NoError(t, err)
	_, err = issuer.VerifySession(reset)
	assert.ErrorIs(t, err, errTokenMalformed)

	session, _, err := issuer.IssueSession(SessionClaims{ID: 1, Email: "a@x.com", Role: "user"}, time.Minute)
	require.NoError(t, err)
	_, err = issuer.VerifyReset(session)
	assert.ErrorIs(t, err, errTokenMalformed)

	claims, err := issuer.VerifyReset(reset)
	require.NoError(t, err)
	assert.Equal(t, ResetClaims{Email: "a@x.com", OTP: "123456"}, claims)
}

func TestResetTokenExpires(t *testing.T) {
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	issuer := NewTokenIssuer("secret", clk.Now)
	tok, err := issuer.IssueReset("a@x.com", "123456", 15*time.Minute)
	require.NoError(t, err)

	clk.Advance(16 * time.Minute)
	_, err = issuer.VerifyReset(tok)
	assert.ErrorIs(t, err, errTokenExpired)
}
