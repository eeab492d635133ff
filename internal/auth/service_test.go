package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadsphere/roadsphere/internal/apperr"
	"github.com/roadsphere/roadsphere/internal/identity"
	"github.com/roadsphere/roadsphere/internal/logging"
	"github.com/roadsphere/roadsphere/internal/otp"
)

func TestRegisterStoresHashAndSendsCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.register(t, "a@x.com", "pw1")
	assert.False(t, p.IsVerified)
	assert.Equal(t, identity.RoleUser, p.Role)

	u, err := f.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	ok, err := NewPasswordHasher(4).Verify(u.PasswordHash, "pw1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, f.out.sent, 1)
	msg := f.out.sent[0]
	assert.Equal(t, "Verify Email OTP", msg.Subject)
	assert.Contains(t, msg.Body, "Hello A,")
	assert.Contains(t, msg.Body, "email verification")
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Email: "a@x.com", FirstName: "A", Password: "pw"})
	assert.ErrorIs(t, err, ErrMissingFields)

	f.register(t, "a@x.com", "pw1")
	_, err = f.svc.Register(ctx, RegisterInput{Email: "a@x.com", FirstName: "A", LastName: "B", Password: "pw2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 400, apperr.From(err).Status())
}

// racingUsers looks like a concurrent sign-up won between the lookup and the insert.
type racingUsers struct {
	identity.Repository
}

func (racingUsers) FindByEmail(context.Context, string) (identity.User, error) {
	return identity.User{}, identity.ErrNotFound
}

func (racingUsers) Create(context.Context, identity.User) (identity.User, error) {
	return identity.User{}, identity.ErrEmailTaken
}

func TestRegisterUniqueViolationIsDuplicateEmail(t *testing.T) {
	svc := NewService(Options{
		Users:    racingUsers{Repository: identity.NewMemoryRepository()},
		OTPs:     otp.NewEngine(otp.NewMemoryRepository()),
		Hasher:   NewPasswordHasher(4),
		Tokens:   NewTokenIssuer("test-secret", time.Now),
		Notifier: &outbox{},
		Logger:   logging.Discard(),
	})

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", FirstName: "A", LastName: "B", Password: "pw1"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 400, apperr.From(err).Status())
}

func TestLongPasswordLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := strings.Repeat("p", 80)

	f.register(t, "a@x.com", long)
	_, err := f.svc.Login(ctx, "a@x.com", long)
	require.NoError(t, err)

	require.NoError(t, f.svc.SendOtp(ctx, "a@x.com", "password reset"))
	token, err := f.svc.VerifyResetOtp(ctx, "a@x.com", f.out.lastCode(t, "a@x.com"))
	require.NoError(t, err)

	longer := strings.Repeat("q", 100)
	require.NoError(t, f.svc.ResetPassword(ctx, longer, token))
	_, err = f.svc.Login(ctx, "a@x.com", longer)
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "a@x.com", long)
	assert.ErrorIs(t, err, ErrBadPassword)
}

func TestRegisterSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	f.out.fail = true

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@x.com", FirstName: "A", LastName: "B", Password: "pw1"})
	require.NoError(t, err)

	u, err := f.users.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, u.IsVerified)

	// send-otp reports the same failure to the caller.
	err = f.svc.SendOtp(context.Background(), "a@x.com", "email verification")
	assert.ErrorIs(t, err, ErrNotificationFailed)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.register(t, "a@x.com", "pw1")

	_, err := f.svc.Login(ctx, "a@x.com", "")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = f.svc.Login(ctx, "nobody@x.com", "pw1")
	assert.ErrorIs(t, err, ErrEmailNotFound)
	_, err = f.svc.Login(ctx, "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrBadPassword)

	res, err := f.svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(time.Hour), res.ExpiresAt)

	claims, err := f.tokens.VerifySession(res.Token)
	require.NoError(t, err)
	assert.Equal(t, SessionClaims{ID: p.ID, Email: "a@x.com", FirstName: "a", LastName: "b", Role: "user"}, claims)
	assert.Equal(t, claims, res.User)
}

func TestVerifyEmailOtpFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "pw1")
	code := f.out.lastCode(t, "a@x.com")

	assert.ErrorIs(t, f.svc.VerifyEmailOtp(ctx, "a@x.com", ""), ErrMissingFields)
	assert.ErrorIs(t, f.svc.VerifyEmailOtp(ctx, "b@x.com", code), ErrInvalidOrExpiredOtp)

	require.NoError(t, f.svc.VerifyEmailOtp(ctx, "a@x.com", code))
	u, err := f.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)

	assert.ErrorIs(t, f.svc.VerifyEmailOtp(ctx, "a@x.com", code), ErrInvalidOrExpiredOtp)
}

func TestVerifyEmailOtpExpires(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", "pw1")
	code := f.out.lastCode(t, "a@x.com")

	f.clock.Advance(10*time.Minute + time.Second)
	assert.ErrorIs(t, f.svc.VerifyEmailOtp(context.Background(), "a@x.com", code), ErrInvalidOrExpiredOtp)
}

func TestResetCodeCannotVerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "pw1")
	require.NoError(t, f.svc.SendOtp(ctx, "a@x.com", "password reset"))
	code := f.out.lastCode(t, "a@x.com")

	assert.ErrorIs(t, f.svc.VerifyEmailOtp(ctx, "a@x.com", code), ErrInvalidOrExpiredOtp)
}

func TestSendOtpValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.SendOtp(ctx, "", "password reset"), ErrMissingFields)
	assert.ErrorIs(t, f.svc.SendOtp(ctx, "a@x.com", "login"), ErrInvalidPurpose)
	assert.ErrorIs(t, f.svc.SendOtp(ctx, "a@x.com", "password reset"), ErrEmailNotFound)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "pw1")

	require.NoError(t, f.svc.SendOtp(ctx, "a@x.com", "password reset"))
	code := f.out.lastCode(t, "a@x.com")
	assert.Equal(t, "Password Reset OTP", f.out.sent[len(f.out.sent)-1].Subject)

	token, err := f.svc.VerifyResetOtp(ctx, "a@x.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = f.svc.VerifyResetOtp(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredOtp)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "newpw", "bogus"), ErrInvalidOrExpiredToken)
	require.NoError(t, f.svc.ResetPassword(ctx, "newpw", token))

	_, err = f.svc.Login(ctx, "a@x.com", "newpw")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "a@x.com", "pw1")
	assert.ErrorIs(t, err, ErrBadPassword)
}

func TestResetTokenExpiresBeforeUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "pw1")
	require.NoError(t, f.svc.SendOtp(ctx, "a@x.com", "password reset"))

	token, err := f.svc.VerifyResetOtp(ctx, "a@x.com", f.out.lastCode(t, "a@x.com"))
	require.NoError(t, err)

	f.clock.Advance(16 * time.Minute)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "newpw", token), ErrInvalidOrExpiredToken)
}

func TestSessionTokenCannotResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "pw1")
	res, err := f.svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "newpw", res.Token), ErrInvalidOrExpiredToken)
}
