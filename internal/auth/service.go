package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/roadsphere/roadsphere/internal/apperr"
	"github.com/roadsphere/roadsphere/internal/identity"
	"github.com/roadsphere/roadsphere/internal/metrics"
	"github.com/roadsphere/roadsphere/internal/notification"
	"github.com/roadsphere/roadsphere/internal/otp"
	"github.com/roadsphere/roadsphere/internal/store"
)

var (
	ErrMissingFields         = apperr.New(apperr.KindValidation, "missing_fields", "Some fields are missing")
	ErrDuplicateEmail        = apperr.New(apperr.KindConflict, "duplicate_email", "An account with this email already exists. Please use another email or login")
	ErrEmailNotFound         = apperr.New(apperr.KindNotFound, "email_not_found", "Email not found. Please create an account")
	ErrBadPassword           = apperr.New(apperr.KindAuthentication, "bad_password", "Password is not correct")
	ErrInvalidOrExpiredOtp   = apperr.New(apperr.KindValidation, "invalid_otp", "Invalid or Expired Otp")
	ErrInvalidOrExpiredToken = apperr.New(apperr.KindValidation, "invalid_reset_token", "Invalid or Expired token")
	ErrInvalidPurpose        = apperr.New(apperr.KindValidation, "invalid_purpose", "assigned_for must be 'email verification' or 'password reset'")
	ErrNotificationFailed    = apperr.New(apperr.KindInternal, "notification_failed", "An error occured while sending the OTP. Please try again")
)

// Options collects the collaborators of the account lifecycle service.
type Options struct {
	Users      identity.Repository
	OTPs       *otp.Engine
	Hasher     *PasswordHasher
	Tokens     *TokenIssuer
	Notifier   notification.Notifier
	Tx         store.Transactor
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	SessionTTL time.Duration
	ResetTTL   time.Duration
}

// Service drives registration, login, email verification and password reset.
type Service struct {
	users      identity.Repository
	otps       *otp.Engine
	hasher     *PasswordHasher
	tokens     *TokenIssuer
	notifier   notification.Notifier
	tx         store.Transactor
	logger     *slog.Logger
	metrics    *metrics.Metrics
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewService wires the account lifecycle service.
func NewService(opts Options) *Service {
	if opts.Tx == nil {
		opts.Tx = store.NopTransactor{}
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 15 * time.Minute
	}
	return &Service{
		users:      opts.Users,
		otps:       opts.OTPs,
		hasher:     opts.Hasher,
		tokens:     opts.Tokens,
		notifier:   opts.Notifier,
		tx:         opts.Tx,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		sessionTTL: opts.SessionTTL,
		resetTTL:   opts.ResetTTL,
	}
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      SessionClaims
}

// Register creates an unverified account and emails a verification code.
// The account survives a later failure to issue or deliver the code; the
// user can recover through SendOtp.
func (s *Service) Register(ctx context.Context, in RegisterInput) (identity.Profile, error) {
	if blank(in.Email, in.FirstName, in.LastName, in.Password) {
		return identity.Profile{}, ErrMissingFields
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return identity.Profile{}, ErrDuplicateEmail
	case !errors.Is(err, identity.ErrNotFound):
		return identity.Profile{}, apperr.Internal(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return identity.Profile{}, apperr.Internal(err)
	}

	user, err := s.users.Create(ctx, identity.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         identity.RoleUser,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return identity.Profile{}, ErrDuplicateEmail
		}
		return identity.Profile{}, apperr.Internal(err)
	}

	code, err := s.otps.Issue(ctx, user.Email, otp.PurposeEmailVerification)
	if err != nil {
		s.logger.Error("issue verification otp", "email", user.Email, "error", err)
		return identity.Profile{}, apperr.Internal(err)
	}
	s.metrics.OTPIssued(string(otp.PurposeEmailVerification))

	if err := s.dispatch(ctx, user.FirstName, code); err != nil {
		s.logger.Warn("verification otp not delivered", "email", user.Email, "error", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user.Profile(), nil
}

// Login checks credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if blank(email, password) {
		return LoginResult{}, ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			s.metrics.Login("unknown_email")
			return LoginResult{}, ErrEmailNotFound
		}
		return LoginResult{}, apperr.Internal(err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return LoginResult{}, apperr.Internal(err)
	}
	if !ok {
		s.metrics.Login("bad_password")
		return LoginResult{}, ErrBadPassword
	}

	claims := SessionClaims{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.Role),
		KYCLevel:    user.KYCLevel,
		PhoneNumber: user.PhoneNumber,
		IsVerified:  user.IsVerified,
	}
	token, exp, err := s.tokens.IssueSession(claims, s.sessionTTL)
	if err != nil {
		return LoginResult{}, apperr.Internal(err)
	}
	s.metrics.Login("success")
	return LoginResult{Token: token, ExpiresAt: exp, User: claims}, nil
}

// VerifyEmailOtp consumes an email verification code and marks the account
// verified. Both writes commit together.
func (s *Service) VerifyEmailOtp(ctx context.Context, email, code string) error {
	if blank(email, code) {
		return ErrMissingFields
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.consume(ctx, email, code, otp.PurposeEmailVerification); err != nil {
			return err
		}
		if err := s.users.MarkVerified(ctx, email); err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				return ErrEmailNotFound
			}
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return apperr.From(err)
	}
	s.logger.Info("email verified", "email", email)
	return nil
}

// SendOtp issues a fresh code for purpose and emails it. Earlier codes stay valid.
func (s *Service) SendOtp(ctx context.Context, email, purpose string) error {
	if blank(email, purpose) {
		return ErrMissingFields
	}
	p, err := otp.ParsePurpose(purpose)
	if err != nil {
		return ErrInvalidPurpose
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return ErrEmailNotFound
		}
		return apperr.Internal(err)
	}

	code, err := s.otps.Issue(ctx, user.Email, p)
	if err != nil {
		return apperr.Internal(err)
	}
	s.metrics.OTPIssued(string(p))

	if err := s.dispatch(ctx, user.FirstName, code); err != nil {
		s.logger.Error("otp not delivered", "email", user.Email, "purpose", string(p), "error", err)
		return ErrNotificationFailed
	}
	return nil
}

// VerifyResetOtp consumes a password reset code and returns a reset token.
func (s *Service) VerifyResetOtp(ctx context.Context, email, code string) (string, error) {
	if blank(email, code) {
		return "", ErrMissingFields
	}
	var token string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		consumed, err := s.consume(ctx, email, code, otp.PurposePasswordReset)
		if err != nil {
			return err
		}
		token, err = s.tokens.IssueReset(consumed.AssignedTo, consumed.Code, s.resetTTL)
		if err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return "", apperr.From(err)
	}
	return token, nil
}

// ResetPassword overwrites the credential of the account named in the token.
func (s *Service) ResetPassword(ctx context.Context, newPassword, resetToken string) error {
	if blank(newPassword, resetToken) {
		return ErrMissingFields
	}
	claims, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, claims.Email, hash); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return ErrEmailNotFound
		}
		return apperr.Internal(err)
	}
	s.logger.Info("password reset", "email", claims.Email)
	return nil
}

func (s *Service) consume(ctx context.Context, email, code string, purpose otp.Purpose) (otp.OTP, error) {
	found, err := s.otps.Validate(ctx, email, code, purpose)
	if err == nil {
		found, err = s.otps.Consume(ctx, found.ID)
	}
	if err != nil {
		if errors.Is(err, otp.ErrInvalid) {
			s.metrics.OTPVerified(string(purpose), "rejected")
			return otp.OTP{}, ErrInvalidOrExpiredOtp
		}
		return otp.OTP{}, apperr.Internal(err)
	}
	s.metrics.OTPVerified(string(purpose), "accepted")
	return found, nil
}

func (s *Service) dispatch(ctx context.Context, firstName string, code otp.OTP) error {
	body, err := notification.OTPEmail{
		FirstName: firstName,
		Purpose:   string(code.AssignedFor),
		Code:      code.Code,
		Minutes:   int(otp.TTL / time.Minute),
	}.Render()
	if err == nil {
		err = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindOTP,
			Destination: code.AssignedTo,
			Subject:     code.AssignedFor.Subject(),
			Body:        body,
		})
	}
	if err != nil {
		s.metrics.NotificationFailed(notification.KindOTP)
	}
	return err
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
