package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	typeSession = "session"
	typeReset   = "reset"
)

var (
	errTokenExpired   = errors.New("token expired")
	errTokenMalformed = errors.New("token malformed")
)

// SessionClaims is the identity bundle carried by a session token.
type SessionClaims struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	KYCLevel    int    `json:"kyc_level"`
	PhoneNumber string `json:"phone_number"`
	IsVerified  bool   `json:"is_verified"`
}

// ResetClaims authorise a single password change.
type ResetClaims struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type sessionJWT struct {
	SessionClaims
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type resetJWT struct {
	ResetClaims
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer builds an issuer. now may be nil.
func NewTokenIssuer(secret string, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), now: now}
}

// IssueSession signs claims valid for ttl and returns the token with its expiry.
func (i *TokenIssuer) IssueSession(claims SessionClaims, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionJWT{
		SessionClaims: claims,
		Type:          typeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(claims.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// VerifySession returns the claims embedded at issuance.
func (i *TokenIssuer) VerifySession(token string) (SessionClaims, error) {
	var claims sessionJWT
	if err := i.parse(token, &claims); err != nil {
		return SessionClaims{}, err
	}
	if claims.Type != typeSession {
		return SessionClaims{}, errTokenMalformed
	}
	return claims.SessionClaims, nil
}

// IssueReset signs a reset token for email bound to the consumed code.
func (i *TokenIssuer) IssueReset(email, code string, ttl time.Duration) (string, error) {
	now := i.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, resetJWT{
		ResetClaims: ResetClaims{Email: email, OTP: code},
		Type:        typeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// VerifyReset checks a reset token.
func (i *TokenIssuer) VerifyReset(token string) (ResetClaims, error) {
	var claims resetJWT
	if err := i.parse(token, &claims); err != nil {
		return ResetClaims{}, err
	}
	if claims.Type != typeReset || claims.Email == "" {
		return ResetClaims{}, errTokenMalformed
	}
	return claims.ResetClaims, nil
}

func (i *TokenIssuer) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return errTokenExpired
	default:
		return fmt.Errorf("%w: %v", errTokenMalformed, err)
	}
}
