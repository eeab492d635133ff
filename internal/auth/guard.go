package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/roadsphere/roadsphere/internal/apperr"
	"github.com/roadsphere/roadsphere/internal/identity"
)

var (
	ErrUnauthenticated = apperr.New(apperr.KindAuthentication, "unauthenticated", "Access denied. Please login")
	ErrTokenExpired    = apperr.New(apperr.KindAuthentication, "token_expired", "Your token has expired")
	ErrInvalidToken    = apperr.New(apperr.KindAuthentication, "invalid_token", "You provided an invalid token")
	ErrForbidden       = identity.ErrForbidden
)

// Guard authenticates bearer tokens and authorises roles.
type Guard struct {
	tokens *TokenIssuer
	users  identity.Repository
	now    func() time.Time
	logger *slog.Logger
}

// NewGuard builds an access guard. now may be nil.
func NewGuard(tokens *TokenIssuer, users identity.Repository, now func() time.Time, logger *slog.Logger) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{tokens: tokens, users: users, now: now, logger: logger}
}

// Authenticate resolves the Authorization header into a principal and bumps
// the user's last activity. A token whose user no longer exists is rejected.
func (g *Guard) Authenticate(ctx context.Context, header string) (identity.Principal, error) {
	token, ok := bearer(header)
	if !ok {
		return identity.Principal{}, ErrUnauthenticated
	}

	claims, err := g.tokens.VerifySession(token)
	if err != nil {
		if errors.Is(err, errTokenExpired) {
			return identity.Principal{}, ErrTokenExpired
		}
		return identity.Principal{}, ErrInvalidToken
	}
	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return identity.Principal{}, ErrInvalidToken
	}

	if err := g.users.TouchLastActive(ctx, claims.ID, g.now().UTC()); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			g.logger.Warn("token for missing user", "user_id", claims.ID)
			return identity.Principal{}, ErrInvalidToken
		}
		return identity.Principal{}, apperr.Internal(err)
	}

	return identity.Principal{
		ID:          claims.ID,
		Email:       claims.Email,
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		Role:        role,
		KYCLevel:    claims.KYCLevel,
		PhoneNumber: claims.PhoneNumber,
		IsVerified:  claims.IsVerified,
	}, nil
}

// Authorize admits principals holding one of roles.
func (g *Guard) Authorize(p identity.Principal, roles ...identity.Role) error {
	if !p.Role.In(roles...) {
		return ErrForbidden
	}
	return nil
}

func bearer(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
