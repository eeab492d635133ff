package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/roadsphere/roadsphere/internal/apperr"
	"github.com/roadsphere/roadsphere/internal/auth"
	"github.com/roadsphere/roadsphere/internal/identity"
)

// RequireAuth admits requests carrying a valid session token and stores the
// principal on the request.
func RequireAuth(guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := guard.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		identity.SetPrincipal(c, p)
		return c.Next()
	}
}

// RequireRoles authenticates and then admits only the given roles. Token
// failures on these routes are reported as 403.
func RequireRoles(guard *auth.Guard, roles ...identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := guard.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			if apperr.KindOf(err) == apperr.KindAuthentication {
				return apperr.From(err).WithKind(apperr.KindAuthorization)
			}
			return err
		}
		if err := guard.Authorize(p, roles...); err != nil {
			return err
		}
		identity.SetPrincipal(c, p)
		return c.Next()
	}
}
