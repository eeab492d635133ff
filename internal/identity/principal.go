package identity

import "github.com/gofiber/fiber/v2"

const principalLocalsKey = "principal"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID          int64
	Email       string
	FirstName   string
	LastName    string
	Role        Role
	KYCLevel    int
	PhoneNumber string
	IsVerified  bool
}

// SetPrincipal stores the caller on the request context.
func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(principalLocalsKey, p)
}

// CurrentPrincipal returns the caller stored by the access guard.
func CurrentPrincipal(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalLocalsKey).(Principal)
	return p, ok
}
