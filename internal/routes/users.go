package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/roadsphere/roadsphere/internal/identity"
)

// RegisterProfileRoutes wires endpoints for the signed-in user. r is the
// guarded /profile group.
func RegisterProfileRoutes(r fiber.Router, h *identity.Handler) {
	r.Get("/me", h.Me)
}

// RegisterAdminRoutes wires user management. r must already be role-gated.
func RegisterAdminRoutes(r fiber.Router, h *identity.Handler) {
	r.Get("/users", h.ListUsers)
	r.Delete("/users/:id", h.DeleteUser)
}
