package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/roadsphere/roadsphere/internal/auth"
)

// RegisterAuthRoutes wires the account lifecycle endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/verify-email-otp", h.VerifyEmailOtp)
	group.Post("/send-otp", h.SendOtp)
	group.Post("/verify-reset-otp", h.VerifyResetOtp)
	group.Post("/reset-password", h.ResetPassword)
}
