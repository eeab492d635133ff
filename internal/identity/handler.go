package identity

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes profile and admin user endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Access denied. Please login")
	}
	profile, err := h.service.Profile(c.UserContext(), p.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(profile)
}

// ListUsers returns all users.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	p, _ := CurrentPrincipal(c)
	users, err := h.service.ListUsers(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(users)
}

// DeleteUser removes the user named by the :id path parameter.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return ErrInvalidUserID
	}
	p, _ := CurrentPrincipal(c)
	if err := h.service.DeleteUser(c.UserContext(), p, id); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "User has been deleted"})
}
