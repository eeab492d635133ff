package booking

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/roadsphere/roadsphere/internal/apperr"
	"github.com/roadsphere/roadsphere/internal/identity"
)

const dateLayout = "2006-01-02"

var errBadBody = apperr.New(apperr.KindValidation, "invalid_body", "Invalid request body")

// Handler exposes booking endpoints. Both routes sit behind the access guard.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	VehicleID int64  `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Create handles POST /bookings. Dates use YYYY-MM-DD.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return ErrInvalidDates
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return ErrInvalidDates
	}

	p, _ := identity.CurrentPrincipal(c)
	b, err := h.service.Create(c.UserContext(), p, CreateInput{VehicleID: req.VehicleID, StartDate: start, EndDate: end})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(b)
}

// ListMine handles GET /bookings.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	p, _ := identity.CurrentPrincipal(c)
	out, err := h.service.ListMine(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(out)
}
