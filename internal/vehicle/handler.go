package vehicle

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the public listing endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /rentals. Listing type defaults to rent.
func (h *Handler) List(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return ErrInvalidFilter
	}
	out, err := h.service.Search(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get handles GET /rentals/:id.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return ErrInvalidID
	}
	v, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(v)
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{
		Make:     c.Query("make"),
		Location: c.Query("location"),
		Limit:    c.QueryInt("limit"),
		Offset:   c.QueryInt("offset"),
	}
	if raw := c.Query("listing_type"); raw != "" {
		t, err := ParseListingType(raw)
		if err != nil {
			return Filter{}, err
		}
		f.ListingType = t
	}
	if raw := c.Query("max_price"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, err
		}
		f.MaxPrice = &n
	}
	if raw := c.Query("available"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, err
		}
		f.Available = &b
	}
	return f, nil
}
