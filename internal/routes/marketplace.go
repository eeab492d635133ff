package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/roadsphere/roadsphere/internal/booking"
	"github.com/roadsphere/roadsphere/internal/vehicle"
)

// RegisterVehicleRoutes wires the public listing search.
func RegisterVehicleRoutes(r fiber.Router, h *vehicle.Handler) {
	r.Get("/rentals", h.List)
	r.Get("/rentals/:id", h.Get)
}

// RegisterBookingRoutes wires booking endpoints on the guarded /bookings
// group. idempotency guards creation.
func RegisterBookingRoutes(r fiber.Router, h *booking.Handler, idempotency fiber.Handler) {
	r.Get("", h.ListMine)
	r.Post("", idempotency, h.Create)
}
