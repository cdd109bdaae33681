package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zet-health/zet_booking/internal/savedaddress"
)

// RegisterAddressRoutes wires the api backend address endpoints behind bearer auth.
func RegisterAddressRoutes(r fiber.Router, h *savedaddress.Handler, bearer, idempotency fiber.Handler) {
	group := r.Group("/api", bearer)
	group.Get("/get-address-list", h.List)
	group.Post("/add-address", idempotency, h.Add)
	group.Post("/address-delete", h.Delete)
}
