package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zet-health/zet_booking/internal/auth"
)

// RegisterAuthRoutes wires the auth backend endpoints. The common/* routes
// require a bearer token.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter, bearer fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/login-user", rateLimiter, h.Login)
	group.Post("/register-user", h.Register)

	common := group.Group("/common", bearer)
	common.Post("/logout-user", h.Logout)
	common.Get("/get-profile", h.Profile)
}
