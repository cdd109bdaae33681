package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zet-health/zet_booking/internal/apierror"
	"github.com/zet-health/zet_booking/internal/auth"
)

// BearerAuth validates the access token and stores the user id in locals.
// Tokens issued before the user's last logout are rejected.
func BearerAuth(tokens *auth.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return apierror.ErrUnauthorized.WithMessage("missing bearer token")
		}

		user, err := tokens.Authenticate(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			logger.Debug("bearer token rejected", slog.Any("error", err))
			return apierror.ErrUnauthorized.WithMessage("token expired or invalid")
		}

		c.Locals(auth.LocalsUserID, user.ID)
		return c.Next()
	}
}
