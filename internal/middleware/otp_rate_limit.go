package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/zet-health/zet_booking/internal/apierror"
)

// OTPRateLimit caps OTP sends on login-user per mobile number (or client IP
// when the body carries none) per minute. Verify submissions, which carry an
// otp, are left to the code's own attempt limit. It is a no-op without Redis
// and fails open on cache errors.
func OTPRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			MobileNumber string `json:"mobile_number"`
			OTP          string `json:"otp"`
		}
		_ = c.BodyParser(&req)
		if strings.TrimSpace(req.OTP) != "" {
			return c.Next()
		}
		subject := strings.TrimSpace(req.MobileNumber)
		if subject == "" {
			subject = c.IP()
		}

		key := "rl:otp:" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			logger.Warn("rate limit lookup failed", slog.Any("error", err))
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return apierror.ErrRateLimited.WithMessage("Too many OTP requests, try again in a minute")
		}
		return c.Next()
	}
}
