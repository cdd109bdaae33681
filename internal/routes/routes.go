package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/zet-health/zet_booking/internal/auth"
	"github.com/zet-health/zet_booking/internal/config"
	"github.com/zet-health/zet_booking/internal/identity"
	"github.com/zet-health/zet_booking/internal/middleware"
	"github.com/zet-health/zet_booking/internal/notification"
	"github.com/zet-health/zet_booking/internal/otp"
	"github.com/zet-health/zet_booking/internal/savedaddress"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	// SMS delivers OTP codes. Defaults to a LoggerNotifier on Logger.
	SMS notification.Notifier

	// OTPOptions tune code generation, e.g. a fixed generator in tests.
	OTPOptions []otp.Option
}

// Setup configures middlewares and all sandbox routes. Without a database or
// Redis, which is only allowed in development, state lives in memory.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var identityRepo identity.Repository
	var addressRepo savedaddress.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		addressRepo = savedaddress.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		addressRepo = savedaddress.NewMemoryRepository()
	}

	var otpStore otp.Store
	if d.Cache != nil {
		otpStore = otp.NewRedisStore(d.Cache)
	} else {
		otpStore = otp.NewMemoryStore(nil)
	}

	sms := d.SMS
	if sms == nil {
		sms = notification.NewLoggerNotifier(d.Logger)
	}

	identitySvc := identity.NewService(identityRepo)
	otpSvc := otp.NewService(otpStore, d.Cfg.OTPTTL, d.OTPOptions...)
	authSvc := auth.NewService(d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL, identityRepo)
	authHandler := auth.NewHandler(identitySvc, otpSvc, authSvc, sms, d.Cfg.ExposeOTP, d.Logger)
	addressHandler := savedaddress.NewHandler(savedaddress.NewService(addressRepo))

	bearer := middleware.BearerAuth(authSvc, d.Logger)
	RegisterAuthRoutes(app, authHandler, middleware.OTPRateLimit(d.Cache, d.Cfg.SendOTPPerMin, d.Logger), bearer)
	RegisterAddressRoutes(app, addressHandler, bearer, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))

	return nil
}
