package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/zet-health/zet_booking/internal/address"
	"github.com/zet-health/zet_booking/internal/apiclient"
	"github.com/zet-health/zet_booking/internal/cart"
	"github.com/zet-health/zet_booking/internal/config"
	"github.com/zet-health/zet_booking/internal/infra"
	"github.com/zet-health/zet_booking/internal/location"
	"github.com/zet-health/zet_booking/internal/logging"
	"github.com/zet-health/zet_booking/internal/navigation"
	"github.com/zet-health/zet_booking/internal/notification"
	"github.com/zet-health/zet_booking/internal/session"
	"github.com/zet-health/zet_booking/internal/storage"
)

// app is the client core wired for one CLI invocation.
type app struct {
	cfg     config.Client
	logger  *slog.Logger
	storage storage.Storage
	redis   *redis.Client
	bus     *notification.Bus
	nav     *navigation.History

	sessions  *session.Store
	client    *apiclient.Client
	auth      *session.Controller
	location  *location.Store
	cart      *cart.Store
	addresses *address.Book

	unsubscribe func()
}

func newApp(ctx context.Context, cfg config.Client, toasts io.Writer, logOut io.Writer) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: logging.NewText(logOut, cfg.LogLevel),
		bus:    notification.NewBus(),
		nav:    navigation.NewHistory(navigation.RouteHome),
	}

	st, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	a.storage = st

	a.unsubscribe = a.bus.Subscribe(func(t notification.Toast) {
		fmt.Fprintf(toasts, "[%s] %s\n", t.Level, t.Text)
	})

	a.sessions = session.NewStore(a.storage, a.logger)
	a.client = apiclient.New(cfg.AuthBaseURL, cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithTokenSource(a.sessions),
		apiclient.WithUnauthorizedHandler(a.sessionExpired),
		apiclient.WithNavigator(a.nav),
		apiclient.WithLogger(a.logger),
	)
	a.auth = session.NewController(a.sessions, a.client, a.logger, session.WithNotifier(a.bus))
	a.location = location.NewStore(a.storage, a.logger, location.WithNotifier(a.bus))
	a.cart = cart.NewStore(a.storage, a.logger)
	a.addresses = address.NewBook(a.client, a.storage, a.bus, a.logger)

	if err := a.auth.InitializeAuth(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if err := a.location.LoadPersisted(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore location: %w", err)
	}
	if err := a.cart.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore cart: %w", err)
	}
	return a, nil
}

// sessionExpired runs when any call gets HTTP 401.
func (a *app) sessionExpired(ctx context.Context) {
	a.sessions.ForceLogout(ctx)
	_ = a.bus.Send(ctx, notification.Toast{
		Level: notification.LevelError,
		Text:  "Session expired. Run `zetctl otp request <mobile>` to log in again.",
	})
}

func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	switch a.cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemory(), nil
	case config.StorageRedis:
		client, err := infra.NewRedisClient(ctx, a.cfg.RedisURL,
			infra.WithConnectTimeout(a.cfg.HTTPTimeout),
			infra.WithMaxConns(2),
			infra.WithApplicationName("zetctl"),
		)
		if err != nil {
			return nil, err
		}
		a.redis = client
		return storage.NewRedis(client, a.cfg.StoragePrefix), nil
	default:
		return storage.NewFile(a.cfg.StoragePath)
	}
}

// detector builds a location store that resolves the given coordinates
// through the configured reverse geocoder.
func (a *app) detector(at location.Coordinates) *location.Store {
	return location.NewStore(a.storage, a.logger,
		location.WithNotifier(a.bus),
		location.WithDetection(
			location.FixedGeolocator{At: at, Set: true},
			location.NewHTTPGeocoder(a.cfg.GeocoderURL, a.cfg.HTTPTimeout),
		),
	)
}

// Close releases the storage backend.
func (a *app) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", slog.Any("error", err))
		}
	}
}
