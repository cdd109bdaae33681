package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zet-health/zet_booking/internal/apierror"
	"github.com/zet-health/zet_booking/internal/config"
	"github.com/zet-health/zet_booking/internal/logging"
	"github.com/zet-health/zet_booking/internal/otp"
	"github.com/zet-health/zet_booking/internal/routes"
)

const testOTP = "135790"

// setupSandbox starts the sandbox backend and points the CLI at it with a
// file store in a temp dir.
func setupSandbox(t *testing.T) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: apierror.Handler})
	err := routes.Setup(app, routes.Deps{
		Cfg: config.Config{
			Env:            "test",
			JWTSecret:      "cli-test-secret",
			AccessTokenTTL: time.Hour,
			OTPTTL:         time.Minute,
			SendOTPPerMin:  10,
			IdempotencyTTL: time.Hour,
		},
		Logger: logging.Discard(),
		OTPOptions: []otp.Option{
			otp.WithGenerator(func() (string, error) { return testOTP, nil }),
			otp.WithBcryptCost(bcrypt.MinCost),
		},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	t.Setenv("ZET_AUTH_BASE_URL", srv.URL+"/auth/")
	t.Setenv("ZET_API_BASE_URL", srv.URL+"/api/")
	t.Setenv("ZET_STORAGE", config.StorageFile)
	t.Setenv("ZET_STORAGE_PATH", filepath.Join(t.TempDir(), "storage.json"))
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := newCLI()
	var out bytes.Buffer
	c.root.SetOut(&out)
	c.root.SetErr(&out)
	c.root.SetArgs(args)
	err := c.execute(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestLoginAcrossInvocations(t *testing.T) {
	setupSandbox(t)

	out, err := run(t, "otp", "request", "9123456780")
	require.Error(t, err)
	assert.Contains(t, out, "Number not registered")

	mustRun(t, "register", "--name", "Asha Rao", "--email", "asha@example.com", "--gender", "female", "--mobile", "9123456780")

	out = mustRun(t, "otp", "request", "9123456780")
	assert.Contains(t, out, "[success] OTP sent")

	out = mustRun(t, "whoami")
	assert.Contains(t, out, "Waiting for OTP sent to 9123456780")

	out, err = run(t, "otp", "resend")
	require.Error(t, err)
	assert.Contains(t, out, "Resend OTP in")

	_, err = run(t, "otp", "verify", "000000")
	require.Error(t, err)

	out = mustRun(t, "otp", "verify", testOTP)
	assert.Contains(t, out, "Logged in as")

	out = mustRun(t, "whoami")
	assert.Contains(t, out, "Asha Rao")
	assert.Contains(t, out, "asha@example.com")

	mustRun(t, "logout")
	out = mustRun(t, "whoami")
	assert.Contains(t, out, "Not logged in")
}

func TestAddressCommands(t *testing.T) {
	setupSandbox(t)
	mustRun(t, "register", "--name", "Asha Rao", "--email", "asha@example.com", "--gender", "female", "--mobile", "9123456780")
	mustRun(t, "otp", "request", "9123456780")
	mustRun(t, "otp", "verify", testOTP)

	out, err := run(t, "address", "add", "--address", "12 MG Road", "--area", "Indiranagar", "--pincode", "5600", "--city", "Bangalore")
	require.Error(t, err)
	assert.Contains(t, out, "Please enter valid 6-digit pincode")

	out = mustRun(t, "address", "add", "--address", "12 MG Road", "--area", "Indiranagar", "--pincode", "560038", "--city", "Bangalore")
	assert.Contains(t, out, "Address added successfully")

	out = mustRun(t, "address", "list")
	require.Contains(t, out, "12 MG Road")
	id := out[strings.Index(out, "[")+1 : strings.Index(out, "]")]

	mustRun(t, "address", "select", id)
	out = mustRun(t, "address", "current")
	assert.Contains(t, out, id)

	mustRun(t, "address", "delete", id)
	out = mustRun(t, "address", "current")
	assert.Contains(t, out, "No address selected")
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	setupSandbox(t)
	mustRun(t, "register", "--name", "Asha Rao", "--email", "asha@example.com", "--gender", "female", "--mobile", "9123456780")
	mustRun(t, "otp", "request", "9123456780")
	mustRun(t, "otp", "verify", testOTP)

	// Point the api backend at a server that rejects every token.
	reject := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":false,"code":"unauthorized","message":"token expired or invalid"}`))
	}))
	t.Cleanup(reject.Close)
	t.Setenv("ZET_API_BASE_URL", reject.URL+"/api/")

	out, err := run(t, "address", "list")
	require.Error(t, err)
	assert.Contains(t, out, "Session expired")

	out = mustRun(t, "whoami")
	assert.Contains(t, out, "Not logged in")
}

func TestCartAndLocationPersist(t *testing.T) {
	setupSandbox(t)

	mustRun(t, "cart", "add", "cbc", "--name", "Complete Blood Count", "--price", "350")
	mustRun(t, "cart", "add", "cbc", "--name", "Complete Blood Count", "--price", "350")
	mustRun(t, "cart", "add", "lipid", "--name", "Lipid Profile", "--price", "600")
	out := mustRun(t, "cart", "list")
	assert.Contains(t, out, "Items: 3  Total: 1300.00")

	mustRun(t, "cart", "remove", "cbc")
	out = mustRun(t, "cart", "list")
	assert.NotContains(t, out, "cbc")

	mustRun(t, "cart", "clear")
	out = mustRun(t, "cart", "list")
	assert.Contains(t, out, "Cart is empty")

	out = mustRun(t, "location", "show")
	assert.Contains(t, out, "Select Location")

	out = mustRun(t, "location", "set", "mumbai", "Thane")
	assert.Contains(t, out, "Thane, Mumbai")
	out = mustRun(t, "location", "show")
	assert.Contains(t, out, "Thane")

	_, err := run(t, "location", "set", "chennai")
	require.Error(t, err)

	mustRun(t, "location", "clear")
	out = mustRun(t, "location", "show")
	assert.Contains(t, out, "Select Location")
}

func TestFailedCommandStillClosesStorage(t *testing.T) {
	setupSandbox(t)
	mr := miniredis.RunT(t)
	t.Setenv("ZET_STORAGE", config.StorageRedis)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())

	c := newCLI()
	var out bytes.Buffer
	c.root.SetOut(&out)
	c.root.SetErr(&out)
	c.root.SetArgs([]string{"location", "set", "chennai"})
	require.Error(t, c.execute(context.Background()))

	require.NotNil(t, c.app)
	assert.ErrorIs(t, c.app.redis.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestLocationDetect(t *testing.T) {
	setupSandbox(t)
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"Hyderabad","principalSubdivision":"Telangana"}`))
	}))
	t.Cleanup(geo.Close)
	t.Setenv("ZET_GEOCODER_URL", geo.URL)

	out := mustRun(t, "location", "detect", "--lat", "17.38", "--lon", "78.48")
	assert.Contains(t, out, "Detected Hyderabad, Telangana")
	out = mustRun(t, "location", "show")
	assert.Contains(t, out, "Hyderabad")
}
