package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/zet-health/zet_booking/internal/apiclient"
	"github.com/zet-health/zet_booking/internal/notification"
)

// ResendCooldown is how long the user waits before another OTP may be sent.
const ResendCooldown = 30 * time.Second

// AuthAPI is the subset of the HTTP adapter the login flow needs.
type AuthAPI interface {
	SendOTP(ctx context.Context, req apiclient.SendOTPRequest) (*apiclient.LoginResponse, error)
	VerifyOTP(ctx context.Context, req apiclient.VerifyOTPRequest) (*apiclient.LoginResponse, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.StatusResponse, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (*apiclient.UserDetail, error)
}

// Controller drives the two-phase OTP login against a Store.
//
// Every OTP request bumps a generation counter. A send or verify response is
// only applied if no newer request (or logout) started while it was in
// flight, so a stale response can never overwrite a newer pending login.
type Controller struct {
	store    *Store
	api      AuthAPI
	notifier notification.Notifier
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time

	mu         sync.Mutex
	generation uint64
	lastSent   time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock overrides time.Now, for tests of the resend countdown.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithNotifier sets where toasts are published.
func WithNotifier(n notification.Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

// NewController wires the flow to its store and backend.
func NewController(store *Store, api AuthAPI, logger *slog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:    store,
		api:      api,
		notifier: notification.Nop{},
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() Session {
	return c.store.Snapshot()
}

// InitializeAuth hydrates the session from durable storage. It runs once at
// process start.
func (c *Controller) InitializeAuth(ctx context.Context) error {
	pending, err := c.store.hydrate(ctx)
	if err != nil {
		return err
	}
	if pending != nil {
		c.mu.Lock()
		c.generation++
		c.store.restoreGeneration(c.generation)
		c.lastSent = pending.IssuedAt
		c.mu.Unlock()
	}
	return nil
}

// RequestOTP validates the mobile number and asks the backend for an OTP.
// On success the session moves to otp_pending.
func (c *Controller) RequestOTP(ctx context.Context, mobile string) error {
	return c.requestOTP(ctx, mobile, "OTP sent")
}

// ResendOTP issues a fresh OTP once the cooldown has elapsed. An empty mobile
// number reuses the pending login's number.
func (c *Controller) ResendOTP(ctx context.Context, mobile string) error {
	if mobile == "" {
		pending := c.store.pending()
		if pending == nil {
			return ErrNoPendingLogin
		}
		mobile = pending.MobileNumber
	}
	if wait := c.ResendAvailableIn(); wait > 0 {
		return fmt.Errorf("%w: retry in %ds", ErrResendCooldown, wait)
	}
	return c.requestOTP(ctx, mobile, "OTP resent!")
}

// ResendAvailableIn reports the whole seconds left on the resend countdown.
func (c *Controller) ResendAvailableIn() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastSent.IsZero() {
		return 0
	}
	left := ResendCooldown - c.now().Sub(c.lastSent)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

func (c *Controller) requestOTP(ctx context.Context, mobile, toast string) error {
	if !ValidMobile(mobile) {
		c.store.setError(ErrInvalidMobile.Error())
		return ErrInvalidMobile
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	err := c.store.beginLogin(ctx)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reset pending login: %w", err)
	}

	resp, err := c.api.SendOTP(ctx, apiclient.SendOTPRequest{MobileNumber: mobile, UserType: apiclient.UserTypeUser})
	if err := c.applySent(ctx, gen, mobile, resp, err); err != nil {
		if !errors.Is(err, ErrSuperseded) {
			c.notify(ctx, notification.LevelError, c.store.Snapshot().Error)
		}
		return err
	}
	c.logger.Info("otp requested", slog.String("mobile", maskMobile(mobile)))
	c.notify(ctx, notification.LevelSuccess, toast)
	return nil
}

// applySent records the outcome of a send-OTP call unless a newer request
// has started since.
func (c *Controller) applySent(ctx context.Context, gen uint64, mobile string, resp *apiclient.LoginResponse, sendErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("discarding stale otp response", slog.Uint64("generation", gen))
		return ErrSuperseded
	}
	if sendErr != nil {
		c.store.setError(sendErr.Error())
		return fmt.Errorf("send otp: %w", sendErr)
	}

	now := c.now()
	pending := PendingLogin{
		MobileNumber: mobile,
		UserDetail:   profileFrom(resp.UserDetail),
		Token:        resp.Token,
		IssuedAt:     now,
		generation:   gen,
	}
	if err := c.store.setPending(ctx, pending); err != nil {
		c.store.setError(err.Error())
		return err
	}
	c.lastSent = now
	return nil
}

// VerifyOTP submits the entered OTP for the pending login. On success the
// session is authenticated and the token and mobile number are persisted.
func (c *Controller) VerifyOTP(ctx context.Context, otp string) error {
	pending := c.store.pending()
	if pending == nil {
		c.store.setError("No login response found. Please login first.")
		return ErrNoPendingLogin
	}
	if !ValidOTP(otp) {
		c.store.setError(ErrIncompleteOTP.Error())
		return ErrIncompleteOTP
	}

	resp, err := c.api.VerifyOTP(ctx, apiclient.VerifyOTPRequest{
		MobileNumber: pending.MobileNumber,
		OTP:          otp,
		UserType:     apiclient.UserTypeUser,
	})
	user, err := c.applyVerified(ctx, pending, resp, err)
	if err != nil {
		if !errors.Is(err, ErrSuperseded) {
			c.notify(ctx, notification.LevelError, c.store.Snapshot().Error)
		}
		return err
	}
	c.logger.Info("otp verified", slog.String("mobile", maskMobile(user.MobileNumber)))
	c.notify(ctx, notification.LevelSuccess, "OTP Verified!")
	return nil
}

func (c *Controller) applyVerified(ctx context.Context, pending *PendingLogin, resp *apiclient.LoginResponse, verifyErr error) (*UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pending.generation != c.generation {
		return nil, ErrSuperseded
	}
	if verifyErr != nil {
		if apiclient.IsKind(verifyErr, apiclient.KindInvalidOTP) {
			c.store.setError(msgInvalidOTP)
			return nil, fmt.Errorf("%w: %w", ErrInvalidOTP, verifyErr)
		}
		c.store.setError(verifyErr.Error())
		return nil, fmt.Errorf("verify otp: %w", verifyErr)
	}

	user := profileFrom(resp.UserDetail)
	if user == nil && pending.UserDetail != nil {
		u := *pending.UserDetail
		user = &u
	}
	if user == nil {
		user = &UserProfile{}
	}
	if user.MobileNumber == "" {
		user.MobileNumber = pending.MobileNumber
	}
	token := resp.Token
	if token == "" {
		token = pending.Token
	}
	if token == "" {
		c.store.setError(ErrInvalidResponse.Error())
		return nil, ErrInvalidResponse
	}

	if err := c.store.authenticate(ctx, user, token); err != nil {
		c.store.setError(err.Error())
		return nil, err
	}
	c.lastSent = time.Time{}
	return user, nil
}

// Register creates an account. The caller follows up with RequestOTP; an
// apiclient.KindAlreadyRegistered error means the user should log in instead.
func (c *Controller) Register(ctx context.Context, in RegisterInput) error {
	req := apiclient.RegisterRequest{
		UserName:     in.Name,
		UserEmail:    in.Email,
		UserGender:   in.Gender,
		MobileNumber: in.Mobile,
		DeviceID:     in.DeviceID,
	}
	if req.DeviceID == "" {
		req.DeviceID = uuid.NewString()
	}
	if err := validateRegister(c.validate, req); err != nil {
		c.store.setError(err.Error())
		return err
	}

	if _, err := c.api.Register(ctx, req); err != nil {
		c.store.setError(err.Error())
		c.notify(ctx, notification.LevelError, err.Error())
		return fmt.Errorf("register: %w", err)
	}
	c.store.setError("")
	c.notify(ctx, notification.LevelSuccess, "Registration Successful!")
	return nil
}

// FetchProfile loads the user profile, completing a session restored by
// InitializeAuth.
func (c *Controller) FetchProfile(ctx context.Context) (*UserProfile, error) {
	if !c.store.Snapshot().IsAuthenticated {
		return nil, ErrNotAuthenticated
	}
	detail, err := c.api.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	user := profileFrom(detail)
	c.store.setUser(user)
	u := *user
	return &u, nil
}

// Logout tells the backend (best effort) and then clears the session and
// its storage keys unconditionally.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.api.Logout(ctx); err != nil {
		c.logger.Warn("server logout failed", slog.Any("error", err))
	}

	c.mu.Lock()
	c.generation++
	c.lastSent = time.Time{}
	err := c.store.reset(ctx)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	c.notify(ctx, notification.LevelInfo, "Logged out")
	return nil
}

func (c *Controller) notify(ctx context.Context, level, text string) {
	if err := c.notifier.Send(ctx, notification.Toast{Level: level, Text: text}); err != nil {
		c.logger.Warn("toast delivery failed", slog.Any("error", err))
	}
}

func profileFrom(d *apiclient.UserDetail) *UserProfile {
	if d == nil {
		return nil
	}
	return &UserProfile{Name: d.Name, MobileNumber: d.MobileNumber, Email: d.Email, Gender: d.Gender}
}

func maskMobile(m string) string {
	if len(m) < 4 {
		return "****"
	}
	return "******" + m[len(m)-4:]
}

// IsNotRegistered reports whether err means the mobile number has no account.
func IsNotRegistered(err error) bool {
	return apiclient.IsKind(err, apiclient.KindNotRegistered)
}

// IsAlreadyRegistered reports whether a registration failed because the
// number already has an account.
func IsAlreadyRegistered(err error) bool {
	return apiclient.IsKind(err, apiclient.KindAlreadyRegistered)
}
