// Package apiclient is the HTTP adapter for the booking backends. It attaches
// the bearer token to every request and turns a 401 into a forced logout.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zet-health/zet_booking/internal/logging"
	"github.com/zet-health/zet_booking/internal/navigation"
)

const (
	// DefaultTimeout bounds every request. There is no retry policy.
	DefaultTimeout = 30 * time.Second

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerIdempotency   = "Idempotency-Key"
	contentTypeJSON     = "application/json"
)

// TokenSource supplies the bearer token for outgoing requests. An empty token
// means the request is sent without credentials.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// UnauthorizedHandler is invoked when any call receives HTTP 401.
type UnauthorizedHandler func(ctx context.Context)

// Endpoints holds the relative paths of every backend call.
type Endpoints struct {
	SendOTP       string
	VerifyOTP     string
	Register      string
	Logout        string
	Profile       string
	AddressList   string
	AddAddress    string
	DeleteAddress string
}

// DefaultEndpoints follows the production contract, where login-user both
// issues and verifies OTPs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		SendOTP:       "login-user",
		VerifyOTP:     "login-user",
		Register:      "register-user",
		Logout:        "common/logout-user",
		Profile:       "common/get-profile",
		AddressList:   "get-address-list",
		AddAddress:    "add-address",
		DeleteAddress: "address-delete",
	}
}

// Client talks to the auth and api backends.
type Client struct {
	httpClient     *http.Client
	authBaseURL    string
	apiBaseURL     string
	endpoints      Endpoints
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	navigator      navigation.Navigator
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithEndpoints overrides the endpoint paths.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.endpoints = e }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler sets the hook run on HTTP 401.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// WithNavigator lets the client redirect to the login route on HTTP 401.
func WithNavigator(n navigation.Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the given auth and api base URLs.
func New(authBaseURL, apiBaseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		authBaseURL: authBaseURL,
		apiBaseURL:  apiBaseURL,
		endpoints:   DefaultEndpoints(),
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendOTP asks the auth backend to issue an OTP for the mobile number.
func (c *Client) SendOTP(ctx context.Context, req SendOTPRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.post(ctx, c.authBaseURL, c.endpoints.SendOTP, req, &resp, "Failed to send OTP"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyOTP submits the entered OTP for server-side verification.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.post(ctx, c.authBaseURL, c.endpoints.VerifyOTP, req, &resp, "Invalid OTP"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, c.authBaseURL, c.endpoints.Register, req, &resp, "Registration failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	var resp StatusResponse
	return c.post(ctx, c.authBaseURL, c.endpoints.Logout, nil, &resp, "Logout failed")
}

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (*UserDetail, error) {
	var resp ProfileResponse
	if err := c.get(ctx, c.authBaseURL, c.endpoints.Profile, &resp, "Error fetching profile"); err != nil {
		return nil, err
	}
	if resp.UserDetail == nil {
		return nil, &Error{Kind: KindServer, StatusCode: http.StatusOK, Message: "profile missing from response"}
	}
	return resp.UserDetail, nil
}

// ListAddresses returns the saved addresses of the current user.
func (c *Client) ListAddresses(ctx context.Context) ([]Address, error) {
	var resp AddressListResponse
	if err := c.get(ctx, c.apiBaseURL, c.endpoints.AddressList, &resp, "Failed to load addresses"); err != nil {
		return nil, err
	}
	return resp.AddressList, nil
}

// AddAddress saves a new address. The backend expects id "0" for inserts.
// Each call carries a fresh Idempotency-Key so a replayed request is not
// stored twice.
func (c *Client) AddAddress(ctx context.Context, addr Address) error {
	if addr.ID == "" {
		addr.ID = "0"
	}
	var resp StatusResponse
	return c.post(ctx, c.apiBaseURL, c.endpoints.AddAddress, addr, &resp, "Failed to add address",
		withHeader(headerIdempotency, uuid.NewString()))
}

// DeleteAddress removes a saved address.
func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	var resp StatusResponse
	return c.post(ctx, c.apiBaseURL, c.endpoints.DeleteAddress, deleteAddressRequest{AddressID: id}, &resp, "Failed to delete address")
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (c *Client) get(ctx context.Context, base, path string, result any, fallback string) error {
	return c.doRequest(ctx, http.MethodGet, base, path, nil, result, fallback)
}

func (c *Client) post(ctx context.Context, base, path string, body, result any, fallback string, opts ...requestOption) error {
	return c.doRequest(ctx, http.MethodPost, base, path, body, result, fallback, opts...)
}

func (c *Client) doRequest(ctx context.Context, method, base, path string, body, result any, fallback string, opts ...requestOption) error {
	reqURL, err := joinURL(base, path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAccept, contentTypeJSON)
	c.attachToken(ctx, req)
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", slog.String("method", method), slog.String("url", reqURL), slog.Any("error", err))
		return &Error{Kind: KindNetwork, Message: NetworkErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: NetworkErrorMessage, Err: err}
	}
	c.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("url", reqURL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
	}
	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, respBody)
	}

	var eb errorBody
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &eb); err != nil {
			return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
		}
	}
	if eb.Status != nil && !*eb.Status {
		return rejected(resp.StatusCode, eb, fallback)
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
		}
	}
	return nil
}

func (c *Client) attachToken(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn("token lookup failed", slog.Any("error", err))
		return
	}
	if token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}
}

// handleUnauthorized clears the session and sends the user to the login
// route, except while a booking is in progress.
func (c *Client) handleUnauthorized(ctx context.Context) {
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	if c.navigator == nil {
		return
	}
	if c.navigator.CurrentPath() == navigation.RouteBooking {
		c.logger.Info("unauthorized during booking, redirect suppressed")
		return
	}
	c.navigator.Navigate(navigation.RouteLogin)
}

func joinURL(base, path string) (string, error) {
	if base == "" {
		return "", errors.New("base url is required")
	}
	rel, query, _ := strings.Cut(path, "?")
	joined, err := url.JoinPath(base, rel)
	if err != nil {
		return "", err
	}
	if query != "" {
		joined += "?" + query
	}
	return joined, nil
}
