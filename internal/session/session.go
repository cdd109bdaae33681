// Package session holds the authentication state of the booking client and
// the OTP flow that moves it between anonymous, otp_pending and
// authenticated.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zet-health/zet_booking/internal/storage"
)

// State is the position of a Session in the login flow.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateOTPPending    State = "otp_pending"
	StateAuthenticated State = "authenticated"
)

// UserProfile is owned by the Session and replaced wholesale on login/logout.
type UserProfile struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	Email        string `json:"email,omitempty"`
	Gender       string `json:"gender,omitempty"`
}

// PendingLogin lives between a successful OTP request and its verification.
// The issued OTP itself is never kept client-side; verification happens on
// the server.
type PendingLogin struct {
	MobileNumber string       `json:"mobile_number"`
	UserDetail   *UserProfile `json:"user_detail,omitempty"`
	Token        string       `json:"token,omitempty"`
	IssuedAt     time.Time    `json:"issued_at"`

	generation uint64
}

// Session is the in-memory authentication state.
type Session struct {
	IsAuthenticated bool
	User            *UserProfile
	Token           string
	PendingLogin    *PendingLogin
	Error           string
}

// State derives the flow state. Authenticated wins over a pending login.
func (s Session) State() State {
	switch {
	case s.IsAuthenticated:
		return StateAuthenticated
	case s.PendingLogin != nil:
		return StateOTPPending
	default:
		return StateAnonymous
	}
}

// Store owns the Session and is the only writer of the session storage keys
// (token, user_mobile, loginResponse).
type Store struct {
	mu      sync.RWMutex
	session Session
	storage storage.Storage
	logger  *slog.Logger
}

// NewStore creates an anonymous session backed by st.
func NewStore(st storage.Storage, logger *slog.Logger) *Store {
	return &Store{storage: st, logger: logger}
}

// Snapshot returns a deep copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	if s.session.User != nil {
		u := *s.session.User
		out.User = &u
	}
	if s.session.PendingLogin != nil {
		p := *s.session.PendingLogin
		if p.UserDetail != nil {
			u := *p.UserDetail
			p.UserDetail = &u
		}
		out.PendingLogin = &p
	}
	return out
}

// Token implements apiclient.TokenSource. The token of a stored pending
// login wins over the flat token key.
func (s *Store) Token(ctx context.Context) (string, error) {
	var pending PendingLogin
	err := storage.GetJSON(ctx, s.storage, storage.KeyLoginResponse, &pending)
	switch {
	case err == nil && pending.Token != "":
		return pending.Token, nil
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		s.logger.Warn("stored login response unreadable", slog.Any("error", err))
	}

	token, err := s.storage.Get(ctx, storage.KeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return token, err
}

// ForceLogout drops the credentials after the backend rejected them. It is
// wired as the HTTP client's 401 hook.
func (s *Store) ForceLogout(ctx context.Context) {
	s.mu.Lock()
	s.session.IsAuthenticated = false
	s.session.User = nil
	s.session.Token = ""
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyToken, storage.KeyUserMobile); err != nil {
		s.logger.Error("clear credentials", slog.Any("error", err))
	}
}

func (s *Store) pending() *PendingLogin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.PendingLogin == nil {
		return nil
	}
	p := *s.session.PendingLogin
	return &p
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Error = msg
}

// beginLogin abandons any pending login.
func (s *Store) beginLogin(ctx context.Context) error {
	s.mu.Lock()
	s.session.PendingLogin = nil
	s.session.Error = ""
	s.mu.Unlock()
	return s.storage.Delete(ctx, storage.KeyLoginResponse)
}

func (s *Store) setPending(ctx context.Context, p PendingLogin) error {
	if err := storage.SetJSON(ctx, s.storage, storage.KeyLoginResponse, p); err != nil {
		return fmt.Errorf("persist pending login: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.PendingLogin = &p
	s.session.Error = ""
	return nil
}

func (s *Store) authenticate(ctx context.Context, user *UserProfile, token string) error {
	if err := s.storage.Set(ctx, storage.KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if user.MobileNumber != "" {
		if err := s.storage.Set(ctx, storage.KeyUserMobile, user.MobileNumber); err != nil {
			return fmt.Errorf("persist mobile: %w", err)
		}
	}
	if err := s.storage.Delete(ctx, storage.KeyLoginResponse); err != nil {
		return fmt.Errorf("clear pending login: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{IsAuthenticated: true, User: user, Token: token}
	return nil
}

func (s *Store) setUser(user *UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.User = user
}

// reset returns to the fully anonymous state regardless of storage errors.
func (s *Store) reset(ctx context.Context) error {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()
	return s.storage.Delete(ctx, storage.KeyToken, storage.KeyUserMobile, storage.KeyLoginResponse)
}

// hydrate rebuilds the session from durable storage. Both token and mobile
// number are required to count as authenticated. The profile carries only
// the mobile number until FetchProfile fills it in.
func (s *Store) hydrate(ctx context.Context) (*PendingLogin, error) {
	token, err := s.get(ctx, storage.KeyToken)
	if err != nil {
		return nil, err
	}
	mobile, err := s.get(ctx, storage.KeyUserMobile)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != "" && mobile != "" {
		s.session.IsAuthenticated = true
		s.session.Token = token
		s.session.User = &UserProfile{MobileNumber: mobile}
		return nil, nil
	}

	var pending PendingLogin
	err = storage.GetJSON(ctx, s.storage, storage.KeyLoginResponse, &pending)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	case err != nil:
		s.logger.Warn("discarding unreadable pending login", slog.Any("error", err))
		return nil, nil
	case pending.MobileNumber == "":
		return nil, nil
	}
	s.session.PendingLogin = &pending
	p := pending
	return &p, nil
}

func (s *Store) restoreGeneration(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.PendingLogin != nil {
		s.session.PendingLogin.generation = gen
	}
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}
