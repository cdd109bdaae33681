// Package auth issues and checks the sandbox's bearer tokens and serves the
// OTP login endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zet-health/zet_booking/internal/identity"
)

var ErrTokenInvalidated = errors.New("token invalidated")

// Claims are carried by every access token. Version must match the user's
// current token version, which logout bumps.
type Claims struct {
	Mobile  string `json:"mobile"`
	Version int    `json:"ver"`
	jwt.RegisteredClaims
}

// Service signs and validates access tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	users  identity.Repository
	now    func() time.Time
}

// NewService creates a token service.
func NewService(secret string, ttl time.Duration, users identity.Repository) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, users: users, now: time.Now}
}

// Issue signs an access token for user.
func (s *Service) Issue(user identity.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := &Claims{
		Mobile:  user.Mobile,
		Version: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Authenticate parses a bearer token and returns its user, rejecting
// tokens issued before the user's last logout.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return identity.User{}, err
	}
	if !parsed.Valid {
		return identity.User{}, jwt.ErrTokenInvalidClaims
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return identity.User{}, err
	}
	if user.TokenVersion != claims.Version {
		return identity.User{}, ErrTokenInvalidated
	}
	return user, nil
}

// Logout increments the token version so every outstanding token for the
// user stops working.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1)
}
