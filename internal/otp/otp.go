// Package otp issues and verifies one-time login codes for the sandbox
// backend. Only bcrypt hashes of the codes are stored.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Length is the number of digits in a code.
const Length = 6

var (
	// ErrNotFound means no live code exists for the mobile number, either
	// because none was issued or because it expired or was consumed.
	ErrNotFound = errors.New("otp not found or expired")
	// ErrMismatch means the submitted code is wrong.
	ErrMismatch = errors.New("otp mismatch")
	// ErrTooManyAttempts means the code was discarded after repeated misses.
	ErrTooManyAttempts = errors.New("too many invalid otp attempts")
)

// Store keeps one pending code hash per mobile number.
type Store interface {
	Save(ctx context.Context, mobile string, hash []byte, ttl time.Duration) error
	Load(ctx context.Context, mobile string) ([]byte, error)
	// Fail records a wrong guess and returns the number of misses so far.
	Fail(ctx context.Context, mobile string) (int, error)
	Delete(ctx context.Context, mobile string) error
}

// Service issues and checks codes.
type Service struct {
	store       Store
	ttl         time.Duration
	maxAttempts int
	cost        int
	generate    func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithMaxAttempts sets how many wrong guesses burn a code.
func WithMaxAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = n }
}

// WithGenerator replaces the random code source.
func WithGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.generate = fn }
}

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService builds a code service whose codes live for ttl.
func NewService(store Store, ttl time.Duration, opts ...Option) *Service {
	s := &Service{store: store, ttl: ttl, maxAttempts: 5, cost: bcrypt.DefaultCost, generate: randomCode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a code for mobile, replacing any earlier one.
func (s *Service) Issue(ctx context.Context, mobile string) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}
	if err := s.store.Save(ctx, mobile, hash, s.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify checks code against the live code for mobile and consumes it on
// success.
func (s *Service) Verify(ctx context.Context, mobile, code string) error {
	hash, err := s.store.Load(ctx, mobile)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(code)) != nil {
		misses, err := s.store.Fail(ctx, mobile)
		if err != nil {
			return fmt.Errorf("record otp miss: %w", err)
		}
		if s.maxAttempts > 0 && misses >= s.maxAttempts {
			if err := s.store.Delete(ctx, mobile); err != nil {
				return fmt.Errorf("discard otp: %w", err)
			}
			return ErrTooManyAttempts
		}
		return ErrMismatch
	}
	if err := s.store.Delete(ctx, mobile); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", Length, n.Int64()), nil
}
