package identity

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// ValidMobile reports whether mobile is a 10-digit number starting with 6-9.
func ValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

// Service manages the user lifecycle.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Register creates a user. A mobile number that already has an account
// yields ErrAlreadyRegistered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	if err := s.validate.Struct(in); err != nil {
		return User{}, err
	}
	if !ValidMobile(in.Mobile) {
		return User{}, ErrInvalidMobile
	}

	if _, err := s.repo.FindByMobile(ctx, in.Mobile); err == nil {
		return User{}, ErrAlreadyRegistered
	}

	user := User{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Mobile:    in.Mobile,
		Email:     in.Email,
		Gender:    strings.ToLower(in.Gender),
		DeviceID:  in.DeviceID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Lookup returns the user registered under mobile.
func (s *Service) Lookup(ctx context.Context, mobile string) (User, error) {
	return s.repo.FindByMobile(ctx, strings.TrimSpace(mobile))
}

// Get returns the user with id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// RecordLogin stamps the user's last login time.
func (s *Service) RecordLogin(ctx context.Context, id string) error {
	return s.repo.TouchLogin(ctx, id, time.Now())
}
