// Package savedaddress stores the collection addresses of sandbox users.
package savedaddress

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service validates and stores addresses.
type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds an address service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New(), now: time.Now}
}

// Save adds a new address when in.ID is empty or NewID, and edits the
// user's existing address otherwise. Editing an unknown id, or another
// user's address, yields ErrNotFound.
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) (Address, error) {
	in.Line = strings.TrimSpace(in.Line)
	in.Location = strings.TrimSpace(in.Location)
	in.Pincode = strings.TrimSpace(in.Pincode)
	in.City = strings.TrimSpace(in.City)
	if err := s.validate.Struct(in); err != nil {
		return Address{}, err
	}

	id := strings.TrimSpace(in.ID)
	insert := id == "" || id == NewID
	if insert {
		id = uuid.NewString()
	}
	addr := Address{
		ID:          id,
		UserID:      userID,
		Line:        in.Line,
		HouseNo:     strings.TrimSpace(in.HouseNo),
		Landmark:    strings.TrimSpace(in.Landmark),
		Location:    in.Location,
		Pincode:     in.Pincode,
		City:        in.City,
		State:       strings.TrimSpace(in.State),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		AddressType: in.AddressType,
		CreatedAt:   s.now().UTC(),
	}
	save := s.repo.Update
	if insert {
		save = s.repo.Insert
	}
	if err := save(ctx, addr); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// List returns the user's addresses.
func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.List(ctx, userID)
}

// Delete removes one of the user's addresses.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, strings.TrimSpace(id))
}
