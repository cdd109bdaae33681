package savedaddress

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an address does not exist or belongs to
// another user.
var ErrNotFound = errors.New("address not found")

// NewID is the id clients send when adding an address rather than editing one.
const NewID = "0"

// Address is a collection address saved by a user.
type Address struct {
	ID          string
	UserID      string
	Line        string
	HouseNo     string
	Landmark    string
	Location    string
	Pincode     string
	City        string
	State       string
	Latitude    string
	Longitude   string
	AddressType string
	CreatedAt   time.Time
}

// SaveInput is the add-address payload.
type SaveInput struct {
	ID          string
	Line        string `validate:"required"`
	HouseNo     string
	Landmark    string
	Location    string `validate:"required"`
	Pincode     string `validate:"required,len=6,numeric"`
	City        string `validate:"required"`
	State       string
	Latitude    string
	Longitude   string
	AddressType string
}
