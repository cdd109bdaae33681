package apiclient

import (
	"encoding/json"
	"strings"
)

// UserTypeUser is the only user type the consumer app logs in as.
const UserTypeUser = "User"

// FlexString accepts a JSON string or number. The backend is inconsistent
// about quoting numeric fields such as OTPs and ids.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// UserDetail is the user profile as returned by the backend.
type UserDetail struct {
	ID           FlexString `json:"id,omitempty"`
	Name         string     `json:"user_name"`
	MobileNumber string     `json:"user_mobile"`
	Email        string     `json:"user_email,omitempty"`
	Gender       string     `json:"user_gender,omitempty"`
}

// UnmarshalJSON accepts both the user_* field names and the short aliases
// (name, mobile_number, email, gender) seen across backend versions.
func (u *UserDetail) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID           FlexString `json:"id"`
		UserName     string     `json:"user_name"`
		Name         string     `json:"name"`
		UserMobile   string     `json:"user_mobile"`
		MobileNumber string     `json:"mobile_number"`
		UserEmail    string     `json:"user_email"`
		Email        string     `json:"email"`
		UserGender   string     `json:"user_gender"`
		Gender       string     `json:"gender"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = UserDetail{
		ID:           aux.ID,
		Name:         firstNonEmpty(aux.UserName, aux.Name),
		MobileNumber: firstNonEmpty(aux.UserMobile, aux.MobileNumber),
		Email:        firstNonEmpty(aux.UserEmail, aux.Email),
		Gender:       firstNonEmpty(aux.UserGender, aux.Gender),
	}
	return nil
}

// SendOTPRequest asks the backend to issue an OTP.
type SendOTPRequest struct {
	MobileNumber string `json:"mobile_number"`
	UserType     string `json:"user_type"`
}

// VerifyOTPRequest submits the OTP the user entered.
type VerifyOTPRequest struct {
	MobileNumber string `json:"mobile_number"`
	OTP          string `json:"otp"`
	UserType     string `json:"user_type"`
}

// LoginResponse is returned by both send-OTP and verify-OTP.
type LoginResponse struct {
	Status     bool        `json:"status"`
	Message    string      `json:"message,omitempty"`
	Token      string      `json:"token,omitempty"`
	UserDetail *UserDetail `json:"user_detail,omitempty"`
	LastOTP    FlexString  `json:"last_otp,omitempty"`
}

// RegisterRequest creates a user account.
type RegisterRequest struct {
	UserName     string `json:"user_name" validate:"required"`
	UserEmail    string `json:"user_email" validate:"required,email"`
	UserGender   string `json:"user_gender" validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required,len=10,numeric"`
	DeviceID     string `json:"device_id"`
}

// StatusResponse is the bare backend envelope.
type StatusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

// ProfileResponse wraps the current user's profile.
type ProfileResponse struct {
	Status     bool        `json:"status"`
	Message    string      `json:"message,omitempty"`
	UserDetail *UserDetail `json:"user_detail,omitempty"`
}

// Address is a saved collection address.
type Address struct {
	ID          FlexString `json:"id"`
	Address     string     `json:"address" validate:"required"`
	HouseNo     string     `json:"house_no"`
	Landmark    string     `json:"landmark"`
	Location    string     `json:"location" validate:"required"`
	Pincode     string     `json:"pincode" validate:"required,len=6,numeric"`
	City        string     `json:"city" validate:"required"`
	State       string     `json:"state"`
	Latitude    string     `json:"latitude"`
	Longitude   string     `json:"longitude"`
	AddressType string     `json:"address_type"`
}

// AddressListResponse wraps the saved addresses.
type AddressListResponse struct {
	Status      bool      `json:"status"`
	Message     string    `json:"message,omitempty"`
	AddressList []Address `json:"address_list"`
}

type deleteAddressRequest struct {
	AddressID string `json:"address_id"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// String returns the underlying string.
func (f FlexString) String() string { return string(f) }
