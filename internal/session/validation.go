package session

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/zet-health/zet_booking/internal/apiclient"
)

var (
	mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	otpPattern    = regexp.MustCompile(`^[0-9]{6}$`)
)

// OTPLength is the number of digits in an OTP.
const OTPLength = 6

// ValidMobile reports whether s is exactly 10 digits with the first in 6-9.
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// ValidOTP reports whether s is a complete 6-digit OTP.
func ValidOTP(s string) bool {
	return otpPattern.MatchString(s)
}

// RegisterInput is what the registration form collects.
type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Gender   string
	DeviceID string
}

// ValidationError names the first offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var registerMessages = map[string]map[string]string{
	"UserName":     {"required": "Please enter name"},
	"UserEmail":    {"required": "Please enter email", "email": "Please enter valid email"},
	"MobileNumber": {"required": "Please enter mobile number"},
	"UserGender":   {"required": "Please select gender"},
}

func validateRegister(v *validator.Validate, req apiclient.RegisterRequest) error {
	err := v.Struct(req)
	if err == nil {
		if !ValidMobile(req.MobileNumber) {
			return &ValidationError{Field: "mobile_number", Message: "Please enter valid mobile number"}
		}
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate registration: %w", err)
	}
	fe := fieldErrs[0]
	msg := registerMessages[fe.Field()][fe.Tag()]
	if msg == "" {
		msg = fmt.Sprintf("Please enter valid %s", fe.Field())
		if fe.Field() == "MobileNumber" {
			msg = "Please enter valid mobile number"
		}
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
