package session

import "errors"

var (
	// ErrInvalidMobile is returned before any network call when the number
	// is not 10 digits starting with 6-9.
	ErrInvalidMobile = errors.New("please enter a valid 10-digit mobile number")

	// ErrIncompleteOTP is returned when the entered OTP is not 6 digits.
	ErrIncompleteOTP = errors.New("please enter complete OTP")

	// ErrNoPendingLogin is returned by VerifyOTP and ResendOTP without a
	// preceding successful OTP request.
	ErrNoPendingLogin = errors.New("no pending login, please login first")

	// ErrInvalidOTP is returned when the backend rejects the entered OTP.
	ErrInvalidOTP = errors.New("invalid OTP")

	// ErrSuperseded is returned when a newer login attempt (or a logout)
	// started while this call was in flight; its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer login attempt")

	// ErrResendCooldown is returned while the resend countdown is running.
	ErrResendCooldown = errors.New("OTP resend not yet available")

	// ErrNotAuthenticated is returned by calls that need a logged-in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidResponse is returned when verification succeeds without a token.
	ErrInvalidResponse = errors.New("OTP verification failed - invalid response")
)

// Messages stored in Session.Error.
const (
	msgInvalidOTP = "Invalid OTP"
)
