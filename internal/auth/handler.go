package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/zet-health/zet_booking/internal/apierror"
	"github.com/zet-health/zet_booking/internal/identity"
	"github.com/zet-health/zet_booking/internal/notification"
	"github.com/zet-health/zet_booking/internal/otp"
)

// LocalsUserID is the fiber.Ctx locals key holding the authenticated user id.
const LocalsUserID = "user_id"

// Handler exposes the login, registration, logout and profile endpoints.
type Handler struct {
	ids       *identity.Service
	otps      *otp.Service
	tokens    *Service
	sms       notification.Notifier
	exposeOTP bool
	logger    *slog.Logger
}

// NewHandler wires the auth endpoints. Issued codes are delivered to the
// user's mobile number through sms. When exposeOTP is set the code is also
// echoed as last_otp, for local development only.
func NewHandler(ids *identity.Service, otps *otp.Service, tokens *Service, sms notification.Notifier, exposeOTP bool, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, otps: otps, tokens: tokens, sms: sms, exposeOTP: exposeOTP, logger: logger}
}

type loginRequest struct {
	MobileNumber string `json:"mobile_number"`
	OTP          string `json:"otp"`
	UserType     string `json:"user_type"`
}

type userDetail struct {
	ID     string `json:"id"`
	Name   string `json:"user_name"`
	Mobile string `json:"user_mobile"`
	Email  string `json:"user_email"`
	Gender string `json:"user_gender"`
}

type loginResponse struct {
	Status     bool        `json:"status"`
	Message    string      `json:"message"`
	Token      string      `json:"token,omitempty"`
	ExpiresAt  int64       `json:"expires_at,omitempty"`
	UserDetail *userDetail `json:"user_detail,omitempty"`
	LastOTP    string      `json:"last_otp,omitempty"`
}

// Login serves login-user. Without an otp it issues a code for the mobile
// number; with one it verifies the code and returns a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apierror.ErrValidation.WithMessage(err.Error())
	}
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)
	if !identity.ValidMobile(req.MobileNumber) {
		return apierror.ErrValidation.WithMessage("Please enter a valid 10-digit mobile number")
	}

	user, err := h.ids.Lookup(c.UserContext(), req.MobileNumber)
	if errors.Is(err, identity.ErrNotFound) {
		return apierror.ErrNotRegistered
	}
	if err != nil {
		return err
	}

	if req.OTP == "" {
		return h.sendOTP(c, user)
	}
	return h.verifyOTP(c, user, strings.TrimSpace(req.OTP))
}

func (h *Handler) sendOTP(c *fiber.Ctx, user identity.User) error {
	code, err := h.otps.Issue(c.UserContext(), user.Mobile)
	if err != nil {
		return err
	}
	err = h.sms.Send(c.UserContext(), notification.Toast{
		Level: notification.LevelInfo,
		Text:  "Your Zet Health login OTP is " + code,
		To:    user.Mobile,
	})
	if err != nil {
		h.logger.Error("otp delivery failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return apierror.ErrInternal.WithMessage("Failed to send OTP")
	}
	h.logger.Info("otp issued", slog.String("user_id", user.ID))

	resp := loginResponse{Status: true, Message: "OTP sent successfully", UserDetail: detailOf(user)}
	if h.exposeOTP {
		resp.LastOTP = code
	}
	return c.Status(http.StatusOK).JSON(resp)
}

func (h *Handler) verifyOTP(c *fiber.Ctx, user identity.User, code string) error {
	err := h.otps.Verify(c.UserContext(), user.Mobile, code)
	switch {
	case errors.Is(err, otp.ErrMismatch), errors.Is(err, otp.ErrNotFound):
		return apierror.ErrInvalidOTP
	case errors.Is(err, otp.ErrTooManyAttempts):
		return apierror.ErrInvalidOTP.WithMessage("Too many invalid attempts. Please request a new OTP.")
	case err != nil:
		return err
	}

	token, exp, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	if err := h.ids.RecordLogin(c.UserContext(), user.ID); err != nil {
		h.logger.Warn("record login failed", slog.String("user_id", user.ID), slog.Any("error", err))
	}
	h.logger.Info("otp verified", slog.String("user_id", user.ID))
	return c.Status(http.StatusOK).JSON(loginResponse{
		Status:     true,
		Message:    "Login successful",
		Token:      token,
		ExpiresAt:  exp.Unix(),
		UserDetail: detailOf(user),
	})
}

type registerRequest struct {
	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	UserGender   string `json:"user_gender"`
	MobileNumber string `json:"mobile_number"`
	DeviceID     string `json:"device_id"`
}

// Register serves register-user.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apierror.ErrValidation.WithMessage(err.Error())
	}
	user, err := h.ids.Register(c.UserContext(), identity.RegisterInput{
		Name:     req.UserName,
		Email:    req.UserEmail,
		Mobile:   req.MobileNumber,
		Gender:   req.UserGender,
		DeviceID: req.DeviceID,
	})
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, identity.ErrAlreadyRegistered):
		return apierror.ErrAlreadyRegistered
	case errors.Is(err, identity.ErrInvalidMobile):
		return apierror.ErrValidation.WithMessage("Please enter valid mobile number")
	case errors.As(err, &verrs) && len(verrs) > 0:
		return apierror.ErrValidation.WithMessage("Invalid " + strings.ToLower(verrs[0].Field()))
	case err != nil:
		return err
	}

	h.logger.Info("user registered", slog.String("user_id", user.ID))
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":      true,
		"message":     "Registration successful",
		"user_detail": detailOf(user),
	})
}

// Logout serves common/logout-user by invalidating every token of the caller.
func (h *Handler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals(LocalsUserID).(string)
	if uid == "" {
		return apierror.ErrUnauthorized
	}
	if err := h.tokens.Logout(c.UserContext(), uid); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": true, "message": "Logged out successfully"})
}

// Profile serves common/get-profile.
func (h *Handler) Profile(c *fiber.Ctx) error {
	uid, _ := c.Locals(LocalsUserID).(string)
	user, err := h.ids.Get(c.UserContext(), uid)
	if err != nil {
		return apierror.ErrUnauthorized
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": true, "user_detail": detailOf(user)})
}

func detailOf(u identity.User) *userDetail {
	return &userDetail{ID: u.ID, Name: u.Name, Mobile: u.Mobile, Email: u.Email, Gender: u.Gender}
}
