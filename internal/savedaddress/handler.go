package savedaddress

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/zet-health/zet_booking/internal/apierror"
	"github.com/zet-health/zet_booking/internal/auth"
)

// Handler exposes the address endpoints of the api backend.
type Handler struct {
	service *Service
}

// NewHandler builds an address HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addressBody struct {
	ID          string `json:"id"`
	Address     string `json:"address"`
	HouseNo     string `json:"house_no"`
	Landmark    string `json:"landmark"`
	Location    string `json:"location"`
	Pincode     string `json:"pincode"`
	City        string `json:"city"`
	State       string `json:"state"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	AddressType string `json:"address_type"`
}

var invalidField = map[string]string{
	"Line":     "Please enter complete address",
	"Location": "Please enter area",
	"Pincode":  "Please enter valid 6-digit pincode",
	"City":     "Please select city",
}

// List serves get-address-list.
func (h *Handler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	out := make([]addressBody, 0, len(list))
	for _, a := range list {
		out = append(out, bodyOf(a))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": true, "address_list": out})
}

// Add serves add-address.
func (h *Handler) Add(c *fiber.Ctx) error {
	var req addressBody
	if err := c.BodyParser(&req); err != nil {
		return apierror.ErrValidation.WithMessage(err.Error())
	}
	addr, err := h.service.Save(c.UserContext(), userID(c), SaveInput{
		ID:          req.ID,
		Line:        req.Address,
		HouseNo:     req.HouseNo,
		Landmark:    req.Landmark,
		Location:    req.Location,
		Pincode:     req.Pincode,
		City:        req.City,
		State:       req.State,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		AddressType: req.AddressType,
	})
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		msg := invalidField[verrs[0].Field()]
		if msg == "" {
			msg = "Invalid " + strings.ToLower(verrs[0].Field())
		}
		return apierror.ErrValidation.WithMessage(msg)
	case errors.Is(err, ErrNotFound):
		return apierror.ErrNotFound.WithMessage("Address not found")
	case err != nil:
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":  true,
		"message": "Address saved successfully",
		"address": bodyOf(addr),
	})
}

type deleteRequest struct {
	AddressID string `json:"address_id"`
}

// Delete serves address-delete.
func (h *Handler) Delete(c *fiber.Ctx) error {
	var req deleteRequest
	if err := c.BodyParser(&req); err != nil {
		return apierror.ErrValidation.WithMessage(err.Error())
	}
	if strings.TrimSpace(req.AddressID) == "" {
		return apierror.ErrValidation.WithMessage("address_id is required")
	}
	err := h.service.Delete(c.UserContext(), userID(c), req.AddressID)
	if errors.Is(err, ErrNotFound) {
		return apierror.ErrNotFound.WithMessage("Address not found")
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": true, "message": "Address deleted successfully"})
}

func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals(auth.LocalsUserID).(string)
	return uid
}

func bodyOf(a Address) addressBody {
	return addressBody{
		ID:          a.ID,
		Address:     a.Line,
		HouseNo:     a.HouseNo,
		Landmark:    a.Landmark,
		Location:    a.Location,
		Pincode:     a.Pincode,
		City:        a.City,
		State:       a.State,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		AddressType: a.AddressType,
	}
}
