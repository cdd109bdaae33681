package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHandlerRendersEnvelope(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "api error", err: ErrNotRegistered, wantStatus: http.StatusNotFound, wantCode: "not_registered", wantMsg: ErrNotRegistered.Message},
		{name: "custom message", err: ErrValidation.WithMessage("mobile_number is required"), wantStatus: http.StatusUnprocessableEntity, wantCode: "validation", wantMsg: "mobile_number is required"},
		{name: "fiber error", err: fiber.NewError(http.StatusUnauthorized, "invalid token"), wantStatus: http.StatusUnauthorized, wantCode: "unauthorized", wantMsg: "invalid token"},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error", wantMsg: ErrInternal.Message},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: Handler})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status %d want %d", resp.StatusCode, tc.wantStatus)
			}
			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["status"] != false || body["code"] != tc.wantCode || body["message"] != tc.wantMsg {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}
