package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"finderent-backend/internal/services"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func doRequest(t *testing.T, app *fiber.App, method, path string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp.StatusCode, body
}

func TestErrorHandler_AppError(t *testing.T) {
	app := newTestApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return NewAppError(http.StatusTeapot, "short and stout")
	})

	code, body := doRequest(t, app, "GET", "/boom")
	if code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", code, http.StatusTeapot)
	}
	if body["status"] != "fail" || body["message"] != "short and stout" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestErrorHandler_ServiceSentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"duplicate user", services.ErrUserExists, http.StatusBadRequest},
		{"conflict", services.ErrConflict, http.StatusBadRequest},
		{"invalid input", services.ErrInvalidInput, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/x", func(c *fiber.Ctx) error { return tc.err })

			code, body := doRequest(t, app, "GET", "/x")
			if code != tc.code {
				t.Fatalf("status = %d, want %d", code, tc.code)
			}
			if body["status"] != "fail" {
				t.Fatalf("status field = %v, want fail", body["status"])
			}
		})
	}
}

func TestErrorHandler_UnknownErrorIs500(t *testing.T) {
	app := newTestApp()
	app.Get("/x", func(c *fiber.Ctx) error {
		return fiber.ErrInternalServerError
	})

	code, body := doRequest(t, app, "GET", "/x")
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}
	if body["status"] != "error" {
		t.Fatalf("status field = %v, want error", body["status"])
	}
}

func TestNotFoundHandler(t *testing.T) {
	app := newTestApp()
	app.Use(NotFoundHandler)

	code, body := doRequest(t, app, "GET", "/no/such/route")
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	msg, _ := body["message"].(string)
	if msg != "Can't find /no/such/route on this server" {
		t.Fatalf("unexpected message: %q", msg)
	}
}
