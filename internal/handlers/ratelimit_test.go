package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestLimiterStore_AllowBurstThenDeny(t *testing.T) {
	store := NewLimiterStore(1, 2, time.Minute)
	defer store.Stop()

	if !store.Allow("k") || !store.Allow("k") {
		t.Fatalf("burst of 2 should be allowed")
	}
	if store.Allow("k") {
		t.Fatalf("third immediate event should be denied")
	}
}

func TestLimiterStore_KeysAreIndependent(t *testing.T) {
	store := NewLimiterStore(1, 1, time.Minute)
	defer store.Stop()

	if !store.Allow("a") {
		t.Fatalf("first event for key a should be allowed")
	}
	if !store.Allow("b") {
		t.Fatalf("exhausting key a must not affect key b")
	}
}

func TestRateLimit_KeyedByEmail(t *testing.T) {
	store := NewLimiterStore(1, 1, time.Minute)
	defer store.Stop()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/login", RateLimit(store), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "success"})
	})

	post := func(email string) int {
		req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test failed: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := post("a@example.com"); code != http.StatusOK {
		t.Fatalf("first attempt = %d, want 200", code)
	}
	if code := post("a@example.com"); code != http.StatusTooManyRequests {
		t.Fatalf("second attempt = %d, want 429", code)
	}
	// A different account from the same source address is not affected.
	if code := post("b@example.com"); code != http.StatusOK {
		t.Fatalf("other account = %d, want 200", code)
	}
}
