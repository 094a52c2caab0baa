package mail

import (
	"strings"
	"testing"
)

func TestRenderWelcome(t *testing.T) {
	body, err := render(welcomeTemplate, map[string]interface{}{"FirstName": "Dana"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(body, "Dana") {
		t.Fatalf("welcome body missing first name:\n%s", body)
	}
}

func TestRenderReset(t *testing.T) {
	body, err := render(resetTemplate, map[string]interface{}{"FirstName": "Dana", "OTP": 123456})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(body, "123456") {
		t.Fatalf("reset body missing the code:\n%s", body)
	}
}

func TestRenderContact(t *testing.T) {
	body, err := render(contactTemplate, map[string]interface{}{
		"FirstName": "Dana",
		"LastName":  "Levi",
		"Message":   "Is the Herzl street listing still available?",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(body, "Dana") || !strings.Contains(body, "Herzl") {
		t.Fatalf("contact body incomplete:\n%s", body)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	body, err := render(contactTemplate, map[string]interface{}{
		"FirstName": "<script>alert(1)</script>",
		"LastName":  "x",
		"Message":   "hi",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("template must escape user input:\n%s", body)
	}
}
