package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobtrack/internal/config"
)

func TestIssueAndParseSessionCookie_RoundTrip(t *testing.T) {
	app := fiber.New()
	cfg := &config.Config{}
	cfg.Auth.Session.Secret = "test-secret"
	cfg.Auth.Session.CookieName = "jobtrack_session_test"
	cfg.Auth.Session.TTLMinutes = 60

	userID := uuid.New()

	app.Get("/set", func(c *fiber.Ctx) error {
		if err := issueSessionCookie(c, cfg, userID, true); err != nil {
			t.Fatalf("issueSessionCookie error: %v", err)
		}
		return c.SendStatus(http.StatusOK)
	})

	app.Get("/get", func(c *fiber.Ctx) error {
		claims, err := parseSessionFromRequest(c, cfg)
		if err != nil {
			return c.Status(http.StatusUnauthorized).SendString("unauthorized")
		}
		if claims.UserID != userID.String() {
			t.Fatalf("expected uid %s, got %s", userID.String(), claims.UserID)
		}
		if !claims.IsAdmin {
			t.Fatalf("expected is_admin=true")
		}
		if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
			t.Fatalf("expected future ExpiresAt, got %#v", claims.ExpiresAt)
		}
		return c.SendStatus(http.StatusOK)
	})

	// First call /set to obtain a session cookie.
	req := httptest.NewRequest(http.MethodGet, "/set", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test(/set) error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /set, got %d", resp.StatusCode)
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected at least one cookie")
	}

	// Now call /get with the cookie.
	req2 := httptest.NewRequest(http.MethodGet, "/get", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	resp2, err := app.Test(req2, -1)
	if err != nil {
		t.Fatalf("app.Test(/get) error: %v", err)
	}
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /get, got %d", resp2.StatusCode)
	}
}

func TestIssueSessionCookie_NoSecretSkips(t *testing.T) {
	app := fiber.New()
	cfg := &config.Config{}

	app.Get("/set", func(c *fiber.Ctx) error {
		if err := issueSessionCookie(c, cfg, uuid.New(), false); err != nil {
			t.Fatalf("issueSessionCookie error: %v", err)
		}
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/set", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if len(resp.Cookies()) != 0 {
		t.Fatalf("expected no cookies without a session secret, got %d", len(resp.Cookies()))
	}
}

func TestParseSessionFromRequest_BadSignature(t *testing.T) {
	app := fiber.New()

	issueCfg := &config.Config{}
	issueCfg.Auth.Session.Secret = "secret-a"
	issueCfg.Auth.Session.CookieName = "jobtrack_session_test"
	issueCfg.Auth.Session.TTLMinutes = 60

	parseCfg := &config.Config{}
	parseCfg.Auth.Session.Secret = "secret-b"
	parseCfg.Auth.Session.CookieName = "jobtrack_session_test"

	app.Get("/set", func(c *fiber.Ctx) error {
		if err := issueSessionCookie(c, issueCfg, uuid.New(), false); err != nil {
			t.Fatalf("issueSessionCookie error: %v", err)
		}
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/get", func(c *fiber.Ctx) error {
		if _, err := parseSessionFromRequest(c, parseCfg); err == nil {
			t.Fatalf("expected error for cookie signed with a different secret")
		}
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/set", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test(/set) error: %v", err)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/get", nil)
	for _, c := range resp.Cookies() {
		req2.AddCookie(c)
	}
	if _, err := app.Test(req2, -1); err != nil {
		t.Fatalf("app.Test(/get) error: %v", err)
	}
}
