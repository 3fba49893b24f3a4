package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobtrack/internal/store"
)

func TestApplicationsList_Unauthenticated(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Get("/v1/applications", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		return applicationsListHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/applications", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestApplicationsList_InvalidStatusFilter(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Get("/v1/applications", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		id := uuid.New()
		c.Locals("principal", Principal{UserID: &id})
		return applicationsListHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/applications?status=ghosted", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestApplicationsList_InvalidCompanyFilter(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Get("/v1/applications", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		id := uuid.New()
		c.Locals("principal", Principal{UserID: &id})
		return applicationsListHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/applications?companyId=nope", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestApplicationDetail_InvalidID(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Get("/v1/applications/:id", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		id := uuid.New()
		c.Locals("principal", Principal{UserID: &id, IsAdmin: true})
		return applicationDetailHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/applications/not-a-uuid", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestApplicationCreate_MissingPosition(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Post("/v1/applications", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		id := uuid.New()
		c.Locals("principal", Principal{UserID: &id})
		return applicationCreateHandler(c)
	})

	body := strings.NewReader(`{"companyId":"` + uuid.New().String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/applications", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	payload, _ := io.ReadAll(resp.Body)
	var er ErrorResponse
	if err := json.Unmarshal(payload, &er); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if er.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %q", er.Code)
	}
}

func TestApplicationCreate_InvalidCompanyID(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Post("/v1/applications", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		id := uuid.New()
		c.Locals("principal", Principal{UserID: &id})
		return applicationCreateHandler(c)
	})

	body := strings.NewReader(`{"companyId":"nope","position":"Engineer"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/applications", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestApplicationTransition_Unauthenticated(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Post("/v1/applications/:id/transitions", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		return applicationTransitionHandler(c)
	})

	body := strings.NewReader(`{"transition":"send_followup"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/applications/"+uuid.New().String()+"/transitions", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestApplicationTransition_InvalidID(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Post("/v1/applications/:id/transitions", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		id := uuid.New()
		c.Locals("principal", Principal{UserID: &id})
		return applicationTransitionHandler(c)
	})

	body := strings.NewReader(`{"transition":"send_followup"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/applications/not-a-uuid/transitions", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestApplicationHistory_InvalidID(t *testing.T) {
	app := fiber.New()
	st := &store.Store{}

	app.Get("/v1/applications/:id/history", func(c *fiber.Ctx) error {
		c.Locals("store", st)
		id := uuid.New()
		c.Locals("principal", Principal{UserID: &id})
		return applicationHistoryHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/applications/nope/history", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
