package http

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobtrack/internal/fsm"
	"jobtrack/internal/store"
)

func TestParsePagination(t *testing.T) {
	app := fiber.New()

	var limit, offset int32
	var parseErr error
	app.Get("/list", func(c *fiber.Ctx) error {
		limit, offset, parseErr = parsePagination(c)
		return c.SendStatus(http.StatusOK)
	})

	cases := []struct {
		name       string
		query      string
		wantLimit  int32
		wantOffset int32
		wantErr    bool
	}{
		{name: "defaults", query: "", wantLimit: 50},
		{name: "explicit", query: "?limit=10&offset=5", wantLimit: 10, wantOffset: 5},
		{name: "capped", query: "?limit=9999", wantLimit: 500},
		{name: "bad limit", query: "?limit=abc", wantErr: true},
		{name: "zero limit", query: "?limit=0", wantErr: true},
		{name: "negative offset", query: "?offset=-1", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/list"+tc.query, nil)
			if _, err := app.Test(req, -1); err != nil {
				t.Fatalf("app.Test error: %v", err)
			}
			if tc.wantErr {
				if parseErr == nil {
					t.Fatalf("expected error, got limit=%d offset=%d", limit, offset)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected error: %v", parseErr)
			}
			if limit != tc.wantLimit || offset != tc.wantOffset {
				t.Fatalf("expected limit=%d offset=%d, got limit=%d offset=%d",
					tc.wantLimit, tc.wantOffset, limit, offset)
			}
		})
	}
}

func TestRespondFiberError_StatusMapping(t *testing.T) {
	app := fiber.New()

	app.Get("/not-found", func(c *fiber.Ctx) error {
		return respondFiberError(c, fiber.NewError(fiber.StatusNotFound, "gone"))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return respondFiberError(c, sql.ErrConnDone)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/not-found", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

// The JSON item must carry every application field through unchanged.
func TestApplicationItem_FieldFidelity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := store.Application{
		ID:            uuid.New(),
		CompanyID:     uuid.New(),
		Position:      "Staff Engineer",
		City:          "Lisbon",
		Region:        "PT",
		Status:        fsm.StatusInterviewScheduled,
		CreatorID:     uuid.New(),
		Notes:         "referred by a former colleague",
		SubmittedDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		UpdatedDate:   sql.NullTime{Time: time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC), Valid: true},
		InterviewDate: sql.NullTime{Time: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), Valid: true},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	item := applicationItem(a)

	if item.ID != a.ID.String() || item.CompanyID != a.CompanyID.String() || item.CreatorID != a.CreatorID.String() {
		t.Fatalf("id fields differ: %+v", item)
	}
	if item.Position != a.Position || item.City != a.City || item.Region != a.Region || item.Notes != a.Notes {
		t.Fatalf("text fields differ: %+v", item)
	}
	if item.Status != string(a.Status) {
		t.Fatalf("expected status %s, got %s", a.Status, item.Status)
	}
	if item.SubmittedDate != "2025-05-20" || item.UpdatedDate != "2025-05-25" || item.InterviewDate != "2025-06-03" {
		t.Fatalf("date fields differ: %+v", item)
	}
	if item.RejectedDate != "" || item.RejectedReason != "" || item.RejectedFromStatus != "" {
		t.Fatalf("expected empty rejection fields, got %+v", item)
	}
	if !item.CreatedAt.Equal(now) || !item.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps differ: %+v", item)
	}
}

func TestNullDateString(t *testing.T) {
	if got := nullDateString(sql.NullTime{}); got != "" {
		t.Fatalf("expected empty string for null time, got %q", got)
	}

	when := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	if got := nullDateString(sql.NullTime{Time: when, Valid: true}); got != "2025-03-14" {
		t.Fatalf("expected 2025-03-14, got %q", got)
	}
}
