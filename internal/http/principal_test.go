package http

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"jobtrack/internal/store"
)

func TestPrincipalFromAPIKey_PopulatesFields(t *testing.T) {
	userID := uuid.New()

	apiKey := store.APIKey{
		ID:                 uuid.New(),
		IsAdmin:            true,
		UserID:             uuid.NullUUID{UUID: userID, Valid: true},
		RateLimitPerMinute: sql.NullInt32{Int32: 120, Valid: true},
	}

	p := principalFromAPIKey(apiKey)

	if p.APIKeyID == nil || *p.APIKeyID != apiKey.ID {
		t.Fatalf("expected APIKeyID %v, got %#v", apiKey.ID, p.APIKeyID)
	}
	if !p.IsAdmin {
		t.Fatalf("expected IsAdmin=true")
	}
	if p.UserID == nil || *p.UserID != userID {
		t.Fatalf("expected UserID %v, got %#v", userID, p.UserID)
	}
	if p.RateLimitPerMinute == nil || *p.RateLimitPerMinute != 120 {
		t.Fatalf("expected RateLimitPerMinute 120, got %#v", p.RateLimitPerMinute)
	}
}

func TestPrincipalFromAPIKey_EmptyOptionalFields(t *testing.T) {
	apiKey := store.APIKey{ID: uuid.New()}

	p := principalFromAPIKey(apiKey)

	if p.UserID != nil {
		t.Fatalf("expected nil UserID, got %v", *p.UserID)
	}
	if p.RateLimitPerMinute != nil {
		t.Fatalf("expected nil RateLimitPerMinute, got %v", *p.RateLimitPerMinute)
	}
	if p.IsAdmin {
		t.Fatalf("expected IsAdmin=false")
	}
}

func TestPrincipalCanAccess(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	p := Principal{UserID: &owner}
	if !p.canAccess(owner) {
		t.Fatalf("expected owner to access own rows")
	}
	if p.canAccess(other) {
		t.Fatalf("expected owner to be denied other users' rows")
	}

	admin := Principal{UserID: &other, IsAdmin: true}
	if !admin.canAccess(owner) {
		t.Fatalf("expected admin to access any row")
	}
}

func TestPrincipalScopeCreator(t *testing.T) {
	id := uuid.New()

	p := Principal{UserID: &id}
	if got := p.scopeCreator(); got == nil || *got != id {
		t.Fatalf("expected scope %v, got %#v", id, got)
	}

	admin := Principal{UserID: &id, IsAdmin: true}
	if got := admin.scopeCreator(); got != nil {
		t.Fatalf("expected nil scope for admin, got %v", *got)
	}
}

func TestPrincipalFromSession(t *testing.T) {
	id := uuid.New()

	p, ok := principalFromSession(&sessionClaims{UserID: id.String(), IsAdmin: true})
	if !ok {
		t.Fatalf("expected valid principal")
	}
	if p.UserID == nil || *p.UserID != id {
		t.Fatalf("expected UserID %v, got %#v", id, p.UserID)
	}
	if !p.IsAdmin {
		t.Fatalf("expected IsAdmin=true")
	}

	if _, ok := principalFromSession(&sessionClaims{UserID: "not-a-uuid"}); ok {
		t.Fatalf("expected invalid uid to be rejected")
	}
}
