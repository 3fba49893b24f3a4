package http

import (
	"github.com/google/uuid"

	"jobtrack/internal/store"
)

// Principal represents the authenticated identity for a request. It is
// constructed either from an API key or from a session cookie.
type Principal struct {
	UserID  *uuid.UUID
	IsAdmin bool

	APIKeyID           *uuid.UUID
	RateLimitPerMinute *int
}

// canAccess reports whether the principal may read or mutate an object
// created by creatorID. Admins see everything; everyone else only
// their own rows.
func (p Principal) canAccess(creatorID uuid.UUID) bool {
	if p.IsAdmin {
		return true
	}
	return p.UserID != nil && *p.UserID == creatorID
}

// scopeCreator returns the creator filter for list queries: nil for
// admins (no filter), the principal's user id otherwise.
func (p Principal) scopeCreator() *uuid.UUID {
	if p.IsAdmin {
		return nil
	}
	return p.UserID
}

// principalFromAPIKey builds a Principal from a store.APIKey.
func principalFromAPIKey(k store.APIKey) Principal {
	p := Principal{}

	id := k.ID
	p.APIKeyID = &id

	if k.UserID.Valid {
		uid := k.UserID.UUID
		p.UserID = &uid
	}
	if k.IsAdmin {
		p.IsAdmin = true
	}
	if k.RateLimitPerMinute.Valid && k.RateLimitPerMinute.Int32 > 0 {
		rl := int(k.RateLimitPerMinute.Int32)
		p.RateLimitPerMinute = &rl
	}

	return p
}

// principalFromSession builds a Principal from verified session claims.
func principalFromSession(claims *sessionClaims) (Principal, bool) {
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, false
	}
	return Principal{UserID: &uid, IsAdmin: claims.IsAdmin}, true
}
