package http

import (
	"database/sql"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"jobtrack/internal/store"
)

// dateOnly is the wire format for DATE columns.
const dateOnly = "2006-01-02"

func nullDateString(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(dateOnly)
}

func companyItem(c store.Company) CompanyItem {
	return CompanyItem{
		ID:        c.ID.String(),
		Name:      c.Name,
		Website:   c.Website,
		CreatorID: c.CreatorID.String(),
		CreatedAt: c.CreatedAt,
	}
}

func referenceItem(r store.Reference) ReferenceItem {
	return ReferenceItem{
		ID:        r.ID.String(),
		Name:      r.Name,
		Email:     r.Email,
		CompanyID: r.CompanyID.String(),
		CreatorID: r.CreatorID.String(),
		CreatedAt: r.CreatedAt,
	}
}

func applicationItem(a store.Application) ApplicationItem {
	return ApplicationItem{
		ID:                 a.ID.String(),
		CompanyID:          a.CompanyID.String(),
		Position:           a.Position,
		City:               a.City,
		Region:             a.Region,
		Status:             string(a.Status),
		CreatorID:          a.CreatorID.String(),
		Notes:              a.Notes,
		SubmittedDate:      a.SubmittedDate.Format(dateOnly),
		UpdatedDate:        nullDateString(a.UpdatedDate),
		InterviewDate:      nullDateString(a.InterviewDate),
		RejectedDate:       nullDateString(a.RejectedDate),
		RejectedReason:     a.RejectedReason.String,
		RejectedFromStatus: a.RejectedFromStatus.String,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func userItem(u store.User) UserItem {
	return UserItem{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name.String,
		Slug:      u.Slug,
		Provider:  u.AuthProvider,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func apiKeyItem(k store.APIKey) APIKeyItem {
	item := APIKeyItem{
		ID:        k.ID.String(),
		Label:     k.Label,
		IsAdmin:   k.IsAdmin,
		CreatedAt: k.CreatedAt,
	}
	if k.UserID.Valid {
		item.UserID = k.UserID.UUID.String()
	}
	if k.RateLimitPerMinute.Valid {
		item.RateLimitPerMinute = int(k.RateLimitPerMinute.Int32)
	}
	return item
}

// respondFiberError renders a *fiber.Error as our JSON envelope,
// mapping common statuses to stable codes.
func respondFiberError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()
	if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
		message = fe.Message
	}

	code := "INTERNAL_ERROR"
	switch status {
	case fiber.StatusBadRequest:
		code = "BAD_REQUEST"
	case fiber.StatusNotFound:
		code = "NOT_FOUND"
	case fiber.StatusForbidden:
		code = "FORBIDDEN"
	case fiber.StatusConflict:
		code = "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		code = "VALIDATION_FAILED"
	}

	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Code:    code,
		Error:   message,
	})
}

// currentPrincipal fetches the principal attached by authMiddleware.
func currentPrincipal(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals("principal").(Principal)
	if !ok || p.UserID == nil {
		return Principal{}, false
	}
	return p, true
}

// parsePagination reads limit/offset query params with sane bounds.
func parsePagination(c *fiber.Ctx) (limit, offset int32, err error) {
	limit = 50
	if v := c.Query("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n <= 0 {
			return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid limit value")
		}
		if n > 500 {
			n = 500
		}
		limit = int32(n)
	}
	if v := c.Query("offset"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid offset value")
		}
		offset = int32(n)
	}
	return limit, offset, nil
}
