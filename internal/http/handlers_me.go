package http

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"jobtrack/internal/store"
)

// meHandler returns the profile of the authenticated user.
func meHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	user, err := st.GetUserByID(c.Context(), *p.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Success: false,
				Code:    "UNAUTHENTICATED",
				Error:   "User no longer exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := userItem(user)
	return c.JSON(UserResponse{
		Success: true,
		User:    &item,
	})
}
