package http

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobtrack/internal/store"
)

func adminUsersListHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	limit, offset, err := parsePagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   err.Error(),
		})
	}

	users, err := st.ListUsers(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	items := make([]UserItem, 0, len(users))
	for _, u := range users {
		items = append(items, userItem(u))
	}

	return c.JSON(ListUsersResponse{
		Success: true,
		Users:   items,
	})
}

func adminAPIKeysListHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	keys, err := st.ListAPIKeys(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	items := make([]APIKeyItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, apiKeyItem(k))
	}

	return c.JSON(ListAPIKeysResponse{
		Success: true,
		APIKeys: items,
	})
}

// adminAPIKeyCreateHandler mints a new API key. The raw key appears
// only in this response; the store keeps a hash.
func adminAPIKeyCreateHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	var req CreateAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_FAILED",
			Error:   "a key label is required",
		})
	}

	var userID *uuid.UUID
	if req.UserID != "" {
		uid, err := uuid.Parse(req.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Success: false,
				Code:    "VALIDATION_FAILED",
				Error:   "invalid userId",
			})
		}
		// Verify the user exists before binding a key to it.
		if _, err := st.GetUserByID(c.Context(), uid); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
					Success: false,
					Code:    "NOT_FOUND",
					Error:   "user not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Success: false,
				Code:    "INTERNAL_ERROR",
				Error:   err.Error(),
			})
		}
		userID = &uid
	}

	var rateLimit *int
	if req.RateLimitPerMinute > 0 {
		rl := req.RateLimitPerMinute
		rateLimit = &rl
	}

	raw, key, err := st.CreateRandomAPIKey(c.Context(), req.Label, userID, req.IsAdmin, rateLimit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := apiKeyItem(key)
	return c.Status(fiber.StatusCreated).JSON(CreateAPIKeyResponse{
		Success: true,
		Key:     raw,
		APIKey:  &item,
	})
}

func adminAPIKeyDeleteHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "invalid api key id",
		})
	}

	if err := st.DeleteAPIKey(c.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Success: false,
				Code:    "NOT_FOUND",
				Error:   "api key not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
