package http

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"jobtrack/internal/config"
	"jobtrack/internal/store"
)

// authMiddleware resolves the request principal from either an
// Authorization: Bearer <key> API key or a session cookie, and
// attaches it to the context as "principal".
func authMiddleware(cfg *config.Config, st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.Auth.Enabled {
			return c.Next()
		}

		rawAuth := c.Get("Authorization")
		if rawAuth != "" {
			if !strings.HasPrefix(rawAuth, "Bearer ") {
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Success: false,
					Code:    "UNAUTHENTICATED",
					Error:   "Malformed Authorization header",
				})
			}
			token := strings.TrimSpace(strings.TrimPrefix(rawAuth, "Bearer "))
			if token == "" || !strings.HasPrefix(token, store.APIKeyPrefix) {
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Success: false,
					Code:    "UNAUTHENTICATED",
					Error:   "Invalid API key format",
				})
			}

			apiKey, err := st.GetAPIKeyByRawKey(c.Context(), token)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
						Success: false,
						Code:    "UNAUTHENTICATED",
						Error:   "Invalid or revoked API key",
					})
				}
				return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
					Success: false,
					Code:    "INTERNAL_ERROR",
					Error:   fmt.Sprintf("API key lookup failed: %v", err),
				})
			}

			c.Locals("principal", principalFromAPIKey(apiKey))
			return c.Next()
		}

		// No Authorization header: fall back to a session cookie.
		claims, err := parseSessionFromRequest(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Success: false,
				Code:    "UNAUTHENTICATED",
				Error:   "Missing API key or session",
			})
		}
		p, ok := principalFromSession(claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Success: false,
				Code:    "UNAUTHENTICATED",
				Error:   "Invalid session",
			})
		}

		c.Locals("principal", p)
		return c.Next()
	}
}

// rateLimitMiddleware enforces a simple per-minute fixed-window rate
// limit per principal using Redis.
func rateLimitMiddleware(cfg *config.Config, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.Auth.Enabled || cfg.RateLimit.DefaultPerMinute <= 0 {
			return c.Next()
		}

		val := c.Locals("principal")
		p, ok := val.(Principal)
		if !ok {
			// If there's no principal in context, auth should have failed already.
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Success: false,
				Code:    "UNAUTHENTICATED",
				Error:   "Principal not found in context",
			})
		}

		limit := cfg.RateLimit.DefaultPerMinute
		if p.RateLimitPerMinute != nil && *p.RateLimitPerMinute > 0 {
			limit = *p.RateLimitPerMinute
		}
		if limit <= 0 {
			return c.Next()
		}

		subject := ""
		switch {
		case p.APIKeyID != nil:
			subject = p.APIKeyID.String()
		case p.UserID != nil:
			subject = p.UserID.String()
		default:
			return c.Next()
		}

		now := time.Now().UTC()
		window := now.Format("200601021504") // YYYYMMDDHHMM minute window
		key := fmt.Sprintf("jobtrack:rl:%s:%s", subject, window)

		ctx := c.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Success: false,
				Code:    "INTERNAL_ERROR",
				Error:   fmt.Sprintf("rate limit increment failed: %v", err),
			})
		}
		if count == 1 {
			// First hit in this window; set TTL
			_ = rdb.Expire(ctx, key, time.Minute)
		}

		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Success: false,
				Code:    "RATE_LIMIT_EXCEEDED",
				Error:   "Rate limit exceeded, try again later",
			})
		}

		return c.Next()
	}
}

// adminOnlyMiddleware ensures the current principal has admin privileges.
func adminOnlyMiddleware(c *fiber.Ctx) error {
	val := c.Locals("principal")
	p, ok := val.(Principal)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "Principal not found in context",
		})
	}

	if !p.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Success: false,
			Code:    "FORBIDDEN",
			Error:   "Admin privileges required",
		})
	}

	return c.Next()
}
