package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/coreos/go-oidc/v3/oidc"

	"jobtrack/internal/config"
	"jobtrack/internal/services"
	"jobtrack/internal/store"
)

const oidcStateCookieName = "jobtrack_oidc_state"

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type LocalLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool      `json:"success"`
	Code    string    `json:"code,omitempty"`
	Error   string    `json:"error,omitempty"`
	User    *UserItem `json:"user,omitempty"`
}

func registerHandler(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	st := c.Locals("store").(*store.Store)

	if !cfg.Auth.Local.Enabled {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Success: false,
			Code:    "LOCAL_AUTH_DISABLED",
			Error:   "local auth is disabled in server configuration",
		})
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	authSvc := services.NewAuthService(cfg, st)
	user, err := authSvc.Register(c.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch err {
		case services.ErrEmailTaken:
			return c.Status(fiber.StatusConflict).JSON(LoginResponse{
				Success: false,
				Code:    "EMAIL_TAKEN",
				Error:   "a user with this email already exists",
			})
		case services.ErrWeakPassword:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(LoginResponse{
				Success: false,
				Code:    "WEAK_PASSWORD",
				Error:   "password must be at least 8 characters",
			})
		case services.ErrInvalidCredentials:
			return c.Status(fiber.StatusBadRequest).JSON(LoginResponse{
				Success: false,
				Code:    "BAD_REQUEST",
				Error:   "a valid email address is required",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(LoginResponse{
				Success: false,
				Code:    "INTERNAL_ERROR",
				Error:   err.Error(),
			})
		}
	}

	_ = issueSessionCookie(c, cfg, user.ID, user.IsAdmin)

	item := userItem(user)
	return c.Status(fiber.StatusCreated).JSON(LoginResponse{
		Success: true,
		User:    &item,
	})
}

func loginHandler(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	st := c.Locals("store").(*store.Store)

	if !cfg.Auth.Local.Enabled {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Success: false,
			Code:    "LOCAL_AUTH_DISABLED",
			Error:   "local auth is disabled in server configuration",
		})
	}

	var req LocalLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	authSvc := services.NewAuthService(cfg, st)
	user, err := authSvc.LoginLocal(c.Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case services.ErrInvalidCredentials:
			return c.Status(fiber.StatusUnauthorized).JSON(LoginResponse{
				Success: false,
				Code:    "INVALID_CREDENTIALS",
				Error:   "invalid email or password",
			})
		case services.ErrAuthProviderMismatch:
			return c.Status(fiber.StatusBadRequest).JSON(LoginResponse{
				Success: false,
				Code:    "AUTH_PROVIDER_MISMATCH",
				Error:   "user exists but is not configured for local auth",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(LoginResponse{
				Success: false,
				Code:    "INTERNAL_ERROR",
				Error:   err.Error(),
			})
		}
	}

	// Issue a browser session cookie for UI clients.
	_ = issueSessionCookie(c, cfg, user.ID, user.IsAdmin)

	item := userItem(user)
	return c.Status(fiber.StatusOK).JSON(LoginResponse{
		Success: true,
		User:    &item,
	})
}

func logoutHandler(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	clearSessionCookie(c, cfg)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

// oidcLoginStartHandler initiates an OIDC login by redirecting the
// user agent to the provider's authorization endpoint with a
// cookie-backed state value for CSRF protection.
func oidcLoginStartHandler(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)

	if !cfg.Auth.OIDC.Enabled {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Success: false,
			Code:    "OIDC_DISABLED",
			Error:   "oidc auth is disabled in server configuration",
		})
	}

	provider, err := oidc.NewProvider(c.Context(), cfg.Auth.OIDC.IssuerURL)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Success: false,
			Code:    "OIDC_PROVIDER_ERROR",
			Error:   err.Error(),
		})
	}

	oauthCfg := oauth2.Config{
		ClientID:     cfg.Auth.OIDC.ClientID,
		ClientSecret: cfg.Auth.OIDC.ClientSecret,
		RedirectURL:  cfg.Auth.OIDC.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oidcStateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	authURL := oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
	return c.Redirect(authURL, fiber.StatusFound)
}

// oidcCallbackHandler handles the OIDC redirect, validates state, and
// delegates to AuthService.LoginOIDC to upsert the user.
func oidcCallbackHandler(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	st := c.Locals("store").(*store.Store)

	if !cfg.Auth.OIDC.Enabled {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Success: false,
			Code:    "OIDC_DISABLED",
			Error:   "oidc auth is disabled in server configuration",
		})
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "missing code or state",
		})
	}

	cookieState := c.Cookies(oidcStateCookieName)
	if cookieState == "" || cookieState != state {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "OIDC_STATE_MISMATCH",
			Error:   "oidc state mismatch",
		})
	}

	// Clear the state cookie.
	c.Cookie(&fiber.Cookie{
		Name:     oidcStateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	authSvc := services.NewAuthService(cfg, st)
	res, err := authSvc.LoginOIDC(c.Context(), code)
	if err != nil {
		switch err {
		case services.ErrOIDCDisabled:
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Success: false,
				Code:    "OIDC_DISABLED",
				Error:   "oidc auth is disabled in server configuration",
			})
		case services.ErrOIDCEmailMissing:
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "OIDC_EMAIL_MISSING",
				Error:   "oidc id token did not contain an email",
			})
		case services.ErrOIDCEmailNotAllowed:
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Success: false,
				Code:    "OIDC_EMAIL_NOT_ALLOWED",
				Error:   "email domain is not allowed for oidc",
			})
		case services.ErrAuthProviderMismatch:
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "AUTH_PROVIDER_MISMATCH",
				Error:   "user exists but is not configured for oidc auth",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Success: false,
				Code:    "INTERNAL_ERROR",
				Error:   err.Error(),
			})
		}
	}

	// Issue a browser session cookie for UI clients.
	_ = issueSessionCookie(c, cfg, res.User.ID, res.User.IsAdmin)

	item := userItem(res.User)
	return c.Status(fiber.StatusOK).JSON(LoginResponse{
		Success: true,
		User:    &item,
	})
}
