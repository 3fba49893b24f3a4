package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/google/uuid"

	"jobtrack/internal/config"
	"jobtrack/internal/store"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailTaken           = errors.New("a user with this email already exists")
	ErrWeakPassword         = errors.New("password must be at least 8 characters")
	ErrAuthProviderMismatch = errors.New("user exists but is not configured for this auth method")
	ErrOIDCDisabled         = errors.New("oidc auth is disabled")
	ErrOIDCEmailNotAllowed  = errors.New("email domain is not allowed for oidc")
	ErrOIDCEmailMissing     = errors.New("oidc token did not contain an email")
)

// AuthService encapsulates user registration and login flows (local
// and OIDC).
type AuthService interface {
	Register(ctx context.Context, email, name, password string) (store.User, error)
	LoginLocal(ctx context.Context, email, password string) (store.User, error)
	LoginOIDC(ctx context.Context, code string) (*OIDCAuthResult, error)
}

type OIDCAuthResult struct {
	User       store.User
	FirstLogin bool
}

type authService struct {
	cfg *config.Config
	st  *store.Store
}

func NewAuthService(cfg *config.Config, st *store.Store) AuthService {
	return &authService{cfg: cfg, st: st}
}

// Register creates a local user with a bcrypt password hash. Unlike
// OIDC users, local users exist only through explicit registration.
func (s *authService) Register(ctx context.Context, email, name, password string) (store.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return store.User{}, ErrInvalidCredentials
	}
	if len(password) < 8 {
		return store.User{}, ErrWeakPassword
	}

	if _, err := s.st.GetUserByEmail(ctx, email); err == nil {
		return store.User{}, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, err
	}

	var nameVal sql.NullString
	if strings.TrimSpace(name) != "" {
		nameVal = sql.NullString{String: strings.TrimSpace(name), Valid: true}
	}

	user, err := s.st.CreateUser(ctx, store.CreateUserParams{
		ID:           uuid.New(),
		Email:        email,
		Name:         nameVal,
		AuthProvider: "local",
		PasswordHash: sql.NullString{String: string(hash), Valid: true},
	})
	if err != nil {
		// If a concurrent registration won the race, report the conflict.
		if _, getErr := s.st.GetUserByEmail(ctx, email); getErr == nil {
			return store.User{}, ErrEmailTaken
		}
		return store.User{}, err
	}
	return user, nil
}

func (s *authService) LoginLocal(ctx context.Context, email, password string) (store.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return store.User{}, ErrInvalidCredentials
	}

	user, err := s.st.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, err
	}

	if user.AuthProvider != "local" {
		return store.User{}, ErrAuthProviderMismatch
	}
	if !user.PasswordHash.Valid {
		return store.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)); err != nil {
		return store.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// LoginOIDC performs an OIDC authorization code flow token exchange
// and upserts a user based on the ID token claims.
func (s *authService) LoginOIDC(ctx context.Context, code string) (*OIDCAuthResult, error) {
	if !s.cfg.Auth.OIDC.Enabled {
		return nil, ErrOIDCDisabled
	}

	provider, err := oidc.NewProvider(ctx, s.cfg.Auth.OIDC.IssuerURL)
	if err != nil {
		return nil, err
	}

	oauthCfg := oauth2.Config{
		ClientID:     s.cfg.Auth.OIDC.ClientID,
		ClientSecret: s.cfg.Auth.OIDC.ClientSecret,
		RedirectURL:  s.cfg.Auth.OIDC.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("oidc: id_token not found in token response")
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: s.cfg.Auth.OIDC.ClientID})
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(claims.Email))
	if email == "" {
		return nil, ErrOIDCEmailMissing
	}

	if err := s.checkAllowedDomain(email); err != nil {
		return nil, err
	}

	// First, try to find by provider + subject.
	if idToken.Subject != "" {
		user, err := s.st.GetUserByProviderSubject(ctx, "oidc", idToken.Subject)
		if err == nil {
			return &OIDCAuthResult{User: user, FirstLogin: false}, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	// Next, see if a user already exists for this email.
	existing, err := s.st.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.AuthProvider != "oidc" || !existing.AuthSubject.Valid || existing.AuthSubject.String != idToken.Subject {
			return nil, ErrAuthProviderMismatch
		}
		return &OIDCAuthResult{User: existing, FirstLogin: false}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Create a new OIDC-backed user.
	var nameVal sql.NullString
	if strings.TrimSpace(claims.Name) != "" {
		nameVal = sql.NullString{String: claims.Name, Valid: true}
	}
	user, err := s.st.CreateUser(ctx, store.CreateUserParams{
		ID:           uuid.New(),
		Email:        email,
		Name:         nameVal,
		AuthProvider: "oidc",
		AuthSubject:  sql.NullString{String: idToken.Subject, Valid: idToken.Subject != ""},
	})
	if err != nil {
		// If another concurrent login created the user, try refetching.
		u2, getErr := s.st.GetUserByEmail(ctx, email)
		if getErr != nil {
			return nil, err
		}
		user = u2
	}

	return &OIDCAuthResult{User: user, FirstLogin: true}, nil
}

func (s *authService) checkAllowedDomain(email string) error {
	if len(s.cfg.Auth.OIDC.AllowedDomains) == 0 {
		return nil
	}
	domain := ""
	if i := strings.LastIndex(email, "@"); i != -1 && i+1 < len(email) {
		domain = email[i+1:]
	}
	for _, d := range s.cfg.Auth.OIDC.AllowedDomains {
		if strings.EqualFold(strings.TrimSpace(d), domain) {
			return nil
		}
	}
	return ErrOIDCEmailNotAllowed
}
