// Package bootstrap applies idempotent startup configuration: the
// initial admin user and the session secret file.
package bootstrap

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"jobtrack/internal/config"
	"jobtrack/internal/store"
)

// Run applies bootstrap configuration. It is designed to be idempotent
// and safe to run multiple times.
func Run(ctx context.Context, cfg *config.Config, st *store.Store) error {
	if cfg == nil || st == nil {
		return nil
	}
	if err := ensureSessionSecret(cfg); err != nil {
		return err
	}
	return ensureInitialAdmin(ctx, cfg, st)
}

// ensureSessionSecret loads the session secret from the configured
// secret file, generating the file on first start. Inline secrets in
// config take precedence.
func ensureSessionSecret(cfg *config.Config) error {
	if cfg.Auth.Session.Secret != "" || cfg.Auth.Session.SecretFile == "" {
		return nil
	}

	path := cfg.Auth.Session.SecretFile
	raw, err := os.ReadFile(path)
	if err == nil {
		cfg.Auth.Session.Secret = strings.TrimSpace(string(raw))
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	secret := hex.EncodeToString(buf)
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return err
	}
	cfg.Auth.Session.Secret = secret
	return nil
}

// ensureInitialAdmin creates the configured admin user if it does not
// exist yet. Existing users are never modified here to avoid
// surprising credential changes.
func ensureInitialAdmin(ctx context.Context, cfg *config.Config, st *store.Store) error {
	email := strings.TrimSpace(strings.ToLower(cfg.Auth.InitialAdmin.Email))
	password := cfg.Auth.InitialAdmin.Password
	if email == "" || password == "" {
		return nil
	}

	_, err := st.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = st.CreateUser(ctx, store.CreateUserParams{
		ID:           uuid.New(),
		Email:        email,
		AuthProvider: "local",
		IsAdmin:      true,
		PasswordHash: sql.NullString{String: string(hash), Valid: true},
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Another process created this user concurrently; treat as success.
			return nil
		}
		return err
	}
	return nil
}
