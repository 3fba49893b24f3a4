package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         sql.NullString
	Slug         string
	AuthProvider string
	AuthSubject  sql.NullString
	IsAdmin      bool
	PasswordHash sql.NullString
	CreatedAt    time.Time
}

type CreateUserParams struct {
	ID           uuid.UUID
	Email        string
	Name         sql.NullString
	AuthProvider string
	AuthSubject  sql.NullString
	IsAdmin      bool
	PasswordHash sql.NullString
}

const userColumns = `id, email, name, slug, auth_provider, auth_subject, is_admin, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Slug, &u.AuthProvider,
		&u.AuthSubject, &u.IsAdmin, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Slugify derives a URL-safe profile slug from an email's local part.
func Slugify(email string) string {
	local := email
	if i := strings.Index(local, "@"); i > 0 {
		local = local[:i]
	}
	local = strings.ToLower(strings.TrimSpace(local))
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', r == '.', r == ' ', r == '+':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "user"
	}
	return slug
}

// CreateUser inserts a new user row. The profile slug is derived from
// the email local part.
func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (User, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, slug, auth_provider, auth_subject, is_admin, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		p.ID, p.Email, p.Name, Slugify(p.Email), p.AuthProvider, p.AuthSubject, p.IsAdmin, p.PasswordHash,
	)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByProviderSubject looks up an OIDC-backed user by its
// provider subject claim.
func (s *Store) GetUserByProviderSubject(ctx context.Context, provider, subject string) (User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth_provider = $1 AND auth_subject = $2`,
		provider, subject)
	return scanUser(row)
}

// ListUsers returns all users ordered by creation time; admin-only.
func (s *Store) ListUsers(ctx context.Context, limit, offset int32) ([]User, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
