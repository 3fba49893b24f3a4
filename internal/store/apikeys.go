package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// APIKeyPrefix is prepended to every raw key so stray tokens are easy
// to spot in logs and configs.
const APIKeyPrefix = "tracker_"

type APIKey struct {
	ID                 uuid.UUID
	KeyHash            string
	Label              string
	UserID             uuid.NullUUID
	IsAdmin            bool
	RateLimitPerMinute sql.NullInt32
	CreatedAt          time.Time
}

const apiKeyColumns = `id, key_hash, label, user_id, is_admin, rate_limit_per_minute, created_at`

func scanAPIKey(row interface{ Scan(...any) error }) (APIKey, error) {
	var k APIKey
	err := row.Scan(&k.ID, &k.KeyHash, &k.Label, &k.UserID, &k.IsAdmin, &k.RateLimitPerMinute, &k.CreatedAt)
	return k, err
}

// GetAPIKeyByRawKey looks up an API key by its raw value.
func (s *Store) GetAPIKeyByRawKey(ctx context.Context, rawKey string) (APIKey, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, hashAPIKey(rawKey))
	return scanAPIKey(row)
}

// CreateRandomAPIKey creates a new random API key. It returns the raw
// key plus the stored record; the raw value is never persisted.
func (s *Store) CreateRandomAPIKey(ctx context.Context, label string, userID *uuid.UUID, isAdmin bool, rateLimitPerMinute *int) (string, APIKey, error) {
	raw := APIKeyPrefix + uuid.New().String()

	var uid uuid.NullUUID
	if userID != nil {
		uid = uuid.NullUUID{UUID: *userID, Valid: true}
	}
	var rl sql.NullInt32
	if rateLimitPerMinute != nil && *rateLimitPerMinute > 0 {
		rl = sql.NullInt32{Int32: int32(*rateLimitPerMinute), Valid: true}
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO api_keys (id, key_hash, label, user_id, is_admin, rate_limit_per_minute)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+apiKeyColumns,
		uuid.New(), hashAPIKey(raw), label, uid, isAdmin, rl)

	key, err := scanAPIKey(row)
	if err != nil {
		return "", APIKey{}, err
	}
	return raw, key, nil
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) DeleteAPIKey(ctx context.Context, id uuid.UUID) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
