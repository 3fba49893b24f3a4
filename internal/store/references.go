package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Reference is a person at a company who may vouch for the applicant.
type Reference struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CompanyID uuid.UUID
	CreatorID uuid.UUID
	CreatedAt time.Time
}

const referenceColumns = `id, name, email, company_id, creator_id, created_at`

func scanReference(row interface{ Scan(...any) error }) (Reference, error) {
	var r Reference
	err := row.Scan(&r.ID, &r.Name, &r.Email, &r.CompanyID, &r.CreatorID, &r.CreatedAt)
	return r, err
}

func (s *Store) CreateReference(ctx context.Context, id uuid.UUID, name, email string, companyID, creatorID uuid.UUID) (Reference, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO job_references (id, name, email, company_id, creator_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+referenceColumns,
		id, name, email, companyID, creatorID)
	return scanReference(row)
}

func (s *Store) GetReference(ctx context.Context, id uuid.UUID) (Reference, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+referenceColumns+` FROM job_references WHERE id = $1`, id)
	return scanReference(row)
}

// ListReferences returns references ordered by name. When creatorID is
// non-nil the result is scoped to that creator.
func (s *Store) ListReferences(ctx context.Context, creatorID *uuid.UUID, limit, offset int32) ([]Reference, error) {
	query := `SELECT ` + referenceColumns + ` FROM job_references`
	args := []any{}
	if creatorID != nil {
		query += ` WHERE creator_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`
		args = append(args, *creatorID, limit, offset)
	} else {
		query += ` ORDER BY name, id LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []Reference
	for rows.Next() {
		r, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func (s *Store) UpdateReference(ctx context.Context, id uuid.UUID, name, email string) (Reference, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE job_references SET name = $1, email = $2 WHERE id = $3
		RETURNING `+referenceColumns,
		name, email, id)
	return scanReference(row)
}

func (s *Store) DeleteReference(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM job_references WHERE id = $1`, id)
	return err
}
