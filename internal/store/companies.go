package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID        uuid.UUID
	Name      string
	Website   string
	CreatorID uuid.UUID
	CreatedAt time.Time
}

const companyColumns = `id, name, website, creator_id, created_at`

func scanCompany(row interface{ Scan(...any) error }) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Website, &c.CreatorID, &c.CreatedAt)
	return c, err
}

func (s *Store) CreateCompany(ctx context.Context, id uuid.UUID, name, website string, creatorID uuid.UUID) (Company, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO companies (id, name, website, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+companyColumns,
		id, name, website, creatorID)
	return scanCompany(row)
}

func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (Company, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	return scanCompany(row)
}

// ListCompanies returns companies ordered by name. When creatorID is
// non-nil the result is scoped to that creator.
func (s *Store) ListCompanies(ctx context.Context, creatorID *uuid.UUID, limit, offset int32) ([]Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies`
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

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *Store) UpdateCompany(ctx context.Context, id uuid.UUID, name, website string) (Company, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE companies SET name = $1, website = $2 WHERE id = $3
		RETURNING `+companyColumns,
		name, website, id)
	return scanCompany(row)
}

// DeleteCompany removes the company and, via FK cascade, its
// references and applications.
func (s *Store) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	return err
}
