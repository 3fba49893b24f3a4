package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobtrack/internal/fsm"
)

// ErrStatusConflict is returned when a transition's source status no
// longer matches the row, i.e. another request moved the application
// concurrently. Callers should re-read and retry.
var ErrStatusConflict = errors.New("application status changed concurrently")

type Application struct {
	ID                 uuid.UUID
	CompanyID          uuid.UUID
	Position           string
	City               string
	Region             string
	Status             fsm.Status
	CreatorID          uuid.UUID
	Notes              string
	SubmittedDate      time.Time
	UpdatedDate        sql.NullTime
	InterviewDate      sql.NullTime
	RejectedDate       sql.NullTime
	RejectedReason     sql.NullString
	RejectedFromStatus sql.NullString
	DeletedAt          sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StatusChange is one row of an application's transition history.
type StatusChange struct {
	ID            int64
	ApplicationID uuid.UUID
	FromStatus    fsm.Status
	ToStatus      fsm.Status
	Transition    fsm.Transition
	OccurredAt    time.Time
}

const applicationColumns = `id, company_id, position, city, region, status, creator_id, notes,
	submitted_date, updated_date, interview_date, rejected_date, rejected_reason,
	rejected_from_status, deleted_at, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.CompanyID, &a.Position, &a.City, &a.Region, &a.Status,
		&a.CreatorID, &a.Notes, &a.SubmittedDate, &a.UpdatedDate, &a.InterviewDate,
		&a.RejectedDate, &a.RejectedReason, &a.RejectedFromStatus, &a.DeletedAt,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

type CreateApplicationParams struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Position  string
	City      string
	Region    string
	CreatorID uuid.UUID
	Notes     string
}

// CreateApplication inserts a new application in the submitted status.
// The status column is only ever changed by ApplyTransition.
func (s *Store) CreateApplication(ctx context.Context, p CreateApplicationParams) (Application, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO applications (id, company_id, position, city, region, status, creator_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+applicationColumns,
		p.ID, p.CompanyID, p.Position, p.City, p.Region, fsm.StatusSubmitted, p.CreatorID, p.Notes)
	return scanApplication(row)
}

// GetApplication fetches a single application, excluding soft-deleted rows.
func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (Application, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanApplication(row)
}

// ApplicationListFilter narrows ListApplications results.
type ApplicationListFilter struct {
	CreatorID *uuid.UUID
	CompanyID *uuid.UUID
	Status    string
	Limit     int32
	Offset    int32
}

// ListApplications returns non-deleted applications, most recently
// updated first.
func (s *Store) ListApplications(ctx context.Context, f ApplicationListFilter) ([]Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE deleted_at IS NULL`
	args := []any{}
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}
	if f.CreatorID != nil {
		query += ` AND creator_id = ` + arg(*f.CreatorID)
	}
	if f.CompanyID != nil {
		query += ` AND company_id = ` + arg(*f.CompanyID)
	}
	if f.Status != "" {
		query += ` AND status = ` + arg(f.Status)
	}
	query += ` ORDER BY updated_at DESC, id LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// UpdateApplicationDetails changes the free-form fields of an
// application. Status is deliberately not writable here.
func (s *Store) UpdateApplicationDetails(ctx context.Context, id uuid.UUID, position, city, region, notes string) (Application, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE applications
		SET position = $1, city = $2, region = $3, notes = $4, updated_at = NOW()
		WHERE id = $5 AND deleted_at IS NULL
		RETURNING `+applicationColumns,
		position, city, region, notes, id)
	return scanApplication(row)
}

// SoftDeleteApplication marks the row deleted; the retention worker
// purges it for good after the configured TTL.
func (s *Store) SoftDeleteApplication(ctx context.Context, id uuid.UUID) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE applications SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
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

// ApplyTransition persists a validated fsm.Outcome atomically: the
// status update is guarded on the expected source status, and a
// status_changes row is appended in the same transaction.
func (s *Store) ApplyTransition(ctx context.Context, id uuid.UUID, from fsm.Status, tr fsm.Transition, out fsm.Outcome) (Application, error) {
	var app Application
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE applications
			SET status = $1,
			    updated_date = $2,
			    interview_date = COALESCE($3, interview_date),
			    rejected_date = COALESCE($4, rejected_date),
			    rejected_reason = COALESCE($5, rejected_reason),
			    rejected_from_status = COALESCE($6, rejected_from_status),
			    updated_at = NOW()
			WHERE id = $7 AND status = $8 AND deleted_at IS NULL
			RETURNING `+applicationColumns,
			out.To, out.UpdatedDate, nullTime(out.InterviewDate), nullTime(out.RejectedDate),
			nullString(out.RejectedReason), nullString(string(out.RejectedFromStatus)),
			id, from)

		var err error
		app, err = scanApplication(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStatusConflict
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO status_changes (application_id, from_status, to_status, transition)
			VALUES ($1, $2, $3, $4)`,
			id, from, out.To, tr)
		return err
	})
	if err != nil {
		return Application{}, err
	}
	return app, nil
}

// ListStatusChanges returns an application's transition history in
// chronological order.
func (s *Store) ListStatusChanges(ctx context.Context, applicationID uuid.UUID) ([]StatusChange, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, application_id, from_status, to_status, transition, occurred_at
		FROM status_changes
		WHERE application_id = $1
		ORDER BY occurred_at, id`,
		applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []StatusChange
	for rows.Next() {
		var sc StatusChange
		if err := rows.Scan(&sc.ID, &sc.ApplicationID, &sc.FromStatus, &sc.ToStatus, &sc.Transition, &sc.OccurredAt); err != nil {
			return nil, err
		}
		changes = append(changes, sc)
	}
	return changes, rows.Err()
}

// PurgeDeletedApplications permanently removes applications that were
// soft-deleted before the cutoff. History rows go with them via FK
// cascade. Returns the number of applications purged.
func (s *Store) PurgeDeletedApplications(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM applications WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
