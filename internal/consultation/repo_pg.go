package consultation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PgRepo persists consultations in Postgres.
//
// Assumed table:
// consultations(id, patient_id, provider_id, consultation_type, status,
//               preferred_date, scheduled_at, cost_leone, notes,
//               duration_minutes, created_at, updated_at)
type PgRepo struct {
	db *sql.DB
}

func NewPgRepo(db *sql.DB) *PgRepo { return &PgRepo{db: db} }

const consultationColumns = `id, patient_id, provider_id, consultation_type, status,
preferred_date, scheduled_at, cost_leone, COALESCE(notes, ''), COALESCE(duration_minutes, 0),
created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsultation(row rowScanner) (Consultation, error) {
	var c Consultation
	var providerID sql.NullString
	var scheduledAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.PatientID,
		&providerID,
		&c.Type,
		&c.Status,
		&c.PreferredDate,
		&scheduledAt,
		&c.CostLeone,
		&c.Notes,
		&c.DurationMinutes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Consultation{}, err
	}

	if providerID.Valid {
		c.ProviderID = &providerID.String
	}
	if scheduledAt.Valid {
		at := scheduledAt.Time
		c.ScheduledAt = &at
	}
	return c, nil
}

func (r *PgRepo) Create(ctx context.Context, c Consultation) (Consultation, error) {
	const q = `
INSERT INTO consultations (
  id, patient_id, provider_id, consultation_type, status,
  preferred_date, scheduled_at, cost_leone, notes, duration_minutes,
  created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now()
)
RETURNING ` + consultationColumns + `
`
	return scanConsultation(r.db.QueryRowContext(ctx, q,
		c.ID,
		c.PatientID,
		c.ProviderID,
		c.Type,
		c.Status,
		c.PreferredDate,
		c.ScheduledAt,
		c.CostLeone,
		c.Notes,
		c.DurationMinutes,
	))
}

func (r *PgRepo) GetByID(ctx context.Context, id string) (Consultation, error) {
	const q = `
SELECT ` + consultationColumns + `
FROM consultations
WHERE id = $1
`
	c, err := scanConsultation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Consultation{}, ErrNotFound
		}
		return Consultation{}, err
	}
	return c, nil
}

// UpdateWhereStatus performs a conditional write: the row must still carry the
// expected status or nothing is updated. Zero matched rows are disambiguated
// into ErrNotFound vs ErrStatusConflict with a follow-up read.
func (r *PgRepo) UpdateWhereStatus(ctx context.Context, id string, expected Status, upd Update) (Consultation, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}
	idx := 2

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, v)
		idx++
	}

	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.ProviderID != nil {
		add("provider_id", *upd.ProviderID)
	}
	if upd.ScheduledAt != nil {
		add("scheduled_at", *upd.ScheduledAt)
	}
	if upd.CostLeone != nil {
		add("cost_leone", *upd.CostLeone)
	}
	if upd.Notes != nil {
		add("notes", *upd.Notes)
	}
	if upd.DurationMinutes != nil {
		add("duration_minutes", *upd.DurationMinutes)
	}

	q := fmt.Sprintf(`
UPDATE consultations
SET %s
WHERE id = $%d AND status = $%d
RETURNING %s
`, strings.Join(sets, ", "), idx, idx+1, consultationColumns)
	args = append(args, id, expected)

	c, err := scanConsultation(r.db.QueryRowContext(ctx, q, args...))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Consultation{}, err
	}

	// No row matched: either the consultation is gone or its status moved.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return Consultation{}, getErr
	}
	return Consultation{}, ErrStatusConflict
}

func (r *PgRepo) ListByPatient(ctx context.Context, patientID string) ([]Consultation, error) {
	const q = `
SELECT ` + consultationColumns + `
FROM consultations
WHERE patient_id = $1
ORDER BY created_at
`
	return r.queryList(ctx, q, patientID)
}

func (r *PgRepo) ListByProvider(ctx context.Context, providerID string) ([]Consultation, error) {
	const q = `
SELECT ` + consultationColumns + `
FROM consultations
WHERE provider_id = $1
ORDER BY created_at
`
	return r.queryList(ctx, q, providerID)
}

func (r *PgRepo) ListAll(ctx context.Context) ([]Consultation, error) {
	const q = `
SELECT ` + consultationColumns + `
FROM consultations
ORDER BY created_at
`
	return r.queryList(ctx, q)
}

func (r *PgRepo) queryList(ctx context.Context, q string, args ...any) ([]Consultation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
