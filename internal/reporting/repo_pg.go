package reporting

import (
	"context"
	"database/sql"
	"time"

	"healthconnect/internal/consultation"
	"healthconnect/internal/payment"
)

// PgRepo reads reporting rows straight from the workflow tables.
type PgRepo struct {
	db *sql.DB
}

func NewPgRepo(db *sql.DB) *PgRepo { return &PgRepo{db: db} }

func (r *PgRepo) ListConsultations(ctx context.Context, from, to time.Time, providerID string) ([]consultation.Consultation, error) {
	const q = `
SELECT id, patient_id, provider_id, consultation_type, status, preferred_date, scheduled_at,
       cost_leone, COALESCE(notes, ''), COALESCE(duration_minutes, 0), created_at, updated_at
FROM consultations
WHERE created_at >= $1 AND created_at < $2
  AND ($3 = '' OR provider_id = $3)
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, from, to, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []consultation.Consultation
	for rows.Next() {
		var c consultation.Consultation
		var provID sql.NullString
		var scheduledAt sql.NullTime
		if err := rows.Scan(
			&c.ID, &c.PatientID, &provID, &c.Type, &c.Status, &c.PreferredDate,
			&scheduledAt, &c.CostLeone, &c.Notes, &c.DurationMinutes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if provID.Valid {
			c.ProviderID = &provID.String
		}
		if scheduledAt.Valid {
			at := scheduledAt.Time
			c.ScheduledAt = &at
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgRepo) ListPayments(ctx context.Context, from, to time.Time) ([]payment.Payment, error) {
	const q = `
SELECT id, consultation_id, patient_id, amount_leone, status, external_ref, idempotency_key, created_at, updated_at
FROM payments
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payment.Payment
	for rows.Next() {
		var p payment.Payment
		var externalRef sql.NullString
		if err := rows.Scan(
			&p.ID, &p.ConsultationID, &p.PatientID, &p.AmountLeone, &p.Status,
			&externalRef, &p.IdempotencyKey, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.ExternalRef = externalRef.String
		out = append(out, p)
	}
	return out, rows.Err()
}
