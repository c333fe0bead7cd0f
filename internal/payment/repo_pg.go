package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"healthconnect/pkg/utils"

	"github.com/google/uuid"
)

// PgRepo persists payments in Postgres.
//
// Assumed tables:
// - payments (UNIQUE on consultation_id and on idempotency_key)
// - payment_status_changes (immutable append-only)
type PgRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPgRepo(db *sql.DB) *PgRepo {
	return &PgRepo{db: db, clock: time.Now}
}

const paymentColumns = "id, consultation_id, patient_id, amount_leone, status, external_ref, idempotency_key, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (Payment, error) {
	var p Payment
	var externalRef sql.NullString
	err := row.Scan(
		&p.ID,
		&p.ConsultationID,
		&p.PatientID,
		&p.AmountLeone,
		&p.Status,
		&externalRef,
		&p.IdempotencyKey,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Payment{}, err
	}
	p.ExternalRef = externalRef.String
	return p, nil
}

func (r *PgRepo) Create(ctx context.Context, p Payment) (Payment, error) {
	now := r.clock().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO payments (` + paymentColumns + `)
VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8,$9)
`
		if _, err := tx.ExecContext(ctx, q,
			p.ID, p.ConsultationID, p.PatientID, p.AmountLeone, p.Status,
			p.ExternalRef, p.IdempotencyKey, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return insertStatusChange(ctx, tx, StatusChange{
			ID:        uuid.NewString(),
			PaymentID: p.ID,
			ToStatus:  p.Status,
			CreatedAt: now,
		})
	})
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *PgRepo) GetByID(ctx context.Context, id string) (Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

func (r *PgRepo) GetByConsultation(ctx context.Context, consultationID string) (Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE consultation_id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, consultationID))
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

func (r *PgRepo) FindByIdempotencyKey(ctx context.Context, key string) (Payment, bool, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE idempotency_key = $1 LIMIT 1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, key))
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, false, nil
	}
	if err != nil {
		return Payment{}, false, err
	}
	return p, true, nil
}

func (r *PgRepo) UpdateStatusWhere(ctx context.Context, id string, expected, target Status, externalRef, reason string) (Payment, error) {
	now := r.clock().UTC()

	var out Payment
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
UPDATE payments
SET status = $1,
    external_ref = COALESCE(NULLIF($2,''), external_ref),
    updated_at = $3
WHERE id = $4 AND status = $5
RETURNING ` + paymentColumns
		p, err := scanPayment(tx.QueryRowContext(ctx, q, target, externalRef, now, id, expected))
		if errors.Is(err, sql.ErrNoRows) {
			// Row missing entirely, or the status moved under us.
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrStatusConflict
		}
		if err != nil {
			return err
		}
		out = p
		return insertStatusChange(ctx, tx, StatusChange{
			ID:         uuid.NewString(),
			PaymentID:  id,
			FromStatus: expected,
			ToStatus:   target,
			Reason:     reason,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return Payment{}, err
	}
	return out, nil
}

func (r *PgRepo) History(ctx context.Context, paymentID string) ([]StatusChange, error) {
	const q = `
SELECT id, payment_id, from_status, to_status, reason, created_at
FROM payment_status_changes
WHERE payment_id = $1
ORDER BY created_at, id
`
	rows, err := r.db.QueryContext(ctx, q, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusChange
	for rows.Next() {
		var c StatusChange
		var from, reason sql.NullString
		if err := rows.Scan(&c.ID, &c.PaymentID, &from, &c.ToStatus, &reason, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.FromStatus = Status(from.String)
		c.Reason = reason.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertStatusChange(ctx context.Context, tx *sql.Tx, c StatusChange) error {
	const q = `
INSERT INTO payment_status_changes (id, payment_id, from_status, to_status, reason, created_at)
VALUES ($1,$2,NULLIF($3,''),$4,NULLIF($5,''),$6)
`
	_, err := tx.ExecContext(ctx, q, c.ID, c.PaymentID, string(c.FromStatus), c.ToStatus, c.Reason, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment status change: %w", err)
	}
	return err
}
