package provider

import (
	"context"
	"database/sql"
	"errors"
)

// PgRepo reads provider profiles from Postgres.
//
// Assumed table:
// providers(id, user_id, name, specialty, is_available, created_at, updated_at)
type PgRepo struct {
	db *sql.DB
}

func NewPgRepo(db *sql.DB) *PgRepo { return &PgRepo{db: db} }

const providerColumns = `id, user_id, name, COALESCE(specialty, ''), is_available, created_at, updated_at`

func scanProvider(row *sql.Row) (Provider, error) {
	var p Provider
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Specialty,
		&p.IsAvailable,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Provider{}, ErrNotFound
		}
		return Provider{}, err
	}
	return p, nil
}

func (r *PgRepo) GetByID(ctx context.Context, id string) (Provider, error) {
	const q = `
SELECT ` + providerColumns + `
FROM providers
WHERE id = $1
`
	return scanProvider(r.db.QueryRowContext(ctx, q, id))
}

func (r *PgRepo) GetByUserID(ctx context.Context, userID string) (Provider, error) {
	const q = `
SELECT ` + providerColumns + `
FROM providers
WHERE user_id = $1
`
	return scanProvider(r.db.QueryRowContext(ctx, q, userID))
}
