package audit

import (
	"context"
	"database/sql"
)

// PgRepo appends audit events to Postgres.
//
// Assumed table (INSERT-only):
// audit_events(id, type, actor_user_id, actor_role, consultation_id,
//              provider_id, from_status, to_status, message, metadata, created_at)
type PgRepo struct {
	db *sql.DB
}

func NewPgRepo(db *sql.DB) *PgRepo { return &PgRepo{db: db} }

func (r *PgRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, type, actor_user_id, actor_role, consultation_id,
  provider_id, from_status, to_status, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Type,
		e.ActorUserID,
		e.ActorRole,
		e.ConsultationID,
		e.ProviderID,
		e.FromStatus,
		e.ToStatus,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
