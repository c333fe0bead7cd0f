package consultation

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("consultation not found")

	// ErrStatusConflict means the row's status no longer matched the expected
	// value at update time: a competing request transitioned the consultation
	// first. Callers should reload and re-validate rather than retry blindly.
	ErrStatusConflict = errors.New("consultation status changed concurrently")
)

// Update carries the mutable fields of a workflow mutation.
// Nil fields are left unchanged.
type Update struct {
	Status          *Status
	ProviderID      *string
	ScheduledAt     *time.Time
	CostLeone       *int64
	Notes           *string
	DurationMinutes *int
}

// Repository contains all storage interactions needed by the workflow.
type Repository interface {
	Create(ctx context.Context, c Consultation) (Consultation, error)
	GetByID(ctx context.Context, id string) (Consultation, error)

	// UpdateWhereStatus applies upd only while the row still carries the
	// expected status; ErrStatusConflict otherwise. This conditional write is
	// what makes transitions atomic under concurrent requests.
	UpdateWhereStatus(ctx context.Context, id string, expected Status, upd Update) (Consultation, error)

	ListByPatient(ctx context.Context, patientID string) ([]Consultation, error)
	ListByProvider(ctx context.Context, providerID string) ([]Consultation, error)
	ListAll(ctx context.Context) ([]Consultation, error)
}
