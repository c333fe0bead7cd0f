package payment

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("payment not found")

	// ErrStatusConflict means the payment's status changed between read and
	// write, or a settlement raced another one.
	ErrStatusConflict = errors.New("payment status conflict")
)

// Repository persists payments and their append-only status history.
// Implementations must write the payment row and its history entry
// atomically.
type Repository interface {
	// Create inserts the payment together with its opening history entry.
	Create(ctx context.Context, p Payment) (Payment, error)

	GetByID(ctx context.Context, id string) (Payment, error)
	GetByConsultation(ctx context.Context, consultationID string) (Payment, error)

	// FindByIdempotencyKey returns the payment previously created with the
	// given key, if any.
	FindByIdempotencyKey(ctx context.Context, key string) (Payment, bool, error)

	// UpdateStatusWhere moves the payment from the expected status to the
	// target status and appends a history entry, all atomically. It returns
	// ErrStatusConflict when the stored status no longer matches expected.
	UpdateStatusWhere(ctx context.Context, id string, expected, target Status, externalRef, reason string) (Payment, error)

	History(ctx context.Context, paymentID string) ([]StatusChange, error)
}
