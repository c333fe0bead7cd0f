package payment

import "time"

// Payment tracks the money owed for a single consultation.
// Invariant: one payment per consultation, opened when the consultation is
// priced at assignment. Settlement is driven by the payment gateway; this
// package only records the outcome.
type Payment struct {
	ID             string `json:"id" db:"id"`
	ConsultationID string `json:"consultation_id" db:"consultation_id"`
	PatientID      string `json:"patient_id" db:"patient_id"`

	// AmountLeone is the amount due in Sierra Leonean leones.
	AmountLeone int64 `json:"amount_leone" db:"amount_leone"`

	Status Status `json:"status" db:"status"`

	// ExternalRef is the gateway's transaction reference, set on settlement.
	ExternalRef string `json:"external_ref,omitempty" db:"external_ref"`

	// IdempotencyKey is required for safe retries of payment-opening operations.
	IdempotencyKey string `json:"idempotency_key" db:"idempotency_key"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Terminal reports whether a payment status admits no further changes.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusFailed
}

// StatusChange is an immutable append-only history entry. Each row records
// one settlement step of a payment.
type StatusChange struct {
	ID        string `json:"id" db:"id"`
	PaymentID string `json:"payment_id" db:"payment_id"`

	FromStatus Status `json:"from_status" db:"from_status"`
	ToStatus   Status `json:"to_status" db:"to_status"`

	// Reason is optional: gateway failure code, manual note, etc.
	Reason string `json:"reason,omitempty" db:"reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
