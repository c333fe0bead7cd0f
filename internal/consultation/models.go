package consultation

import "time"

// Status is the closed consultation lifecycle state set. All permission and
// transition checks key off these values; there are no other states.
type Status string

const (
	StatusPendingAdminReview Status = "pending_admin_review"
	StatusAssigned           Status = "assigned"
	StatusConfirmed          Status = "confirmed"
	StatusScheduled          Status = "scheduled"
	StatusInProgress         Status = "in_progress"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
)

// Known reports whether s is a defined lifecycle state.
func (s Status) Known() bool {
	switch s {
	case StatusPendingAdminReview, StatusAssigned, StatusConfirmed,
		StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal states accept no further status mutation.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Type classifies the consultation channel.
type Type string

const (
	TypeVideo Type = "video"
	TypeVoice Type = "voice"
	TypeSMS   Type = "sms"
)

func (t Type) Known() bool {
	switch t {
	case TypeVideo, TypeVoice, TypeSMS:
		return true
	default:
		return false
	}
}

// Default consultation prices in leones, keyed by channel. Used whenever an
// assignment does not carry an explicit cost.
var defaultCostLeone = map[Type]int64{
	TypeVideo: 15000,
	TypeVoice: 10000,
	TypeSMS:   5000,
}

// DefaultCostLeone returns the fixed price for a consultation type.
func DefaultCostLeone(t Type) (int64, bool) {
	c, ok := defaultCostLeone[t]
	return c, ok
}

// Consultation is the central entity of the booking workflow.
//
// Invariants:
// - ProviderID is non-nil for every status after pending_admin_review.
// - CostLeone is a positive integer once assignment occurs.
// - PatientID never changes after creation.
type Consultation struct {
	ID string `json:"id" db:"id"`

	PatientID  string  `json:"patient_id" db:"patient_id"`
	ProviderID *string `json:"provider_id,omitempty" db:"provider_id"`

	Type   Type   `json:"consultation_type" db:"consultation_type"`
	Status Status `json:"status" db:"status"`

	// PreferredDate is the patient's requested date, set at creation.
	PreferredDate time.Time `json:"preferred_date" db:"preferred_date"`
	// ScheduledAt is the confirmed appointment time, set during assignment
	// or confirmation.
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`

	CostLeone int64 `json:"cost_leone" db:"cost_leone"`

	Notes           string `json:"notes,omitempty" db:"notes"`
	DurationMinutes int    `json:"duration_minutes,omitempty" db:"duration_minutes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
