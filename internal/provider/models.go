package provider

import "time"

// Provider is a healthcare professional entity. It is distinct from the
// doctor's login identity: UserID links the provider profile to the account
// that authenticates, and workflow ownership checks go through that link.
type Provider struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	Name      string `json:"name" db:"name"`
	Specialty string `json:"specialty,omitempty" db:"specialty"`

	// IsAvailable gates assignment and provider switches. An unavailable
	// provider keeps existing consultations but receives no new ones.
	IsAvailable bool `json:"is_available" db:"is_available"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
