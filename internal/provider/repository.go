package provider

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("provider not found")

// Repository is the read surface the consultation workflow needs from the
// provider directory. The directory itself is managed elsewhere; this core
// only looks providers up and checks availability.
type Repository interface {
	GetByID(ctx context.Context, id string) (Provider, error)
	// GetByUserID resolves a doctor's provider profile from their login identity.
	GetByUserID(ctx context.Context, userID string) (Provider, error)
}
