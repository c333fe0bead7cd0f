package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to end users by default.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ConsultationID == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogStatusChange records a consultation status transition.
func (s *Service) LogStatusChange(ctx context.Context, actorUserID, actorRole, consultationID, from, to string) error {
	return s.Append(ctx, Event{
		Type:           EventTypeStatusChange,
		ActorUserID:    actorUserID,
		ActorRole:      actorRole,
		ConsultationID: consultationID,
		FromStatus:     from,
		ToStatus:       to,
		Message:        "status changed",
	})
}

// LogAssignment records an admin assigning a provider to a consultation.
func (s *Service) LogAssignment(ctx context.Context, actorUserID, actorRole, consultationID, providerID string) error {
	return s.Append(ctx, Event{
		Type:           EventTypeAssignment,
		ActorUserID:    actorUserID,
		ActorRole:      actorRole,
		ConsultationID: consultationID,
		ProviderID:     providerID,
		Message:        "provider assigned",
	})
}

// LogFieldUpdate records a notes/duration/schedule mutation outside a transition.
func (s *Service) LogFieldUpdate(ctx context.Context, actorUserID, actorRole, consultationID, message string) error {
	return s.Append(ctx, Event{
		Type:           EventTypeFieldUpdate,
		ActorUserID:    actorUserID,
		ActorRole:      actorRole,
		ConsultationID: consultationID,
		Message:        message,
	})
}
