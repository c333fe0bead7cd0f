package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repository used in tests.
type MemoryRepo struct {
	mu      sync.Mutex
	rows    map[string]Payment
	history map[string][]StatusChange
	clock   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		rows:    make(map[string]Payment),
		history: make(map[string][]StatusChange),
		clock:   time.Now,
	}
}

func (r *MemoryRepo) Create(ctx context.Context, p Payment) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.rows[p.ID] = p
	r.history[p.ID] = append(r.history[p.ID], StatusChange{
		ID:        uuid.NewString(),
		PaymentID: p.ID,
		ToStatus:  p.Status,
		CreatedAt: now,
	})
	return p, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.rows[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) GetByConsultation(ctx context.Context, consultationID string) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.rows {
		if p.ConsultationID == consultationID {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *MemoryRepo) FindByIdempotencyKey(ctx context.Context, key string) (Payment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.rows {
		if p.IdempotencyKey == key {
			return p, true, nil
		}
	}
	return Payment{}, false, nil
}

func (r *MemoryRepo) UpdateStatusWhere(ctx context.Context, id string, expected, target Status, externalRef, reason string) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.rows[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	if p.Status != expected {
		return Payment{}, ErrStatusConflict
	}

	now := r.clock().UTC()
	p.Status = target
	if externalRef != "" {
		p.ExternalRef = externalRef
	}
	p.UpdatedAt = now
	r.rows[id] = p
	r.history[id] = append(r.history[id], StatusChange{
		ID:         uuid.NewString(),
		PaymentID:  id,
		FromStatus: expected,
		ToStatus:   target,
		Reason:     reason,
		CreatedAt:  now,
	})
	return p, nil
}

func (r *MemoryRepo) History(ctx context.Context, paymentID string) ([]StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]StatusChange, len(r.history[paymentID]))
	copy(out, r.history[paymentID])
	return out, nil
}
