package reporting

import (
	"context"
	"sync"
	"time"

	"healthconnect/internal/consultation"
	"healthconnect/internal/payment"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development.

type MemoryRepo struct {
	mu sync.Mutex

	Consultations []consultation.Consultation
	Payments      []payment.Payment
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListConsultations(ctx context.Context, from, to time.Time, providerID string) ([]consultation.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]consultation.Consultation, 0)
	for _, c := range r.Consultations {
		if !c.CreatedAt.IsZero() {
			if c.CreatedAt.Before(from) || !c.CreatedAt.Before(to) {
				continue
			}
		}
		if providerID != "" && (c.ProviderID == nil || *c.ProviderID != providerID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) ListPayments(ctx context.Context, from, to time.Time) ([]payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]payment.Payment, 0)
	for _, p := range r.Payments {
		if !p.CreatedAt.IsZero() {
			if p.CreatedAt.Before(from) || !p.CreatedAt.Before(to) {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}
