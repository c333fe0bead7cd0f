package consultation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Consultation

	clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]Consultation), clock: time.Now}
}

func (r *MemoryRepo) Create(ctx context.Context, c Consultation) (Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.rows[c.ID] = c
	return c, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.rows[id]
	if !ok {
		return Consultation{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) UpdateWhereStatus(ctx context.Context, id string, expected Status, upd Update) (Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.rows[id]
	if !ok {
		return Consultation{}, ErrNotFound
	}
	if c.Status != expected {
		return Consultation{}, ErrStatusConflict
	}

	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.ProviderID != nil {
		pid := *upd.ProviderID
		c.ProviderID = &pid
	}
	if upd.ScheduledAt != nil {
		at := *upd.ScheduledAt
		c.ScheduledAt = &at
	}
	if upd.CostLeone != nil {
		c.CostLeone = *upd.CostLeone
	}
	if upd.Notes != nil {
		c.Notes = *upd.Notes
	}
	if upd.DurationMinutes != nil {
		c.DurationMinutes = *upd.DurationMinutes
	}
	c.UpdatedAt = r.clock().UTC()

	r.rows[id] = c
	return c, nil
}

func (r *MemoryRepo) ListByPatient(ctx context.Context, patientID string) ([]Consultation, error) {
	return r.list(func(c Consultation) bool { return c.PatientID == patientID })
}

func (r *MemoryRepo) ListByProvider(ctx context.Context, providerID string) ([]Consultation, error) {
	return r.list(func(c Consultation) bool {
		return c.ProviderID != nil && *c.ProviderID == providerID
	})
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Consultation, error) {
	return r.list(func(Consultation) bool { return true })
}

func (r *MemoryRepo) list(keep func(Consultation) bool) ([]Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Consultation
	for _, c := range r.rows {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
