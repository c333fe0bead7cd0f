package notify

import (
	"context"
	"sync"
)

// Recorder captures dispatched notifications for tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent

	// Err, when set, is returned from every dispatch. Lets tests prove that
	// notification failures never fail the primary operation.
	Err error
}

type Sent struct {
	Kind           string
	ConsultationID string
	UserID         string
}

const (
	KindPatientAssignment   = "patient_assignment"
	KindProviderBooking     = "provider_booking"
	KindPatientConfirmation = "patient_confirmation"
	KindPatientAcceptance   = "patient_acceptance"
)

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) record(kind, consultationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Kind: kind, ConsultationID: consultationID, UserID: userID})
	return r.Err
}

func (r *Recorder) NotifyPatientAssignment(ctx context.Context, consultationID, patientUserID string) error {
	return r.record(KindPatientAssignment, consultationID, patientUserID)
}

func (r *Recorder) NotifyProviderBooking(ctx context.Context, consultationID, providerUserID string) error {
	return r.record(KindProviderBooking, consultationID, providerUserID)
}

func (r *Recorder) NotifyPatientConfirmation(ctx context.Context, consultationID, patientUserID string) error {
	return r.record(KindPatientConfirmation, consultationID, patientUserID)
}

func (r *Recorder) NotifyPatientAcceptance(ctx context.Context, consultationID, patientUserID string) error {
	return r.record(KindPatientAcceptance, consultationID, patientUserID)
}

func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}
