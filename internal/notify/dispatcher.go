package notify

import "context"

// Dispatcher delivers user-facing consultation notifications (SMS/email push
// live behind concrete adapters; this core only knows the intent).
//
// Delivery contract: at-most-once, best-effort, non-blocking-on-failure.
// Callers detach dispatch from the request path, log failures, and never let
// a notification error change the outcome of the primary operation.
type Dispatcher interface {
	// NotifyPatientAssignment tells the patient an admin assigned a provider.
	NotifyPatientAssignment(ctx context.Context, consultationID, patientUserID string) error

	// NotifyProviderBooking tells the provider a patient confirmed the booking.
	NotifyProviderBooking(ctx context.Context, consultationID, providerUserID string) error

	// NotifyPatientConfirmation acknowledges the patient's own confirmation.
	NotifyPatientConfirmation(ctx context.Context, consultationID, patientUserID string) error

	// NotifyPatientAcceptance tells the patient the doctor accepted and scheduled.
	NotifyPatientAcceptance(ctx context.Context, consultationID, patientUserID string) error
}
