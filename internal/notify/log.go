package notify

import (
	"context"
	"log/slog"
)

// LogDispatcher writes notification intents to the structured log instead of
// delivering them. Used in local/dev environments and as a safe default when
// no real channel adapter is wired.
type LogDispatcher struct {
	Log *slog.Logger
}

func (d LogDispatcher) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

func (d LogDispatcher) NotifyPatientAssignment(ctx context.Context, consultationID, patientUserID string) error {
	d.logger().InfoContext(ctx, "notify patient assignment", "consultation_id", consultationID, "user_id", patientUserID)
	return nil
}

func (d LogDispatcher) NotifyProviderBooking(ctx context.Context, consultationID, providerUserID string) error {
	d.logger().InfoContext(ctx, "notify provider booking", "consultation_id", consultationID, "user_id", providerUserID)
	return nil
}

func (d LogDispatcher) NotifyPatientConfirmation(ctx context.Context, consultationID, patientUserID string) error {
	d.logger().InfoContext(ctx, "notify patient confirmation", "consultation_id", consultationID, "user_id", patientUserID)
	return nil
}

func (d LogDispatcher) NotifyPatientAcceptance(ctx context.Context, consultationID, patientUserID string) error {
	d.logger().InfoContext(ctx, "notify patient acceptance", "consultation_id", consultationID, "user_id", patientUserID)
	return nil
}
