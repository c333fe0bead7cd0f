package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ConsultationsSummaryRequest requests aggregated consultation metrics,
// optionally narrowed to a single provider.

type ConsultationsSummaryRequest struct {
	Range      TimeRange `json:"range"`
	ProviderID string    `json:"provider_id,omitempty"`
}

type ConsultationsSummary struct {
	ProviderID string `json:"provider_id,omitempty"`

	Total              int `json:"total"`
	PendingAdminReview int `json:"pending_admin_review"`
	Assigned           int `json:"assigned"`
	Confirmed          int `json:"confirmed"`
	Scheduled          int `json:"scheduled"`
	InProgress         int `json:"in_progress"`
	Completed          int `json:"completed"`
	Cancelled          int `json:"cancelled"`

	VideoConsultations int `json:"video_consultations"`
	VoiceConsultations int `json:"voice_consultations"`
	SMSConsultations   int `json:"sms_consultations"`

	TotalDurationMinutes   int `json:"total_duration_minutes"`
	AverageDurationMinutes int `json:"average_duration_minutes"`
}

// RevenueSummaryRequest requests aggregated billing metrics. Revenue is
// derived from payment rows, never recomputed from consultation prices.

type RevenueSummaryRequest struct {
	Range TimeRange `json:"range"`
}

type RevenueSummary struct {
	BilledLeone    int64 `json:"billed_leone"`
	CollectedLeone int64 `json:"collected_leone"`
	FailedLeone    int64 `json:"failed_leone"`
	PendingLeone   int64 `json:"pending_leone"`

	PaymentsTotal   int `json:"payments_total"`
	PaymentsPaid    int `json:"payments_paid"`
	PaymentsFailed  int `json:"payments_failed"`
	PaymentsPending int `json:"payments_pending"`
}
