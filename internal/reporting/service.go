package reporting

import (
	"context"
	"errors"
	"time"

	"healthconnect/internal/consultation"
	"healthconnect/internal/payment"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting. Implementations should
// read from the same rows the workflow writes; reporting never mutates.

type Repository interface {
	ListConsultations(ctx context.Context, from, to time.Time, providerID string) ([]consultation.Consultation, error)
	ListPayments(ctx context.Context, from, to time.Time) ([]payment.Payment, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) ConsultationsSummary(ctx context.Context, req ConsultationsSummaryRequest) (ConsultationsSummary, error) {
	if err := validateRange(req.Range); err != nil {
		return ConsultationsSummary{}, err
	}
	if s.repo == nil {
		return ConsultationsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListConsultations(ctx, req.Range.From, req.Range.To, req.ProviderID)
	if err != nil {
		return ConsultationsSummary{}, err
	}

	out := ConsultationsSummary{ProviderID: req.ProviderID}
	for _, c := range rows {
		out.Total++
		out.TotalDurationMinutes += c.DurationMinutes

		switch c.Status {
		case consultation.StatusPendingAdminReview:
			out.PendingAdminReview++
		case consultation.StatusAssigned:
			out.Assigned++
		case consultation.StatusConfirmed:
			out.Confirmed++
		case consultation.StatusScheduled:
			out.Scheduled++
		case consultation.StatusInProgress:
			out.InProgress++
		case consultation.StatusCompleted:
			out.Completed++
		case consultation.StatusCancelled:
			out.Cancelled++
		}

		switch c.Type {
		case consultation.TypeVideo:
			out.VideoConsultations++
		case consultation.TypeVoice:
			out.VoiceConsultations++
		case consultation.TypeSMS:
			out.SMSConsultations++
		}
	}
	if out.Total > 0 {
		out.AverageDurationMinutes = out.TotalDurationMinutes / out.Total
	}
	return out, nil
}

func (s *Service) RevenueSummary(ctx context.Context, req RevenueSummaryRequest) (RevenueSummary, error) {
	if err := validateRange(req.Range); err != nil {
		return RevenueSummary{}, err
	}
	if s.repo == nil {
		return RevenueSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListPayments(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return RevenueSummary{}, err
	}

	var out RevenueSummary
	for _, p := range rows {
		out.PaymentsTotal++
		out.BilledLeone += p.AmountLeone
		switch p.Status {
		case payment.StatusPaid:
			out.PaymentsPaid++
			out.CollectedLeone += p.AmountLeone
		case payment.StatusFailed:
			out.PaymentsFailed++
			out.FailedLeone += p.AmountLeone
		case payment.StatusPending:
			out.PaymentsPending++
			out.PendingLeone += p.AmountLeone
		}
	}
	return out, nil
}

func validateRange(r TimeRange) error {
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidRequest
	}
	return nil
}
