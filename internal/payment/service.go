package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Service records consultation payments.
//
// Money invariants:
// - One payment per consultation, opened exactly once (idempotency key).
// - Status history is append-only; every status change writes an entry.
// - Terminal statuses (paid, failed) are never overwritten.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

var ErrInvalidArgument = errors.New("invalid argument")

type CreateRequest struct {
	ConsultationID string `json:"consultation_id"`
	PatientID      string `json:"patient_id"`
	AmountLeone    int64  `json:"amount_leone"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CreatePending opens a pending payment. Retries with the same idempotency
// key return the previously created payment unchanged.
func (s *Service) CreatePending(ctx context.Context, req CreateRequest) (Payment, error) {
	if req.ConsultationID == "" || req.PatientID == "" || req.IdempotencyKey == "" {
		return Payment{}, ErrInvalidArgument
	}
	if req.AmountLeone <= 0 {
		return Payment{}, ErrInvalidArgument
	}

	if existing, ok, err := s.repo.FindByIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
		return Payment{}, err
	} else if ok {
		return existing, nil
	}

	return s.repo.Create(ctx, Payment{
		ID:             uuid.NewString(),
		ConsultationID: req.ConsultationID,
		PatientID:      req.PatientID,
		AmountLeone:    req.AmountLeone,
		Status:         StatusPending,
		IdempotencyKey: req.IdempotencyKey,
	})
}

// OpenPending opens the payment for a freshly priced consultation. The
// idempotency key is derived from the consultation so assignment retries
// cannot double-bill.
func (s *Service) OpenPending(ctx context.Context, consultationID, patientID string, amountLeone int64) error {
	_, err := s.CreatePending(ctx, CreateRequest{
		ConsultationID: consultationID,
		PatientID:      patientID,
		AmountLeone:    amountLeone,
		IdempotencyKey: "consultation:" + consultationID,
	})
	return err
}

type GatewayResult struct {
	ExternalRef string `json:"external_ref"`
	Paid        bool   `json:"paid"`
	Reason      string `json:"reason,omitempty"`
}

// RecordGatewayStatus settles a pending payment from a gateway callback.
// A repeated callback with the same outcome is a no-op; a conflicting one
// returns ErrStatusConflict.
func (s *Service) RecordGatewayStatus(ctx context.Context, consultationID string, res GatewayResult) (Payment, error) {
	if consultationID == "" || res.ExternalRef == "" {
		return Payment{}, ErrInvalidArgument
	}

	p, err := s.repo.GetByConsultation(ctx, consultationID)
	if err != nil {
		return Payment{}, err
	}

	target := StatusFailed
	if res.Paid {
		target = StatusPaid
	}

	if p.Status.Terminal() {
		if p.Status == target {
			return p, nil
		}
		return Payment{}, ErrStatusConflict
	}

	updated, err := s.repo.UpdateStatusWhere(ctx, p.ID, p.Status, target, res.ExternalRef, res.Reason)
	if err != nil {
		return Payment{}, err
	}
	s.log.Info("payment settled",
		"payment_id", updated.ID,
		"consultation_id", consultationID,
		"status", updated.Status,
	)
	return updated, nil
}

func (s *Service) GetByConsultation(ctx context.Context, consultationID string) (Payment, error) {
	if consultationID == "" {
		return Payment{}, ErrInvalidArgument
	}
	return s.repo.GetByConsultation(ctx, consultationID)
}

func (s *Service) History(ctx context.Context, paymentID string) ([]StatusChange, error) {
	if paymentID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.History(ctx, paymentID)
}
