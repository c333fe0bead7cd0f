package consultation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"healthconnect/internal/audit"
	"healthconnect/internal/notify"
	"healthconnect/internal/provider"
	"healthconnect/internal/rbac"
	"healthconnect/pkg/utils"

	"github.com/google/uuid"
)

var (
	// ErrForbidden covers wrong-role and wrong-ownership attempts.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput covers structurally bad requests.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable means the target provider exists but is not
	// taking new consultations.
	ErrProviderUnavailable = errors.New("provider is not available")
)

// Identity is the authenticated caller. It is threaded explicitly into every
// workflow call; the orchestrator never reads ambient session state.
type Identity struct {
	UserID string
	Role   rbac.Role
}

// Locker serializes multi-step mutations per consultation across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// PaymentRecorder opens a pending payment when a consultation is priced at
// assignment. Failures are logged and swallowed; payment settlement is owned
// by the payment gateway, not this workflow.
type PaymentRecorder interface {
	OpenPending(ctx context.Context, consultationID, patientID string, amountLeone int64) error
}

// Service orchestrates the consultation workflow: it sequences validator
// calls, entity lookups, conditional mutations, and best-effort side effects.
type Service struct {
	repo      Repository
	providers provider.Repository
	notifier  notify.Dispatcher
	payments  PaymentRecorder
	audit     *audit.Service
	locker    Locker
	log       *slog.Logger

	notifyTimeout time.Duration
	notifyAsync   bool
}

// Options carries the optional collaborators of the workflow service.
type Options struct {
	Payments      PaymentRecorder
	Audit         *audit.Service
	Locker        Locker
	Logger        *slog.Logger
	NotifyTimeout time.Duration
}

func NewService(repo Repository, providers provider.Repository, notifier notify.Dispatcher, opts Options) *Service {
	s := &Service{
		repo:          repo,
		providers:     providers,
		notifier:      notifier,
		payments:      opts.Payments,
		audit:         opts.Audit,
		locker:        opts.Locker,
		log:           opts.Logger,
		notifyTimeout: opts.NotifyTimeout,
		notifyAsync:   true,
	}
	if s.locker == nil {
		s.locker = noopLocker{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = 5 * time.Second
	}
	return s
}

/* ===================== CREATE / READ ===================== */

type CreateRequest struct {
	// PatientID may be set by an admin booking on behalf of a patient.
	// Patients book only for themselves.
	PatientID     string
	Type          Type
	PreferredDate time.Time
	Notes         string
}

func (s *Service) Create(ctx context.Context, actor Identity, req CreateRequest) (Consultation, error) {
	switch actor.Role {
	case rbac.RolePatient:
		if req.PatientID == "" {
			req.PatientID = actor.UserID
		}
		if req.PatientID != actor.UserID {
			return Consultation{}, fmt.Errorf("%w: patients can only book consultations for themselves", ErrForbidden)
		}
	case rbac.RoleAdmin:
		if req.PatientID == "" {
			return Consultation{}, fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
		}
	default:
		return Consultation{}, fmt.Errorf("%w: only patients or admins may create consultations", ErrForbidden)
	}

	if !req.Type.Known() {
		return Consultation{}, fmt.Errorf("%w: unknown consultation_type %q", ErrInvalidInput, req.Type)
	}
	if req.PreferredDate.IsZero() {
		return Consultation{}, fmt.Errorf("%w: preferred_date is required", ErrInvalidInput)
	}

	cost, _ := DefaultCostLeone(req.Type)
	c := Consultation{
		ID:            uuid.NewString(),
		PatientID:     req.PatientID,
		Type:          req.Type,
		Status:        StatusPendingAdminReview,
		PreferredDate: req.PreferredDate,
		CostLeone:     cost,
		Notes:         req.Notes,
	}
	return s.repo.Create(ctx, c)
}

// Get returns a consultation to an involved party or an admin.
// Doctors resolve through their provider profile; a consultation that is not
// theirs reads as not found, never as forbidden.
func (s *Service) Get(ctx context.Context, actor Identity, id string) (Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Consultation{}, err
	}

	switch actor.Role {
	case rbac.RoleAdmin:
		return c, nil
	case rbac.RolePatient:
		if c.PatientID != actor.UserID {
			return Consultation{}, fmt.Errorf("%w: you are not a party to this consultation", ErrForbidden)
		}
		return c, nil
	case rbac.RoleDoctor:
		prov, err := s.providers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return Consultation{}, err
		}
		if c.ProviderID == nil || *c.ProviderID != prov.ID {
			return Consultation{}, ErrNotFound
		}
		return c, nil
	default:
		return Consultation{}, fmt.Errorf("%w: unknown role", ErrForbidden)
	}
}

// List returns the role-scoped consultation listing.
func (s *Service) List(ctx context.Context, actor Identity) ([]Consultation, error) {
	switch actor.Role {
	case rbac.RolePatient:
		return s.repo.ListByPatient(ctx, actor.UserID)
	case rbac.RoleDoctor:
		prov, err := s.providers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		return s.repo.ListByProvider(ctx, prov.ID)
	case rbac.RoleAdmin:
		return s.repo.ListAll(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown role", ErrForbidden)
	}
}

/* ===================== ASSIGN (ADMIN) ===================== */

type AssignRequest struct {
	ProviderID  string
	ScheduledAt *time.Time
	CostLeone   *int64
}

// Assign moves a consultation out of admin review: it binds the provider,
// prices the consultation, and settles the appointment time.
func (s *Service) Assign(ctx context.Context, actor Identity, id string, req AssignRequest) (Consultation, error) {
	if actor.Role != rbac.RoleAdmin {
		return Consultation{}, fmt.Errorf("%w: only admins may assign consultations", ErrForbidden)
	}
	if req.ProviderID == "" {
		return Consultation{}, fmt.Errorf("%w: provider_id is required", ErrInvalidInput)
	}

	var out Consultation
	err := s.runLocked(ctx, id, func(ctx context.Context) error {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c.Status != StatusPendingAdminReview {
			return &TransitionError{Current: c.Status, Target: StatusAssigned,
				Reason: fmt.Sprintf("consultations can only be assigned from %s", StatusPendingAdminReview)}
		}
		if err := ValidateStatusTransition(c.Status, StatusAssigned, actor.Role); err != nil {
			return err
		}

		prov, err := s.providers.GetByID(ctx, req.ProviderID)
		if err != nil {
			return err
		}
		if !prov.IsAvailable {
			return ErrProviderUnavailable
		}

		cost := c.CostLeone
		if req.CostLeone != nil {
			cost = *req.CostLeone
		} else if def, ok := DefaultCostLeone(c.Type); ok {
			cost = def
		}
		if cost <= 0 {
			return fmt.Errorf("%w: cost_leone must be a positive amount", ErrInvalidInput)
		}

		scheduledAt := c.PreferredDate
		if req.ScheduledAt != nil {
			scheduledAt = *req.ScheduledAt
		}

		status := StatusAssigned
		updated, err := s.repo.UpdateWhereStatus(ctx, id, c.Status, Update{
			Status:      &status,
			ProviderID:  &req.ProviderID,
			ScheduledAt: &scheduledAt,
			CostLeone:   &cost,
		})
		if err != nil {
			return err
		}
		out = updated

		s.auditAssignment(ctx, actor, updated.ID, req.ProviderID)
		s.auditStatusChange(ctx, actor, updated.ID, c.Status, status)

		if s.payments != nil {
			if err := s.payments.OpenPending(ctx, updated.ID, updated.PatientID, cost); err != nil {
				s.log.Warn("pending payment not recorded", "consultation_id", updated.ID, "err", err)
			}
		}

		s.dispatch("patient_assignment", func(ctx context.Context) error {
			return s.notifier.NotifyPatientAssignment(ctx, updated.ID, updated.PatientID)
		})
		return nil
	})
	if err != nil {
		return Consultation{}, err
	}
	return out, nil
}

/* ===================== CONFIRM / SWITCH (PATIENT) ===================== */

type ConfirmRequest struct {
	ProviderID string
	Confirmed  bool
}

// Confirm lets the owning patient accept the assigned provider, or switch to
// a different provider without confirming (status stays assigned).
func (s *Service) Confirm(ctx context.Context, actor Identity, id string, req ConfirmRequest) (Consultation, error) {
	if actor.Role != rbac.RolePatient {
		return Consultation{}, fmt.Errorf("%w: only patients may confirm consultations", ErrForbidden)
	}
	if req.ProviderID == "" {
		return Consultation{}, fmt.Errorf("%w: provider_id is required", ErrInvalidInput)
	}

	var out Consultation
	var providerUserID string
	err := s.runLocked(ctx, id, func(ctx context.Context) error {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		// Ownership comes first: a non-owner learns nothing about status.
		if c.PatientID != actor.UserID {
			return fmt.Errorf("%w: you do not own this consultation", ErrForbidden)
		}
		if c.Status != StatusAssigned {
			target := StatusAssigned
			if req.Confirmed {
				target = StatusConfirmed
			}
			return &TransitionError{Current: c.Status, Target: target,
				Reason: fmt.Sprintf("consultations can only be confirmed or switched from %s", StatusAssigned)}
		}

		prov, err := s.providers.GetByID(ctx, req.ProviderID)
		if err != nil {
			return err
		}
		providerUserID = prov.UserID

		switching := c.ProviderID == nil || *c.ProviderID != req.ProviderID
		if switching && !prov.IsAvailable {
			return ErrProviderUnavailable
		}

		upd := Update{ProviderID: &req.ProviderID}
		if req.Confirmed {
			if err := ValidateStatusTransition(c.Status, StatusConfirmed, actor.Role); err != nil {
				return err
			}
			status := StatusConfirmed
			upd.Status = &status
			if c.ScheduledAt == nil {
				at := c.PreferredDate
				upd.ScheduledAt = &at
			}
		}

		updated, err := s.repo.UpdateWhereStatus(ctx, id, c.Status, upd)
		if err != nil {
			return err
		}
		out = updated

		if req.Confirmed {
			s.auditStatusChange(ctx, actor, updated.ID, c.Status, StatusConfirmed)
			s.dispatch("provider_booking", func(ctx context.Context) error {
				return s.notifier.NotifyProviderBooking(ctx, updated.ID, providerUserID)
			})
			s.dispatch("patient_confirmation", func(ctx context.Context) error {
				return s.notifier.NotifyPatientConfirmation(ctx, updated.ID, updated.PatientID)
			})
		}
		return nil
	})
	if err != nil {
		return Consultation{}, err
	}
	return out, nil
}

/* ===================== DOCTOR UPDATE ===================== */

type DoctorUpdateRequest struct {
	Status          *Status
	Notes           *string
	DurationMinutes *int
	ScheduledAt     *time.Time
}

// DoctorUpdate lets a doctor drive their own consultations through the
// lifecycle and record clinical fields. Each present field is validated
// independently; a consultation owned by another provider reads as not found.
func (s *Service) DoctorUpdate(ctx context.Context, actor Identity, id string, req DoctorUpdateRequest) (Consultation, error) {
	if actor.Role != rbac.RoleDoctor {
		return Consultation{}, fmt.Errorf("%w: only doctors may use this operation", ErrForbidden)
	}

	prov, err := s.providers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return Consultation{}, err
	}

	var out Consultation
	err = s.runLocked(ctx, id, func(ctx context.Context) error {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c.ProviderID == nil || *c.ProviderID != prov.ID {
			return ErrNotFound
		}

		upd, statusChanged, err := s.buildFieldUpdate(c, actor, req.Status, req.Notes, req.DurationMinutes, req.ScheduledAt)
		if err != nil {
			return err
		}
		if upd == (Update{}) {
			out = c
			return nil
		}

		updated, err := s.repo.UpdateWhereStatus(ctx, id, c.Status, upd)
		if err != nil {
			return err
		}
		out = updated

		if statusChanged {
			s.auditStatusChange(ctx, actor, updated.ID, c.Status, *req.Status)
			if *req.Status == StatusScheduled {
				s.dispatch("patient_acceptance", func(ctx context.Context) error {
					return s.notifier.NotifyPatientAcceptance(ctx, updated.ID, updated.PatientID)
				})
			}
		} else {
			s.auditFieldUpdate(ctx, actor, updated.ID)
		}
		return nil
	})
	if err != nil {
		return Consultation{}, err
	}
	return out, nil
}

/* ===================== GENERIC UPDATE (DOCTOR/ADMIN) ===================== */

// genericStatusTargets is the narrower status set reachable through the
// generic update operation.
var genericStatusTargets = map[Status]struct{}{
	StatusScheduled:  {},
	StatusInProgress: {},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

type UpdateRequest struct {
	Status          *Status
	Notes           *string
	DurationMinutes *int
}

// Update is the doctor/admin maintenance operation. Admins may act on any
// consultation; doctors only on their own, with mismatches reading as not
// found. Patients are always refused.
func (s *Service) Update(ctx context.Context, actor Identity, id string, req UpdateRequest) (Consultation, error) {
	var provID string
	switch actor.Role {
	case rbac.RoleAdmin:
		// no ownership restriction
	case rbac.RoleDoctor:
		prov, err := s.providers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return Consultation{}, err
		}
		provID = prov.ID
	default:
		return Consultation{}, fmt.Errorf("%w: patients may not update consultations", ErrForbidden)
	}

	var out Consultation
	err := s.runLocked(ctx, id, func(ctx context.Context) error {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if actor.Role == rbac.RoleDoctor && (c.ProviderID == nil || *c.ProviderID != provID) {
			return ErrNotFound
		}

		if req.Status != nil && *req.Status != c.Status {
			if _, ok := genericStatusTargets[*req.Status]; !ok {
				return &TransitionError{Current: c.Status, Target: *req.Status,
					Reason: fmt.Sprintf("status %s cannot be set through this operation", *req.Status)}
			}
		}

		upd, statusChanged, err := s.buildFieldUpdate(c, actor, req.Status, req.Notes, req.DurationMinutes, nil)
		if err != nil {
			return err
		}
		if upd == (Update{}) {
			out = c
			return nil
		}

		updated, err := s.repo.UpdateWhereStatus(ctx, id, c.Status, upd)
		if err != nil {
			return err
		}
		out = updated

		if statusChanged {
			s.auditStatusChange(ctx, actor, updated.ID, c.Status, *req.Status)
		} else {
			s.auditFieldUpdate(ctx, actor, updated.ID)
		}
		return nil
	})
	if err != nil {
		return Consultation{}, err
	}
	return out, nil
}

/* ===================== INTERNAL ===================== */

// buildFieldUpdate validates each requested field against the consultation's
// current status and assembles the conditional write. Status equality is a
// no-op: the validator is only consulted when the status actually changes.
func (s *Service) buildFieldUpdate(c Consultation, actor Identity, status *Status, notes *string, durationMinutes *int, scheduledAt *time.Time) (Update, bool, error) {
	var upd Update
	statusChanged := false

	if status != nil && *status != c.Status {
		if err := ValidateStatusTransition(c.Status, *status, actor.Role); err != nil {
			return Update{}, false, err
		}
		upd.Status = status
		statusChanged = true
	}

	if notes != nil {
		if err := ValidateRolePermission(c.Status, actor.Role, ActionUpdateNotes); err != nil {
			return Update{}, false, err
		}
		upd.Notes = notes
	}

	if durationMinutes != nil {
		if err := ValidateRolePermission(c.Status, actor.Role, ActionUpdateDuration); err != nil {
			return Update{}, false, err
		}
		if *durationMinutes <= 0 {
			return Update{}, false, fmt.Errorf("%w: duration_minutes must be positive", ErrInvalidInput)
		}
		upd.DurationMinutes = durationMinutes
	}

	if scheduledAt != nil {
		if err := ValidateRolePermission(c.Status, actor.Role, ActionReschedule); err != nil {
			return Update{}, false, err
		}
		upd.ScheduledAt = scheduledAt
	}

	return upd, statusChanged, nil
}

func (s *Service) runLocked(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, "lock:consultation:"+id, fn)
	if errors.Is(err, utils.ErrLockNotAcquired) {
		return ErrStatusConflict
	}
	return err
}

// dispatch fires a notification without coupling it to the request. Errors
// are logged and swallowed: delivery is at-most-once, best-effort.
func (s *Service) dispatch(name string, fn func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn("notification dispatch failed", "notification", name, "err", err)
		}
	}
	if s.notifyAsync {
		go run()
		return
	}
	run()
}

func (s *Service) auditStatusChange(ctx context.Context, actor Identity, id string, from, to Status) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogStatusChange(ctx, actor.UserID, string(actor.Role), id, string(from), string(to)); err != nil {
		s.log.Warn("audit append failed", "consultation_id", id, "err", err)
	}
}

func (s *Service) auditAssignment(ctx context.Context, actor Identity, id, providerID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAssignment(ctx, actor.UserID, string(actor.Role), id, providerID); err != nil {
		s.log.Warn("audit append failed", "consultation_id", id, "err", err)
	}
}

func (s *Service) auditFieldUpdate(ctx context.Context, actor Identity, id string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogFieldUpdate(ctx, actor.UserID, string(actor.Role), id, "clinical fields updated"); err != nil {
		s.log.Warn("audit append failed", "consultation_id", id, "err", err)
	}
}
