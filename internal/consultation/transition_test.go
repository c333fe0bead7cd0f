package consultation

import (
	"errors"
	"strings"
	"testing"

	"healthconnect/internal/rbac"
)

var allStatuses = []Status{
	StatusPendingAdminReview,
	StatusAssigned,
	StatusConfirmed,
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

var allRoles = []rbac.Role{rbac.RolePatient, rbac.RoleDoctor, rbac.RoleAdmin}

// allowedEdges mirrors the lifecycle contract: every (from, to, role) triple
// outside this set must be rejected.
var allowedEdges = map[[3]string]bool{
	{"pending_admin_review", "assigned", "admin"}: true,
	{"assigned", "confirmed", "patient"}:          true,
	{"assigned", "scheduled", "doctor"}:           true,
	{"confirmed", "scheduled", "doctor"}:          true,
	{"scheduled", "in_progress", "doctor"}:        true,
	{"in_progress", "completed", "doctor"}:        true,
}

func edgeAllowed(from, to Status, role rbac.Role) bool {
	if to == StatusCancelled && !from.Terminal() && from != to {
		return role == rbac.RoleDoctor || role == rbac.RoleAdmin
	}
	return allowedEdges[[3]string{string(from), string(to), string(role)}]
}

func TestValidateStatusTransition_Exhaustive(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if from == to {
				continue
			}
			for _, role := range allRoles {
				err := ValidateStatusTransition(from, to, role)
				want := edgeAllowed(from, to, role)
				if want && err != nil {
					t.Errorf("%s -> %s by %s: expected valid, got %v", from, to, role, err)
				}
				if !want && err == nil {
					t.Errorf("%s -> %s by %s: expected invalid", from, to, role)
				}
			}
		}
	}
}

func TestValidateStatusTransition_SelfTransitionRejected(t *testing.T) {
	for _, st := range allStatuses {
		for _, role := range allRoles {
			if err := ValidateStatusTransition(st, st, role); err == nil {
				t.Errorf("%s -> %s by %s: expected rejection", st, st, role)
			}
		}
	}
}

func TestValidateStatusTransition_TerminalStatesLocked(t *testing.T) {
	for _, from := range []Status{StatusCompleted, StatusCancelled} {
		for _, to := range allStatuses {
			if from == to {
				continue
			}
			for _, role := range allRoles {
				if err := ValidateStatusTransition(from, to, role); err == nil {
					t.Errorf("%s -> %s by %s: terminal state must be locked", from, to, role)
				}
			}
		}
	}
}

func TestValidateStatusTransition_WrongRoleNamesPermittedRole(t *testing.T) {
	err := ValidateStatusTransition(StatusPendingAdminReview, StatusAssigned, rbac.RolePatient)
	if err == nil {
		t.Fatalf("expected rejection")
	}
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %T", err)
	}
	if !strings.Contains(te.Reason, "admin") {
		t.Fatalf("expected permitted role in message, got %q", te.Reason)
	}
	if te.Current != StatusPendingAdminReview || te.Target != StatusAssigned {
		t.Fatalf("expected edge carried in error, got %+v", te)
	}
}

func TestValidateStatusTransition_PatientCannotCancel(t *testing.T) {
	err := ValidateStatusTransition(StatusAssigned, StatusCancelled, rbac.RolePatient)
	if err == nil {
		t.Fatalf("expected rejection")
	}
	var te *TransitionError
	if !errors.As(err, &te) || !strings.Contains(te.Reason, "doctor or admin") {
		t.Fatalf("expected cancel roles named, got %v", err)
	}
}

func TestValidateStatusTransition_SkippingInProgressRejected(t *testing.T) {
	if err := ValidateStatusTransition(StatusScheduled, StatusCompleted, rbac.RoleDoctor); err == nil {
		t.Fatalf("scheduled -> completed must be rejected; only in_progress -> completed is valid")
	}
}

func TestValidateStatusTransition_UnknownStatusRejected(t *testing.T) {
	if err := ValidateStatusTransition(Status("archived"), StatusAssigned, rbac.RoleAdmin); err == nil {
		t.Fatalf("expected rejection of unknown current status")
	}
	if err := ValidateStatusTransition(StatusAssigned, Status("archived"), rbac.RoleAdmin); err == nil {
		t.Fatalf("expected rejection of unknown target status")
	}
}
