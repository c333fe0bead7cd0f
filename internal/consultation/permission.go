package consultation

import (
	"fmt"

	"healthconnect/internal/rbac"
)

// Action is a state/role-gated mutation that is not itself a status transition.
type Action string

const (
	ActionUpdateNotes    Action = "update_notes"
	ActionUpdateDuration Action = "update_duration"
	ActionReschedule     Action = "reschedule"
)

// PermissionError explains a denied non-transition action.
type PermissionError struct {
	Status Status
	Role   rbac.Role
	Action Action
	Reason string
}

func (e *PermissionError) Error() string { return e.Reason }

// ValidateRolePermission decides whether role may perform action on a
// consultation in the given status. Pure function, never panics.
//
// Boundaries:
// - update_notes: doctor/admin while the consultation is not terminal;
//   completed and cancelled lock notes from further edits.
// - update_duration: doctor/admin once the session has run, i.e. from
//   in_progress or completed. Duration describes elapsed session time and
//   cannot be set on consultations that have not started.
// - reschedule: doctor/admin only from confirmed or scheduled; once the
//   session is in_progress the time can no longer move.
// Patients may perform none of these.
func ValidateRolePermission(current Status, role rbac.Role, action Action) error {
	deny := func(reason string) error {
		return &PermissionError{Status: current, Role: role, Action: action, Reason: reason}
	}

	if role != rbac.RoleDoctor && role != rbac.RoleAdmin {
		return deny(fmt.Sprintf("only doctor or admin may %s", actionVerb(action)))
	}
	if !current.Known() {
		return deny(fmt.Sprintf("unknown consultation status %q", current))
	}

	switch action {
	case ActionUpdateNotes:
		if current.Terminal() {
			return deny(fmt.Sprintf("notes are locked once a consultation is %s", current))
		}
		return nil

	case ActionUpdateDuration:
		if current != StatusInProgress && current != StatusCompleted {
			return deny("duration can only be recorded once the consultation is in progress or completed")
		}
		return nil

	case ActionReschedule:
		if current != StatusConfirmed && current != StatusScheduled {
			return deny("consultations can only be rescheduled while confirmed or scheduled")
		}
		return nil

	default:
		return deny(fmt.Sprintf("unknown action %q", action))
	}
}

func actionVerb(a Action) string {
	switch a {
	case ActionUpdateNotes:
		return "update notes"
	case ActionUpdateDuration:
		return "update duration"
	case ActionReschedule:
		return "reschedule"
	default:
		return string(a)
	}
}
