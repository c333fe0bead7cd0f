package consultation

import (
	"fmt"
	"strings"

	"healthconnect/internal/rbac"
)

// TransitionError explains a rejected status transition. It carries the
// attempted edge so the HTTP layer can echo current/target back to clients.
type TransitionError struct {
	Current Status
	Target  Status
	Reason  string
}

func (e *TransitionError) Error() string { return e.Reason }

type edge struct {
	from, to Status
}

// transitionRoles lists, per lifecycle edge, the roles allowed to drive it.
//
// Two paths lead into scheduled and both must stay open: the patient path
// (assigned -> confirmed -> scheduled) and the doctor-direct path
// (assigned -> scheduled, the doctor accepting without an explicit patient
// confirmation).
//
// Cancellation is handled separately: any non-terminal state may be cancelled
// by a doctor or an admin.
var transitionRoles = map[edge][]rbac.Role{
	{StatusPendingAdminReview, StatusAssigned}: {rbac.RoleAdmin},
	{StatusAssigned, StatusConfirmed}:          {rbac.RolePatient},
	{StatusAssigned, StatusScheduled}:          {rbac.RoleDoctor},
	{StatusConfirmed, StatusScheduled}:         {rbac.RoleDoctor},
	{StatusScheduled, StatusInProgress}:        {rbac.RoleDoctor},
	{StatusInProgress, StatusCompleted}:        {rbac.RoleDoctor},
}

var cancelRoles = []rbac.Role{rbac.RoleDoctor, rbac.RoleAdmin}

// ValidateStatusTransition decides whether role may move a consultation from
// current to target. It is a pure function and never panics.
//
// Callers short-circuit self-transitions (current == target) as a no-op before
// invoking the validator; if called anyway, the validator rejects them.
func ValidateStatusTransition(current, target Status, role rbac.Role) error {
	if !current.Known() {
		return &TransitionError{Current: current, Target: target,
			Reason: fmt.Sprintf("unknown current status %q", current)}
	}
	if !target.Known() {
		return &TransitionError{Current: current, Target: target,
			Reason: fmt.Sprintf("unknown target status %q", target)}
	}
	if current == target {
		return &TransitionError{Current: current, Target: target,
			Reason: fmt.Sprintf("consultation is already %s", current)}
	}
	if current.Terminal() {
		return &TransitionError{Current: current, Target: target,
			Reason: fmt.Sprintf("consultation is %s; no further status changes are allowed", current)}
	}

	if target == StatusCancelled {
		if roleIn(role, cancelRoles) {
			return nil
		}
		return &TransitionError{Current: current, Target: target,
			Reason: fmt.Sprintf("only %s may cancel a consultation", roleList(cancelRoles))}
	}

	allowed, ok := transitionRoles[edge{from: current, to: target}]
	if !ok {
		return &TransitionError{Current: current, Target: target,
			Reason: fmt.Sprintf("cannot move a consultation from %s to %s", current, target)}
	}
	if !roleIn(role, allowed) {
		return &TransitionError{Current: current, Target: target,
			Reason: fmt.Sprintf("only %s may move a consultation from %s to %s", roleList(allowed), current, target)}
	}
	return nil
}

func roleIn(role rbac.Role, set []rbac.Role) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}

func roleList(set []rbac.Role) string {
	parts := make([]string, len(set))
	for i, r := range set {
		parts[i] = string(r)
	}
	return strings.Join(parts, " or ")
}
