package qualify

import "github.com/summitwebteam/lead-fire-cursor/platform/apperr"

// ApprovalStatus is the workflow state of a lead, combining the automatic
// verdict with any manual override.
type ApprovalStatus string

const (
	// StatusPending means no human has acted on the lead yet.
	StatusPending ApprovalStatus = "pending"
	// StatusApproved is a terminal state set only by a human approve action.
	StatusApproved ApprovalStatus = "approved"
	// StatusDisputed is a terminal state set only by a human dispute action.
	StatusDisputed ApprovalStatus = "disputed"
)

// Valid reports whether the status is one of the three known states.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDisputed:
		return true
	}
	return false
}

// IsTerminal reports whether the status was set by a human action. A terminal
// status must never be regressed by an automatic classification pass.
func (s ApprovalStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDisputed
}

// ApplyManual validates a human approve/dispute transition from the current
// status. Re-applying the same terminal state is allowed (idempotent);
// flipping a terminal state to the other terminal state is allowed because
// manual actions are authoritative. A dispute requires a reason.
func ApplyManual(current, next ApprovalStatus, reason string) (ApprovalStatus, error) {
	if !next.IsTerminal() {
		return current, apperr.BadRequest("manual transition must be approved or disputed")
	}
	if next == StatusDisputed && reason == "" {
		return current, apperr.Validation("dispute requires a reason")
	}
	return next, nil
}

// ApplyAutomatic resolves the status the classifier may write, given the
// current stored status. The classifier alone never sets a terminal state:
// passing leads stay pending awaiting human approval, failing leads stay
// pending too (disqualification is not a dispute), and the repeat
// short-circuit marks the lead pending-for-review. The only rule is that a
// terminal human decision always wins.
func ApplyAutomatic(current ApprovalStatus) ApprovalStatus {
	if current.IsTerminal() {
		return current
	}
	return StatusPending
}
