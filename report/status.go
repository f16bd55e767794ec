/*
status.go - Status transition and write-once timestamp rules

PURPOSE:
  Applies a status change to a report in memory. The store persists the
  result; this keeps the timestamp invariants in one testable place.

RULES:
  - approved_at is stamped the first time status enters ACTION_PLANNED or
    APPROVED, and never overwritten afterwards
  - closed_at is stamped the first time status enters CLOSED or IGNORED,
    and never overwritten afterwards
  - updated_at is refreshed on every transition, including re-entering the
    same status

The machine is intentionally permissive: any recognized status may move to
any other recognized status. Transition policy, if any, belongs to the
service layer above.
*/
package report

import "time"

// ApplyStatus moves the report to status as of now, honoring the write-once
// timestamp rules. Re-applying the current status is idempotent apart from
// updated_at.
func ApplyStatus(r *Report, status Status, now time.Time) {
	r.Status = status
	if status.MarksApproved() && r.ApprovedAt == nil {
		t := now
		r.ApprovedAt = &t
	}
	if status.MarksClosed() && r.ClosedAt == nil {
		t := now
		r.ClosedAt = &t
	}
	r.UpdatedAt = now
}
