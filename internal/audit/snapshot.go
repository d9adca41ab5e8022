package audit

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// Snapshot field keys.
const (
	FieldID             = "id"
	FieldInitiationDate = "initiation_date"
	FieldDepartment     = "department"
	FieldProblem        = "problem"
	FieldInitiatedBy    = "initiated_by"
	FieldEquipment      = "equipment"
	FieldPart           = "part"
	FieldWorkType       = "type_of_work"
	FieldClosed         = "closed"
	FieldClosingRemarks = "closing_remarks"
	FieldAccepted       = "accepted"
	FieldAssignedTo     = "assigned_to"
	FieldTargetDate     = "target_date"
	FieldRemarks        = "remarks"
	FieldReplacedPart   = "replaced_part"
	FieldCompletionDate = "completion_date"
	FieldWorkStatus     = "work_status"
	FieldPending        = "pending"
	FieldPRNumber       = "pr_number"
	FieldPRDate         = "pr_date"
)

const dateLayout = "2006-01-02"

// Snapshot renders every persisted field of w as JSON-native values
// (string, bool or nil) so stored snapshots compare equal after a round trip.
// UpdatedAt is bookkeeping and is left out.
func Snapshot(w *domain.WorkOrder) map[string]any {
	snap := map[string]any{
		FieldID:             w.ID,
		FieldInitiationDate: w.InitiationDate.UTC().Format(time.RFC3339),
		FieldDepartment:     string(w.Department),
		FieldProblem:        w.Problem,
		FieldInitiatedBy:    w.InitiatedBy,
		FieldEquipment:      w.EquipmentID,
		FieldPart:           optString(w.PartID),
		FieldWorkType:       w.WorkTypeID,
		FieldClosingRemarks: optString(w.ClosingRemarks),
		FieldAssignedTo:     optString(w.AssignedTo),
		FieldTargetDate:     optTime(w.TargetDate, dateLayout),
		FieldRemarks:        optString(w.Remarks),
		FieldReplacedPart:   w.ReplacedPart,
		FieldCompletionDate: optTime(w.CompletionDate, time.RFC3339),
		FieldWorkStatus:     string(w.Status),
		FieldPending:        optString(w.PendingReasonID),
		FieldPRNumber:       w.PRNumber,
		FieldPRDate:         optTime(w.PRDate, dateLayout),
		FieldClosed:         nil,
		FieldAccepted:       nil,
	}
	if w.Closed != nil {
		snap[FieldClosed] = string(*w.Closed)
	}
	if w.Accepted != nil {
		snap[FieldAccepted] = *w.Accepted
	}
	return snap
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optTime(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(layout)
}
