package workflow

import (
	"strings"
	"time"

	"github.com/spec-kit/workorder-service/internal/audit"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	// utilities-owned
	Accepted        *bool
	Status          *domain.WorkStatus
	AssignedTo      *string
	TargetDate      *time.Time
	Remarks         *string
	PendingReasonID *string
	ReplacedPart    *string
	PRNumber        *string
	PRDate          *time.Time

	// production-owned
	Closed         *bool
	ClosingRemarks *string
}

func (p Patch) touchesUtilities() bool {
	return p.Accepted != nil || p.Status != nil || p.AssignedTo != nil || p.TargetDate != nil ||
		p.Remarks != nil || p.PendingReasonID != nil || p.ReplacedPart != nil ||
		p.PRNumber != nil || p.PRDate != nil
}

func (p Patch) touchesProduction() bool {
	return p.Closed != nil || p.ClosingRemarks != nil
}

// IsEmpty reports whether the patch sets nothing.
func (p Patch) IsEmpty() bool {
	return !p.touchesUtilities() && !p.touchesProduction()
}

// Update applies a partial update; the recorded action is inferred from
// what actually changed.
type Update struct {
	Patch Patch
}

func (Update) Operation() Operation { return OpUpdate }

func (u Update) authorize(actor domain.Actor) error {
	if u.Patch.IsEmpty() {
		return errorutil.NewValidationError("no fields to update", nil)
	}
	if u.Patch.touchesUtilities() {
		if err := requireUtilities(actor, OpUpdate); err != nil {
			return err
		}
	}
	if u.Patch.touchesProduction() {
		if err := requireProduction(actor, OpUpdate); err != nil {
			return err
		}
	}
	return nil
}

func (u Update) apply(m *Machine, w *domain.WorkOrder, actor domain.Actor) (domain.HistoryAction, error) {
	p := u.Patch
	before := audit.Snapshot(w)

	target, err := u.targetStatus(w.Status)
	if err != nil {
		return "", err
	}
	assigned := false
	if target != w.Status {
		if !m.CanTransition(w.Status, target) {
			return "", errorutil.NewInvalidTransition(string(OpUpdate), string(w.Status))
		}
		switch target {
		case domain.WorkStatusInProcess:
			// same assignee rules as the accept command
			var assignee *string
			if p.AssignedTo != nil {
				trimmed := strings.TrimSpace(*p.AssignedTo)
				assignee = &trimmed
			}
			w.AssignedTo = nil
			m.markAccepted(w, actor, assignee)
			assigned = true
		case domain.WorkStatusRejected:
			m.markRejected(w)
		case domain.WorkStatusCompleted:
			m.markCompleted(w)
		default:
			w.Status = target
		}
	}

	if p.AssignedTo != nil && !assigned {
		v := *p.AssignedTo
		w.AssignedTo = &v
	}
	if p.TargetDate != nil {
		v := *p.TargetDate
		w.TargetDate = &v
	}
	if p.Remarks != nil {
		v := *p.Remarks
		w.Remarks = &v
	}
	if p.PendingReasonID != nil {
		v := *p.PendingReasonID
		w.PendingReasonID = &v
	}
	if p.ReplacedPart != nil {
		w.ReplacedPart = *p.ReplacedPart
	}
	if p.PRNumber != nil {
		w.PRNumber = *p.PRNumber
	}
	if p.PRDate != nil {
		v := *p.PRDate
		w.PRDate = &v
	}

	if p.touchesProduction() {
		if w.Status != domain.WorkStatusCompleted {
			return "", errorutil.NewInvalidTransition(string(OpClose), string(w.Status))
		}
		if p.Closed != nil {
			state := domain.ClosedNo
			if *p.Closed {
				state = domain.ClosedYes
			}
			w.Closed = &state
		}
		if p.ClosingRemarks != nil {
			v := *p.ClosingRemarks
			w.ClosingRemarks = &v
		}
	}

	return audit.Diff(before, audit.Snapshot(w)).Action(), nil
}

// targetStatus resolves the status the patch asks for, cascading from
// accepted and rejecting contradictory combinations.
func (u Update) targetStatus(current domain.WorkStatus) (domain.WorkStatus, error) {
	p := u.Patch
	target := current
	if p.Status != nil {
		if !p.Status.IsValid() {
			return "", errorutil.NewValidationError("unknown work status", map[string]any{"work_status": string(*p.Status)})
		}
		target = *p.Status
	}
	if p.Accepted != nil {
		implied := domain.WorkStatusRejected
		if *p.Accepted {
			implied = domain.WorkStatusInProcess
		}
		if p.Status != nil && *p.Status != implied {
			return "", errorutil.NewValidationError("accepted conflicts with work_status", map[string]any{
				"accepted":    *p.Accepted,
				"work_status": string(*p.Status),
			})
		}
		if *p.Accepted && current != domain.WorkStatusPending {
			return "", errorutil.NewInvalidTransition(string(OpAccept), string(current))
		}
		target = implied
	}
	return target, nil
}
