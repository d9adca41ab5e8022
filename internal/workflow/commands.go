package workflow

import (
	"strings"
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// Accept moves a Pending work order to In_Process.
type Accept struct {
	AssignedTo *string
	TargetDate *time.Time
	Remarks    *string
}

func (Accept) Operation() Operation { return OpAccept }

func (Accept) authorize(actor domain.Actor) error {
	return requireUtilities(actor, OpAccept)
}

func (c Accept) apply(m *Machine, w *domain.WorkOrder, actor domain.Actor) (domain.HistoryAction, error) {
	if w.Status != domain.WorkStatusPending {
		return "", errorutil.NewInvalidTransition(string(OpAccept), string(w.Status))
	}
	var assignee *string
	if c.AssignedTo != nil {
		trimmed := strings.TrimSpace(*c.AssignedTo)
		assignee = &trimmed
	}
	w.AssignedTo = nil
	m.markAccepted(w, actor, assignee)
	if c.TargetDate != nil {
		v := *c.TargetDate
		w.TargetDate = &v
	}
	if c.Remarks != nil {
		v := *c.Remarks
		w.Remarks = &v
	}
	return domain.ActionAccepted, nil
}

// Reject marks a work order as declined by utilities.
type Reject struct{}

func (Reject) Operation() Operation { return OpReject }

func (Reject) authorize(actor domain.Actor) error {
	return requireUtilities(actor, OpReject)
}

func (Reject) apply(m *Machine, w *domain.WorkOrder, _ domain.Actor) (domain.HistoryAction, error) {
	if !m.CanTransition(w.Status, domain.WorkStatusRejected) {
		return "", errorutil.NewInvalidTransition(string(OpReject), string(w.Status))
	}
	m.markRejected(w)
	return domain.ActionRejected, nil
}

// Complete finishes an In_Process work order.
type Complete struct{}

func (Complete) Operation() Operation { return OpComplete }

func (Complete) authorize(actor domain.Actor) error {
	return requireUtilities(actor, OpComplete)
}

func (Complete) apply(m *Machine, w *domain.WorkOrder, _ domain.Actor) (domain.HistoryAction, error) {
	if w.Status != domain.WorkStatusInProcess {
		return "", errorutil.NewInvalidTransition(string(OpComplete), string(w.Status))
	}
	m.markCompleted(w)
	return domain.ActionCompleted, nil
}

// Close records production's sign-off on a completed work order. Closed=false
// reopens it.
type Close struct {
	Closed         *bool
	ClosingRemarks *string
}

func (Close) Operation() Operation { return OpClose }

func (Close) authorize(actor domain.Actor) error {
	return requireProduction(actor, OpClose)
}

func (c Close) apply(_ *Machine, w *domain.WorkOrder, _ domain.Actor) (domain.HistoryAction, error) {
	if c.Closed == nil {
		return "", errorutil.NewValidationError("closed value is required", map[string]any{"field": "closed"})
	}
	if w.Status != domain.WorkStatusCompleted {
		return "", errorutil.NewInvalidTransition(string(OpClose), string(w.Status))
	}
	state := domain.ClosedNo
	action := domain.ActionReopened
	if *c.Closed {
		state = domain.ClosedYes
		action = domain.ActionClosed
	}
	w.Closed = &state
	if c.ClosingRemarks != nil {
		v := *c.ClosingRemarks
		w.ClosingRemarks = &v
	}
	return action, nil
}
