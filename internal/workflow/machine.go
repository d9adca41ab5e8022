// Package workflow holds the work order state machine. Apply is pure: it
// never touches storage and never mutates its input.
package workflow

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/audit"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// Operation names a lifecycle command.
type Operation string

const (
	OpAccept   Operation = "accept"
	OpReject   Operation = "reject"
	OpComplete Operation = "complete"
	OpClose    Operation = "close"
	OpUpdate   Operation = "update"
)

// Command is a lifecycle request against one work order.
type Command interface {
	Operation() Operation
	authorize(actor domain.Actor) error
	apply(m *Machine, w *domain.WorkOrder, actor domain.Actor) (domain.HistoryAction, error)
}

// Outcome is the result of a successful transition.
type Outcome struct {
	Before  *domain.WorkOrder
	After   *domain.WorkOrder
	Action  domain.HistoryAction
	Changes audit.ChangeSet
}

// Machine applies commands to work orders.
type Machine struct {
	// StrictReject limits reject to Pending work orders.
	StrictReject bool
	Now          func() time.Time
}

// NewMachine returns a machine using the wall clock.
func NewMachine(strictReject bool) *Machine {
	return &Machine{StrictReject: strictReject, Now: time.Now}
}

// Authorize checks the actor's capability for cmd without looking at any record.
func (m *Machine) Authorize(cmd Command, actor domain.Actor) error {
	return cmd.authorize(actor)
}

// Apply validates cmd against current and returns the next state. current is
// left untouched; on error no state change is implied.
func (m *Machine) Apply(current *domain.WorkOrder, cmd Command, actor domain.Actor) (Outcome, error) {
	if current == nil {
		return Outcome{}, errorutil.NewNotFound("work order", nil)
	}
	if err := cmd.authorize(actor); err != nil {
		return Outcome{}, err
	}
	next := current.Clone()
	action, err := cmd.apply(m, next, actor)
	if err != nil {
		return Outcome{}, err
	}
	now := m.now()
	next.UpdatedAt = now
	return Outcome{
		Before:  current,
		After:   next,
		Action:  action,
		Changes: audit.Diff(audit.Snapshot(current), audit.Snapshot(next)),
	}, nil
}

func (m *Machine) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

var allowedTransitions = map[domain.WorkStatus][]domain.WorkStatus{
	domain.WorkStatusPending:   {domain.WorkStatusInProcess, domain.WorkStatusRejected},
	domain.WorkStatusInProcess: {domain.WorkStatusCompleted},
	domain.WorkStatusCompleted: {},
	domain.WorkStatusRejected:  {},
}

// CanTransition reports whether status may move from current to next. Under
// the lenient reject policy any status may move to Rejected.
func (m *Machine) CanTransition(current, next domain.WorkStatus) bool {
	if next == domain.WorkStatusRejected && !m.StrictReject {
		return true
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (m *Machine) markAccepted(w *domain.WorkOrder, actor domain.Actor, assignee *string) {
	accepted := true
	w.Accepted = &accepted
	w.Status = domain.WorkStatusInProcess
	switch {
	case assignee != nil && *assignee != "":
		v := *assignee
		w.AssignedTo = &v
	case w.AssignedTo == nil:
		name := actor.Name()
		w.AssignedTo = &name
	}
}

func (m *Machine) markRejected(w *domain.WorkOrder) {
	accepted := false
	w.Accepted = &accepted
	w.Status = domain.WorkStatusRejected
	w.AssignedTo = nil
	w.Closed = nil
	w.ClosingRemarks = nil
}

func (m *Machine) markCompleted(w *domain.WorkOrder) {
	now := m.now()
	w.Status = domain.WorkStatusCompleted
	w.CompletionDate = &now
}

func requireUtilities(actor domain.Actor, op Operation) error {
	if !actor.Capabilities.Utilities {
		return errorutil.NewForbidden("only utilities staff can " + string(op) + " work orders")
	}
	return nil
}

func requireProduction(actor domain.Actor, op Operation) error {
	if !actor.Capabilities.Production {
		return errorutil.NewForbidden("only production staff can " + string(op) + " work orders")
	}
	return nil
}
