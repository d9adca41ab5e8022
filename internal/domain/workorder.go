package domain

import "time"

// WorkStatus enumerates lifecycle states for work orders.
type WorkStatus string

const (
	WorkStatusPending   WorkStatus = "Pending"
	WorkStatusInProcess WorkStatus = "In_Process"
	WorkStatusCompleted WorkStatus = "Completed"
	WorkStatusRejected  WorkStatus = "Rejected"
)

func (s WorkStatus) IsValid() bool {
	switch s {
	case WorkStatusPending, WorkStatusInProcess, WorkStatusCompleted, WorkStatusRejected:
		return true
	}
	return false
}

// ClosedState is the production sign-off on a completed work order.
type ClosedState string

const (
	ClosedYes ClosedState = "Yes"
	ClosedNo  ClosedState = "No"
)

// NoneValue is the placeholder stored for unset free-text bookkeeping fields.
const NoneValue = "none"

// WorkOrder is the aggregate for maintenance requests.
type WorkOrder struct {
	ID              string
	InitiationDate  time.Time
	Department      Department
	Problem         string
	InitiatedBy     string
	EquipmentID     string
	PartID          *string
	WorkTypeID      string
	Status          WorkStatus
	PendingReasonID *string
	Closed          *ClosedState
	ClosingRemarks  *string
	Accepted        *bool
	AssignedTo      *string
	TargetDate      *time.Time
	Remarks         *string
	ReplacedPart    string
	CompletionDate  *time.Time
	PRNumber        string
	PRDate          *time.Time
	UpdatedAt       time.Time
}

// IsClosed reports whether production has signed the work order off.
func (w *WorkOrder) IsClosed() bool {
	return w.Closed != nil && *w.Closed == ClosedYes
}

// Clone returns a deep copy so callers can stage changes without aliasing.
func (w *WorkOrder) Clone() *WorkOrder {
	if w == nil {
		return nil
	}
	c := *w
	c.PartID = cloneString(w.PartID)
	c.PendingReasonID = cloneString(w.PendingReasonID)
	c.ClosingRemarks = cloneString(w.ClosingRemarks)
	c.AssignedTo = cloneString(w.AssignedTo)
	c.Remarks = cloneString(w.Remarks)
	c.TargetDate = cloneTime(w.TargetDate)
	c.CompletionDate = cloneTime(w.CompletionDate)
	c.PRDate = cloneTime(w.PRDate)
	if w.Closed != nil {
		v := *w.Closed
		c.Closed = &v
	}
	if w.Accepted != nil {
		v := *w.Accepted
		c.Accepted = &v
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
