package dto

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// DateLayout is the wire format of calendar-date fields.
const DateLayout = "2006-01-02"

// CreateWorkOrderRequest payload.
type CreateWorkOrderRequest struct {
	Problem    string  `json:"problem" validate:"required,max=4000"`
	Department string  `json:"department" validate:"required,oneof=Electrical Mechanical Miscellaneous"`
	Equipment  string  `json:"equipment" validate:"required"`
	Part       *string `json:"part" validate:"omitempty,min=1"`
	TypeOfWork string  `json:"type_of_work" validate:"required"`
}

// AcceptWorkOrderRequest payload. All fields are optional.
type AcceptWorkOrderRequest struct {
	AssignedTo *string `json:"assigned_to" validate:"omitempty,max=255"`
	TargetDate *string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	Remarks    *string `json:"remarks" validate:"omitempty,max=4000"`
}

// CloseWorkOrderRequest payload.
type CloseWorkOrderRequest struct {
	Closed         *ClosedFlag `json:"closed" validate:"required"`
	ClosingRemarks *string     `json:"closing_remarks" validate:"omitempty,max=4000"`
}

// UpdateWorkOrderRequest is a partial update; absent fields are untouched.
type UpdateWorkOrderRequest struct {
	Accepted       *bool       `json:"accepted"`
	WorkStatus     *string     `json:"work_status" validate:"omitempty,oneof=Pending In_Process Completed Rejected"`
	AssignedTo     *string     `json:"assigned_to" validate:"omitempty,max=255"`
	TargetDate     *string     `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	Remarks        *string     `json:"remarks" validate:"omitempty,max=4000"`
	Pending        *string     `json:"pending" validate:"omitempty,min=1"`
	ReplacedPart   *string     `json:"replaced_part" validate:"omitempty,max=255"`
	PRNumber       *string     `json:"pr_number" validate:"omitempty,max=255"`
	PRDate         *string     `json:"pr_date" validate:"omitempty,datetime=2006-01-02"`
	Closed         *ClosedFlag `json:"closed"`
	ClosingRemarks *string     `json:"closing_remarks" validate:"omitempty,max=4000"`
}

// WorkOrderListQuery captures query filters for the list endpoint.
type WorkOrderListQuery struct {
	Statuses   []domain.WorkStatus
	Department *domain.Department
	Accepted   *bool
	Closed     *domain.ClosedState
	Page       int
	PageSize   int
}

// WorkOrderResponse is the public shape of a work order.
type WorkOrderResponse struct {
	ID             string              `json:"id"`
	InitiationDate time.Time           `json:"initiation_date"`
	Department     domain.Department   `json:"department"`
	Problem        string              `json:"problem"`
	InitiatedBy    string              `json:"initiated_by"`
	Equipment      string              `json:"equipment"`
	Part           *string             `json:"part"`
	TypeOfWork     string              `json:"type_of_work"`
	WorkStatus     domain.WorkStatus   `json:"work_status"`
	Pending        *string             `json:"pending"`
	Closed         *domain.ClosedState `json:"closed"`
	ClosingRemarks *string             `json:"closing_remarks"`
	Accepted       *bool               `json:"accepted"`
	AssignedTo     *string             `json:"assigned_to"`
	TargetDate     *string             `json:"target_date"`
	Remarks        *string             `json:"remarks"`
	ReplacedPart   string              `json:"replaced_part"`
	CompletionDate *time.Time          `json:"completion_date"`
	PRNumber       string              `json:"pr_number"`
	PRDate         *string             `json:"pr_date"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// HistoryEntryResponse is one audit trail entry.
type HistoryEntryResponse struct {
	ID        string               `json:"id"`
	Snapshot  map[string]any       `json:"snapshot"`
	Timestamp time.Time            `json:"timestamp"`
	ChangedBy *string              `json:"changed_by"`
	Action    domain.HistoryAction `json:"action"`
}

// CheckAccessResponse reports whether the caller may view a work order.
type CheckAccessResponse struct {
	Status string `json:"status"`
}
