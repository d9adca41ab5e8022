package events

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventWorkOrderCreated   EventType = "workorder_created"
	EventWorkOrderAccepted  EventType = "workorder_accepted"
	EventWorkOrderRejected  EventType = "workorder_rejected"
	EventWorkOrderCompleted EventType = "workorder_completed"
	EventWorkOrderClosed    EventType = "workorder_closed"
	EventWorkOrderReopened  EventType = "workorder_reopened"
	EventWorkOrderUpdated   EventType = "workorder_updated"
)

// TypeForAction maps a history action to the event published for it.
func TypeForAction(action domain.HistoryAction) EventType {
	switch action {
	case domain.ActionCreated:
		return EventWorkOrderCreated
	case domain.ActionAccepted:
		return EventWorkOrderAccepted
	case domain.ActionRejected:
		return EventWorkOrderRejected
	case domain.ActionCompleted:
		return EventWorkOrderCompleted
	case domain.ActionClosed:
		return EventWorkOrderClosed
	case domain.ActionReopened:
		return EventWorkOrderReopened
	default:
		return EventWorkOrderUpdated
	}
}

// Actor identifies who triggered an event.
type Actor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	WorkOrderID string      `json:"workorder_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// WorkOrderCreatedPayload payload.
type WorkOrderCreatedPayload struct {
	Department  domain.Department `json:"department"`
	EquipmentID string            `json:"equipment_id"`
	Problem     string            `json:"problem"`
}

// WorkOrderTransitionPayload describes a committed mutation.
type WorkOrderTransitionPayload struct {
	Action        domain.HistoryAction `json:"action"`
	FromStatus    domain.WorkStatus    `json:"from_status"`
	ToStatus      domain.WorkStatus    `json:"to_status"`
	ChangedFields []string             `json:"changed_fields"`
	AssignedTo    *string              `json:"assigned_to,omitempty"`
	InitiatedBy   string               `json:"initiated_by"`
}
