package domain

import "time"

// HistoryAction tags what a history entry records.
type HistoryAction string

const (
	ActionCreated       HistoryAction = "created"
	ActionAccepted      HistoryAction = "accepted"
	ActionRejected      HistoryAction = "rejected"
	ActionCompleted     HistoryAction = "completed"
	ActionClosed        HistoryAction = "closed"
	ActionReopened      HistoryAction = "reopened"
	ActionStatusChanged HistoryAction = "status_changed"
	ActionUpdated       HistoryAction = "updated"
)

// HistoryEntry is an immutable audit trail entry. Snapshot holds the full
// record for ActionCreated and only the changed fields plus id otherwise.
type HistoryEntry struct {
	ID          string
	WorkOrderID string
	Snapshot    map[string]any
	Timestamp   time.Time
	ChangedBy   *string
	Action      HistoryAction
}
