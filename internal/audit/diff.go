package audit

import (
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// ChangeSet lists the keys whose values differ between two snapshots and
// the action those changes imply.
type ChangeSet struct {
	Fields []string
	Hint   domain.HistoryAction
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.Fields) == 0
}

// Action returns the inferred action, defaulting to updated.
func (c ChangeSet) Action() domain.HistoryAction {
	if c.Hint == "" {
		return domain.ActionUpdated
	}
	return c.Hint
}

// Has reports whether field is part of the change set.
func (c ChangeSet) Has(field string) bool {
	i := sort.SearchStrings(c.Fields, field)
	return i < len(c.Fields) && c.Fields[i] == field
}

// Diff compares two snapshots key by key over the union of their keys.
func Diff(before, after map[string]any) ChangeSet {
	keys := make(map[string]struct{}, len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	var fields []string
	for k := range keys {
		if !reflect.DeepEqual(before[k], after[k]) {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)

	cs := ChangeSet{Fields: fields}
	cs.Hint = inferAction(cs, after)
	return cs
}

// inferAction applies the hint rules in priority order.
func inferAction(cs ChangeSet, after map[string]any) domain.HistoryAction {
	status, _ := after[FieldWorkStatus].(string)
	if cs.Has(FieldWorkStatus) && status == string(domain.WorkStatusCompleted) {
		return domain.ActionCompleted
	}
	if accepted, ok := after[FieldAccepted].(bool); ok && accepted && cs.Has(FieldAccepted) {
		return domain.ActionAccepted
	}
	closed, _ := after[FieldClosed].(string)
	if cs.Has(FieldClosed) && closed == string(domain.ClosedYes) {
		return domain.ActionClosed
	}
	if cs.Has(FieldWorkStatus) && status == string(domain.WorkStatusRejected) {
		return domain.ActionRejected
	}
	if cs.Has(FieldClosed) && closed == string(domain.ClosedNo) {
		return domain.ActionReopened
	}
	if cs.Has(FieldWorkStatus) {
		return domain.ActionStatusChanged
	}
	return ""
}

// NewEntry builds the history entry for one mutation. Created entries carry
// the full after snapshot; every other action stores only the changed fields
// of after plus the record id.
func NewEntry(action domain.HistoryAction, before, after map[string]any, changedBy *string, at time.Time) domain.HistoryEntry {
	id, _ := after[FieldID].(string)

	var snap map[string]any
	if action == domain.ActionCreated || before == nil {
		snap = make(map[string]any, len(after))
		for k, v := range after {
			snap[k] = v
		}
	} else {
		cs := Diff(before, after)
		snap = make(map[string]any, len(cs.Fields)+1)
		for _, f := range cs.Fields {
			snap[f] = after[f]
		}
		snap[FieldID] = id
	}

	return domain.HistoryEntry{
		ID:          uuid.NewString(),
		WorkOrderID: id,
		Snapshot:    snap,
		Timestamp:   at,
		ChangedBy:   changedBy,
		Action:      action,
	}
}
