// Package access decides which work orders an actor may see. The list scope
// and the single-record check are derived from the same rules, so a record is
// accessible exactly when it would appear in the actor's list.
package access

import (
	"github.com/spec-kit/workorder-service/internal/domain"
)

// utilitiesDepartments maps a utilities user's department to the work
// department they service. Departments not listed see nothing.
var utilitiesDepartments = map[string]domain.Department{
	"Electrical": domain.DepartmentElectrical,
	"Mechanical": domain.DepartmentMechanical,
}

// utilitiesStatuses are the statuses a utilities user can see.
var utilitiesStatuses = []domain.WorkStatus{
	domain.WorkStatusPending,
	domain.WorkStatusInProcess,
	domain.WorkStatusCompleted,
}

// Scope is a row filter over work orders. The zero value matches nothing.
type Scope struct {
	All         bool
	Department  *domain.Department
	Statuses    []domain.WorkStatus
	InitiatedBy *string
}

// Empty reports whether the scope can never match a record.
func (s Scope) Empty() bool {
	return !s.All && s.Department == nil && s.InitiatedBy == nil
}

// Matches reports whether w falls inside the scope.
func (s Scope) Matches(w *domain.WorkOrder) bool {
	if w == nil {
		return false
	}
	if s.All {
		return true
	}
	if s.Empty() {
		return false
	}
	if s.Department != nil && w.Department != *s.Department {
		return false
	}
	if s.InitiatedBy != nil && w.InitiatedBy != *s.InitiatedBy {
		return false
	}
	if len(s.Statuses) > 0 && !containsStatus(s.Statuses, w.Status) {
		return false
	}
	return true
}

// ScopeFor evaluates the role rules in order; the first match wins.
func ScopeFor(actor domain.Actor) Scope {
	caps := actor.Capabilities
	switch {
	case caps.Manager:
		return Scope{All: true}
	case caps.Utilities:
		dept, ok := utilitiesDepartments[caps.Department]
		if !ok {
			return Scope{}
		}
		return Scope{
			Department: &dept,
			Statuses:   append([]domain.WorkStatus(nil), utilitiesStatuses...),
		}
	case caps.Production:
		id := actor.ID
		return Scope{InitiatedBy: &id}
	default:
		return Scope{}
	}
}

// CanView reports whether actor may see w.
func CanView(actor domain.Actor, w *domain.WorkOrder) bool {
	return ScopeFor(actor).Matches(w)
}

// Decision is the outcome of an access check.
type Decision string

const (
	DecisionOK           Decision = "ok"
	DecisionUnauthorized Decision = "unauthorized"
)

// Check returns DecisionOK when actor may see w.
func Check(actor domain.Actor, w *domain.WorkOrder) Decision {
	if CanView(actor, w) {
		return DecisionOK
	}
	return DecisionUnauthorized
}

func containsStatus(list []domain.WorkStatus, s domain.WorkStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}
