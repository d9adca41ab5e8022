package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/workorder-service/internal/domain"
)

func order(dept domain.Department, status domain.WorkStatus, initiator string) *domain.WorkOrder {
	return &domain.WorkOrder{ID: "wo", Department: dept, Status: status, InitiatedBy: initiator}
}

func TestCheck(t *testing.T) {
	manager := domain.Actor{ID: "m", Capabilities: domain.Capabilities{Manager: true}}
	elecUtil := domain.Actor{ID: "ue", Capabilities: domain.Capabilities{Utilities: true, Department: "Electrical"}}
	miscUtil := domain.Actor{ID: "um", Capabilities: domain.Capabilities{Utilities: true, Department: "Stores"}}
	prodA := domain.Actor{ID: "a", Capabilities: domain.Capabilities{Production: true}}
	prodB := domain.Actor{ID: "b", Capabilities: domain.Capabilities{Production: true}}
	both := domain.Actor{ID: "a", Capabilities: domain.Capabilities{Production: true, Utilities: true, Department: "Mechanical"}}
	nobody := domain.Actor{ID: "n"}
	purchasing := domain.User{ID: "p", Username: "buyer", IsPurchase: true}.Actor()

	tests := []struct {
		name  string
		actor domain.Actor
		wo    *domain.WorkOrder
		want  Decision
	}{
		{"manager sees everything", manager, order(domain.DepartmentMiscellaneous, domain.WorkStatusRejected, "a"), DecisionOK},
		{"utilities own department", elecUtil, order(domain.DepartmentElectrical, domain.WorkStatusPending, "a"), DecisionOK},
		{"utilities other department", elecUtil, order(domain.DepartmentMechanical, domain.WorkStatusPending, "a"), DecisionUnauthorized},
		{"utilities hides rejected", elecUtil, order(domain.DepartmentElectrical, domain.WorkStatusRejected, "a"), DecisionUnauthorized},
		{"utilities completed visible", elecUtil, order(domain.DepartmentElectrical, domain.WorkStatusCompleted, "a"), DecisionOK},
		{"utilities unmapped department", miscUtil, order(domain.DepartmentMiscellaneous, domain.WorkStatusPending, "a"), DecisionUnauthorized},
		{"production own record", prodA, order(domain.DepartmentMechanical, domain.WorkStatusRejected, "a"), DecisionOK},
		{"production other record", prodB, order(domain.DepartmentMechanical, domain.WorkStatusPending, "a"), DecisionUnauthorized},
		{"utilities rule wins over production", both, order(domain.DepartmentElectrical, domain.WorkStatusPending, "a"), DecisionUnauthorized},
		{"no capabilities", nobody, order(domain.DepartmentElectrical, domain.WorkStatusPending, "n"), DecisionUnauthorized},
		{"purchase flag alone", purchasing, order(domain.DepartmentElectrical, domain.WorkStatusPending, "p"), DecisionUnauthorized},
		{"nil record", manager, nil, DecisionUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.actor, tt.wo))
		})
	}
}

func TestScopeFor(t *testing.T) {
	s := ScopeFor(domain.Actor{Capabilities: domain.Capabilities{Utilities: true, Department: "Mechanical"}})
	if assert.NotNil(t, s.Department) {
		assert.Equal(t, domain.DepartmentMechanical, *s.Department)
	}
	assert.ElementsMatch(t, []domain.WorkStatus{
		domain.WorkStatusPending, domain.WorkStatusInProcess, domain.WorkStatusCompleted,
	}, s.Statuses)

	assert.True(t, ScopeFor(domain.Actor{}).Empty())
	assert.True(t, ScopeFor(domain.Actor{Capabilities: domain.Capabilities{Manager: true}}).All)
}
