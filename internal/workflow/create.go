package workflow

import (
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// CreateInput describes a new work order raised by production.
type CreateInput struct {
	Problem     string
	Department  domain.Department
	EquipmentID string
	WorkTypeID  string
	PartID      *string
}

// NewWorkOrder builds a Pending work order initiated by actor.
func (m *Machine) NewWorkOrder(input CreateInput, actor domain.Actor) (*domain.WorkOrder, error) {
	if !actor.Capabilities.Production {
		return nil, errorutil.NewValidationError("only production staff can create work orders", nil)
	}
	problem := strings.TrimSpace(input.Problem)
	details := map[string]any{}
	if problem == "" {
		details["problem"] = "required"
	}
	if !input.Department.IsValid() {
		details["department"] = "must be one of Electrical, Mechanical, Miscellaneous"
	}
	if strings.TrimSpace(input.EquipmentID) == "" {
		details["equipment"] = "required"
	}
	if strings.TrimSpace(input.WorkTypeID) == "" {
		details["type_of_work"] = "required"
	}
	if len(details) > 0 {
		return nil, errorutil.NewValidationError("invalid work order", details)
	}

	now := m.now()
	wo := &domain.WorkOrder{
		ID:             uuid.NewString(),
		InitiationDate: now,
		Department:     input.Department,
		Problem:        problem,
		InitiatedBy:    actor.ID,
		EquipmentID:    input.EquipmentID,
		WorkTypeID:     input.WorkTypeID,
		Status:         domain.WorkStatusPending,
		ReplacedPart:   domain.NoneValue,
		PRNumber:       domain.NoneValue,
		UpdatedAt:      now,
	}
	if input.PartID != nil && *input.PartID != "" {
		v := *input.PartID
		wo.PartID = &v
	}
	return wo, nil
}
