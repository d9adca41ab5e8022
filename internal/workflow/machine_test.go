package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

var (
	fixedNow   = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	production = domain.Actor{ID: "prod-1", Username: "pat", Capabilities: domain.Capabilities{Production: true}}
	utilities  = domain.Actor{ID: "util-1", Username: "uma", DisplayName: "Uma Singh", Capabilities: domain.Capabilities{Utilities: true, Department: "Electrical"}}
)

func newMachine(strict bool) *Machine {
	return &Machine{StrictReject: strict, Now: func() time.Time { return fixedNow }}
}

func pending(t *testing.T) *domain.WorkOrder {
	t.Helper()
	wo, err := newMachine(false).NewWorkOrder(CreateInput{
		Problem:     "  conveyor jammed ",
		Department:  domain.DepartmentElectrical,
		EquipmentID: "eq-1",
		WorkTypeID:  "wt-1",
	}, production)
	require.NoError(t, err)
	return wo
}

func withStatus(t *testing.T, status domain.WorkStatus) *domain.WorkOrder {
	wo := pending(t)
	wo.Status = status
	return wo
}

func ptr[T any](v T) *T { return &v }

func TestNewWorkOrder(t *testing.T) {
	wo := pending(t)
	assert.Equal(t, domain.WorkStatusPending, wo.Status)
	assert.Equal(t, "prod-1", wo.InitiatedBy)
	assert.Equal(t, "conveyor jammed", wo.Problem)
	assert.Equal(t, "none", wo.ReplacedPart)
	assert.Equal(t, "none", wo.PRNumber)
	assert.Equal(t, fixedNow, wo.InitiationDate)
	assert.NotEmpty(t, wo.ID)

	m := newMachine(false)
	_, err := m.NewWorkOrder(CreateInput{Problem: "x", Department: domain.DepartmentElectrical, EquipmentID: "e", WorkTypeID: "w"}, utilities)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

	_, err = m.NewWorkOrder(CreateInput{Problem: " ", Department: "Plumbing", EquipmentID: "e", WorkTypeID: "w"}, production)
	require.Error(t, err)
	de := errorutil.ToDomainError(err)
	assert.Equal(t, errorutil.CodeValidation, de.Code)
	assert.Contains(t, de.Details, "problem")
	assert.Contains(t, de.Details, "department")
}

func TestAccept(t *testing.T) {
	m := newMachine(false)
	wo := pending(t)
	target := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	out, err := m.Apply(wo, Accept{TargetDate: &target, Remarks: ptr("ok")}, utilities)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionAccepted, out.Action)
	assert.Equal(t, domain.WorkStatusInProcess, out.After.Status)
	require.NotNil(t, out.After.Accepted)
	assert.True(t, *out.After.Accepted)
	require.NotNil(t, out.After.AssignedTo)
	assert.Equal(t, "Uma Singh", *out.After.AssignedTo)
	assert.Equal(t, target, *out.After.TargetDate)
	assert.Equal(t, domain.WorkStatusPending, wo.Status, "input must not be mutated")

	_, err = m.Apply(out.After, Accept{}, utilities)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeInvalidTransition))
}

func TestAcceptExplicitAssignee(t *testing.T) {
	out, err := newMachine(false).Apply(pending(t), Accept{AssignedTo: ptr(" Ravi ")}, utilities)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", *out.After.AssignedTo)
}

func TestCapabilityChecks(t *testing.T) {
	m := newMachine(false)
	tests := []struct {
		name  string
		cmd   Command
		actor domain.Actor
	}{
		{"accept by production", Accept{}, production},
		{"reject by production", Reject{}, production},
		{"complete by production", Complete{}, production},
		{"close by utilities", Close{Closed: ptr(true)}, utilities},
		{"update utilities field by production", Update{Patch: Patch{Remarks: ptr("x")}}, production},
		{"update production field by utilities", Update{Patch: Patch{Closed: ptr(true)}}, utilities},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Apply(pending(t), tt.cmd, tt.actor)
			assert.True(t, errorutil.HasCode(err, errorutil.CodeForbidden), "got %v", err)
		})
	}
}

func TestReject(t *testing.T) {
	accepted := func(t *testing.T) *domain.WorkOrder {
		out, err := newMachine(false).Apply(pending(t), Accept{}, utilities)
		require.NoError(t, err)
		return out.After
	}

	t.Run("lenient allows any status", func(t *testing.T) {
		wo := accepted(t)
		wo.Status = domain.WorkStatusCompleted
		wo.Closed = ptr(domain.ClosedYes)
		wo.ClosingRemarks = ptr("done")

		out, err := newMachine(false).Apply(wo, Reject{}, utilities)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionRejected, out.Action)
		assert.Equal(t, domain.WorkStatusRejected, out.After.Status)
		assert.False(t, *out.After.Accepted)
		assert.Nil(t, out.After.AssignedTo)
		assert.Nil(t, out.After.Closed)
		assert.Nil(t, out.After.ClosingRemarks)
	})

	t.Run("strict requires pending", func(t *testing.T) {
		_, err := newMachine(true).Apply(accepted(t), Reject{}, utilities)
		assert.True(t, errorutil.HasCode(err, errorutil.CodeInvalidTransition))

		out, err := newMachine(true).Apply(pending(t), Reject{}, utilities)
		require.NoError(t, err)
		assert.Equal(t, domain.WorkStatusRejected, out.After.Status)
	})
}

func TestComplete(t *testing.T) {
	m := newMachine(false)

	_, err := m.Apply(pending(t), Complete{}, utilities)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeInvalidTransition))

	out, err := m.Apply(withStatus(t, domain.WorkStatusInProcess), Complete{}, utilities)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCompleted, out.Action)
	assert.Equal(t, domain.WorkStatusCompleted, out.After.Status)
	require.NotNil(t, out.After.CompletionDate)
	assert.Equal(t, fixedNow, *out.After.CompletionDate)

	_, err = m.Apply(out.After, Complete{}, utilities)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeInvalidTransition))
}

func TestClose(t *testing.T) {
	m := newMachine(false)
	completed := withStatus(t, domain.WorkStatusCompleted)

	_, err := m.Apply(completed, Close{}, production)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

	_, err = m.Apply(withStatus(t, domain.WorkStatusInProcess), Close{Closed: ptr(true)}, production)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeInvalidTransition))

	out, err := m.Apply(completed, Close{Closed: ptr(true), ClosingRemarks: ptr("fine")}, production)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionClosed, out.Action)
	assert.True(t, out.After.IsClosed())
	assert.Equal(t, "fine", *out.After.ClosingRemarks)

	reopened, err := m.Apply(out.After, Close{Closed: ptr(false)}, production)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionReopened, reopened.Action)
	assert.Equal(t, domain.ClosedNo, *reopened.After.Closed)

	again, err := m.Apply(reopened.After, Close{Closed: ptr(true)}, production)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionClosed, again.Action)
}

func TestUpdate(t *testing.T) {
	m := newMachine(false)

	t.Run("empty patch", func(t *testing.T) {
		_, err := m.Apply(pending(t), Update{}, utilities)
		assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))
	})

	t.Run("accepted cascades status", func(t *testing.T) {
		out, err := m.Apply(pending(t), Update{Patch: Patch{Accepted: ptr(true)}}, utilities)
		require.NoError(t, err)
		assert.Equal(t, domain.WorkStatusInProcess, out.After.Status)
		assert.Equal(t, domain.ActionAccepted, out.Action)
		assert.Equal(t, "Uma Singh", *out.After.AssignedTo)
	})

	t.Run("accepted cascade assigns like accept", func(t *testing.T) {
		out, err := m.Apply(pending(t), Update{Patch: Patch{Accepted: ptr(true), AssignedTo: ptr("")}}, utilities)
		require.NoError(t, err)
		require.NotNil(t, out.After.AssignedTo)
		assert.Equal(t, "Uma Singh", *out.After.AssignedTo)

		out, err = m.Apply(pending(t), Update{Patch: Patch{Accepted: ptr(true), AssignedTo: ptr("  Ravi ")}}, utilities)
		require.NoError(t, err)
		assert.Equal(t, "Ravi", *out.After.AssignedTo)

		viaAccept, err := m.Apply(pending(t), Accept{AssignedTo: ptr("")}, utilities)
		require.NoError(t, err)
		assert.Equal(t, "Uma Singh", *viaAccept.After.AssignedTo)
	})

	t.Run("accepted false cascades to rejected", func(t *testing.T) {
		out, err := m.Apply(pending(t), Update{Patch: Patch{Accepted: ptr(false)}}, utilities)
		require.NoError(t, err)
		assert.Equal(t, domain.WorkStatusRejected, out.After.Status)
		assert.Equal(t, domain.ActionRejected, out.Action)
	})

	t.Run("conflicting accepted and status", func(t *testing.T) {
		_, err := m.Apply(pending(t), Update{Patch: Patch{Accepted: ptr(true), Status: ptr(domain.WorkStatusRejected)}}, utilities)
		assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))
	})

	t.Run("illegal status jump", func(t *testing.T) {
		_, err := m.Apply(pending(t), Update{Patch: Patch{Status: ptr(domain.WorkStatusCompleted)}}, utilities)
		assert.True(t, errorutil.HasCode(err, errorutil.CodeInvalidTransition))
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := m.Apply(pending(t), Update{Patch: Patch{Status: ptr(domain.WorkStatus("Paused"))}}, utilities)
		assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))
	})

	t.Run("status to completed sets completion date", func(t *testing.T) {
		out, err := m.Apply(withStatus(t, domain.WorkStatusInProcess), Update{Patch: Patch{Status: ptr(domain.WorkStatusCompleted)}}, utilities)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionCompleted, out.Action)
		assert.Equal(t, fixedNow, *out.After.CompletionDate)
	})

	t.Run("remarks only is updated", func(t *testing.T) {
		out, err := m.Apply(pending(t), Update{Patch: Patch{Remarks: ptr("waiting on spares"), PRNumber: ptr("PR-7")}}, utilities)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionUpdated, out.Action)
		assert.Equal(t, []string{"pr_number", "remarks"}, out.Changes.Fields)
	})

	t.Run("closed requires completed", func(t *testing.T) {
		_, err := m.Apply(withStatus(t, domain.WorkStatusInProcess), Update{Patch: Patch{Closed: ptr(true)}}, production)
		assert.True(t, errorutil.HasCode(err, errorutil.CodeInvalidTransition))

		out, err := m.Apply(withStatus(t, domain.WorkStatusCompleted), Update{Patch: Patch{Closed: ptr(true)}}, production)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionClosed, out.Action)
	})
}

func TestClosedImpliesCompleted(t *testing.T) {
	m := newMachine(false)
	cmds := []struct {
		cmd   Command
		actor domain.Actor
	}{
		{Accept{}, utilities},
		{Complete{}, utilities},
		{Close{Closed: ptr(true)}, production},
		{Reject{}, utilities},
	}
	wo := pending(t)
	for _, step := range cmds {
		out, err := m.Apply(wo, step.cmd, step.actor)
		require.NoError(t, err)
		wo = out.After
		if wo.Closed != nil {
			assert.Equal(t, domain.WorkStatusCompleted, wo.Status)
		}
	}
	assert.Equal(t, domain.WorkStatusRejected, wo.Status)
	assert.Nil(t, wo.Closed)
}
