package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/access"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
)

func newOrder(id string, at time.Time, dept domain.Department) *domain.WorkOrder {
	return &domain.WorkOrder{
		ID:             id,
		InitiationDate: at,
		Department:     dept,
		Problem:        "leak",
		InitiatedBy:    "prod-1",
		EquipmentID:    "eq-1",
		WorkTypeID:     "wt-1",
		Status:         domain.WorkStatusPending,
		ReplacedPart:   domain.NoneValue,
		PRNumber:       domain.NoneValue,
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		require.NoError(t, repos.WorkOrders.Create(ctx, newOrder("a", time.Now(), domain.DepartmentElectrical)))
		require.NoError(t, repos.History.Append(ctx, &domain.HistoryEntry{ID: "h1", WorkOrderID: "a", Action: domain.ActionCreated}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Repositories().WorkOrders.GetByID(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	entries, err := store.Repositories().History.ListByWorkOrder(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.WorkOrders.Create(ctx, newOrder("a", time.Now(), domain.DepartmentElectrical)); err != nil {
			return err
		}
		return repos.History.Append(ctx, &domain.HistoryEntry{ID: "h1", WorkOrderID: "a", Action: domain.ActionCreated})
	})
	require.NoError(t, err)

	wo, err := store.Repositories().WorkOrders.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "leak", wo.Problem)
}

func TestReturnedOrdersAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Repositories().WorkOrders.Create(ctx, newOrder("a", time.Now(), domain.DepartmentElectrical)))

	wo, err := store.Repositories().WorkOrders.GetByID(ctx, "a")
	require.NoError(t, err)
	wo.Problem = "changed"

	again, err := store.Repositories().WorkOrders.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "leak", again.Problem)
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repositories()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.WorkOrders.Create(ctx, newOrder("a", base, domain.DepartmentElectrical)))

	require.NoError(t, repos.History.Append(ctx, &domain.HistoryEntry{ID: "1", WorkOrderID: "a", Timestamp: base}))
	require.NoError(t, repos.History.Append(ctx, &domain.HistoryEntry{ID: "2", WorkOrderID: "a", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, repos.History.Append(ctx, &domain.HistoryEntry{ID: "3", WorkOrderID: "a", Timestamp: base.Add(time.Minute)}))

	entries, err := repos.History.ListByWorkOrder(ctx, "a")
	require.NoError(t, err)
	ids := []string{}
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"3", "2", "1"}, ids)
}

func TestListAppliesScopeAndPaging(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repositories()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repos.WorkOrders.Create(ctx, newOrder("e1", base, domain.DepartmentElectrical)))
	require.NoError(t, repos.WorkOrders.Create(ctx, newOrder("e2", base.Add(time.Hour), domain.DepartmentElectrical)))
	require.NoError(t, repos.WorkOrders.Create(ctx, newOrder("m1", base, domain.DepartmentMechanical)))

	scope := access.ScopeFor(domain.Actor{Capabilities: domain.Capabilities{Utilities: true, Department: "Electrical"}})
	list, err := repos.WorkOrders.List(ctx, repository.WorkOrderFilter{Scope: scope})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID)

	page, err := repos.WorkOrders.List(ctx, repository.WorkOrderFilter{Scope: access.Scope{All: true}, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "e1", page[0].ID)

	none, err := repos.WorkOrders.List(ctx, repository.WorkOrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
