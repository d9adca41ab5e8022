package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/workorder-service/internal/access"
	"github.com/spec-kit/workorder-service/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

const defaultListLimit = 20

// WorkOrderFilter combines the actor's access scope with caller filters.
// All conditions are ANDed.
type WorkOrderFilter struct {
	Scope      access.Scope
	Statuses   []domain.WorkStatus
	Department *domain.Department
	Accepted   *bool
	Closed     *domain.ClosedState
	Limit      int
	Offset     int
}

// Matches evaluates the filter in memory. SQL stores translate the same
// conditions into WHERE clauses.
func (f WorkOrderFilter) Matches(w *domain.WorkOrder) bool {
	if !f.Scope.Matches(w) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == w.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Department != nil && w.Department != *f.Department {
		return false
	}
	if f.Accepted != nil && (w.Accepted == nil || *w.Accepted != *f.Accepted) {
		return false
	}
	if f.Closed != nil && (w.Closed == nil || *w.Closed != *f.Closed) {
		return false
	}
	return true
}

// Page returns the normalized limit and offset.
func (f WorkOrderFilter) Page() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// WorkOrderRepository encapsulates work order persistence.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *domain.WorkOrder) error
	Update(ctx context.Context, wo *domain.WorkOrder) error
	GetByID(ctx context.Context, id string) (*domain.WorkOrder, error)
	// GetForUpdate reads the row and holds it until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.WorkOrder, error)
	List(ctx context.Context, filter WorkOrderFilter) ([]domain.WorkOrder, error)
}

// HistoryRepository is the append-only audit log.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	// ListByWorkOrder returns entries newest first.
	ListByWorkOrder(ctx context.Context, workOrderID string) ([]domain.HistoryEntry, error)
}

// ReferenceRepository resolves lookup data by id.
type ReferenceRepository interface {
	GetEquipment(ctx context.Context, id string) (*domain.Equipment, error)
	GetPart(ctx context.Context, id string) (*domain.Part, error)
	GetWorkType(ctx context.Context, id string) (*domain.WorkType, error)
	GetPendingReason(ctx context.Context, id string) (*domain.PendingReason, error)
}

// UserDirectory resolves authenticated subjects to users.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Seeder loads fixture data.
type Seeder interface {
	Seed(ctx context.Context, fixtures Fixtures) error
}

// Repositories is the set of repositories bound to one connection or transaction.
type Repositories struct {
	WorkOrders WorkOrderRepository
	History    HistoryRepository
}

// Store is a storage backend. WithinTx runs fn atomically; fn must only use
// the repositories it is handed.
type Store interface {
	Seeder
	Repositories() Repositories
	References() ReferenceRepository
	Users() UserDirectory
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
	Close() error
}
