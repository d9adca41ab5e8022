// Package memory is an in-process Store used for tests and the memory driver.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
)

type state struct {
	orders  map[string]*domain.WorkOrder
	history []domain.HistoryEntry
}

// clone copies the containers. Stored orders are never mutated in place, so
// sharing the pointers is safe.
func (s *state) clone() *state {
	orders := make(map[string]*domain.WorkOrder, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}
	history := make([]domain.HistoryEntry, len(s.history))
	copy(history, s.history)
	return &state{orders: orders, history: history}
}

// Store keeps everything in maps. Transactions are serialized by txMu and
// stage their writes on a copy that replaces the live state on commit.
type Store struct {
	txMu sync.Mutex

	mu        sync.RWMutex
	state     *state
	users     map[string]domain.User
	equipment map[string]domain.Equipment
	parts     map[string]domain.Part
	workTypes map[string]domain.WorkType
	pending   map[string]domain.PendingReason
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		state:     &state{orders: map[string]*domain.WorkOrder{}},
		users:     map[string]domain.User{},
		equipment: map[string]domain.Equipment{},
		parts:     map[string]domain.Part{},
		workTypes: map[string]domain.WorkType{},
		pending:   map[string]domain.PendingReason{},
	}
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		WorkOrders: &workOrders{store: s},
		History:    &history{store: s},
	}
}

func (s *Store) References() repository.ReferenceRepository { return references{store: s} }

func (s *Store) Users() repository.UserDirectory { return users{store: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	staged := s.state.clone()
	s.mu.RUnlock()

	tx := &txState{st: staged}
	if err := fn(ctx, repository.Repositories{
		WorkOrders: &txWorkOrders{tx: tx},
		History:    &txHistory{tx: tx},
	}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = staged
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Seed(_ context.Context, fixtures repository.Fixtures) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range fixtures.Users {
		s.users[u.ID] = u.User()
	}
	for _, eq := range fixtures.Equipment {
		s.equipment[eq.ID] = eq
	}
	for _, p := range fixtures.Parts {
		s.parts[p.ID] = p
	}
	for _, wt := range fixtures.WorkTypes {
		s.workTypes[wt.ID] = wt
	}
	for _, pr := range fixtures.PendingReasons {
		s.pending[pr.ID] = pr
	}
	return nil
}

type txState struct {
	st *state
}

type txWorkOrders struct {
	tx *txState
}

func (r *txWorkOrders) Create(_ context.Context, wo *domain.WorkOrder) error {
	r.tx.st.orders[wo.ID] = wo.Clone()
	return nil
}

func (r *txWorkOrders) Update(_ context.Context, wo *domain.WorkOrder) error {
	if _, ok := r.tx.st.orders[wo.ID]; !ok {
		return repository.ErrNotFound
	}
	r.tx.st.orders[wo.ID] = wo.Clone()
	return nil
}

func (r *txWorkOrders) GetByID(_ context.Context, id string) (*domain.WorkOrder, error) {
	return getOrder(r.tx.st, id)
}

func (r *txWorkOrders) GetForUpdate(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *txWorkOrders) List(_ context.Context, filter repository.WorkOrderFilter) ([]domain.WorkOrder, error) {
	return listOrders(r.tx.st, filter), nil
}

type txHistory struct {
	tx *txState
}

func (r *txHistory) Append(_ context.Context, entry *domain.HistoryEntry) error {
	if _, ok := r.tx.st.orders[entry.WorkOrderID]; !ok {
		return repository.ErrNotFound
	}
	r.tx.st.history = append(r.tx.st.history, cloneEntry(*entry))
	return nil
}

func (r *txHistory) ListByWorkOrder(_ context.Context, workOrderID string) ([]domain.HistoryEntry, error) {
	return historyFor(r.tx.st, workOrderID), nil
}

// workOrders reads the committed state and writes through single-statement
// transactions.
type workOrders struct {
	store *Store
}

func (r *workOrders) Create(ctx context.Context, wo *domain.WorkOrder) error {
	return r.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.WorkOrders.Create(ctx, wo)
	})
}

func (r *workOrders) Update(ctx context.Context, wo *domain.WorkOrder) error {
	return r.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.WorkOrders.Update(ctx, wo)
	})
}

func (r *workOrders) GetByID(_ context.Context, id string) (*domain.WorkOrder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return getOrder(r.store.state, id)
}

func (r *workOrders) GetForUpdate(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *workOrders) List(_ context.Context, filter repository.WorkOrderFilter) ([]domain.WorkOrder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return listOrders(r.store.state, filter), nil
}

type history struct {
	store *Store
}

func (r *history) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	return r.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.History.Append(ctx, entry)
	})
}

func (r *history) ListByWorkOrder(_ context.Context, workOrderID string) ([]domain.HistoryEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return historyFor(r.store.state, workOrderID), nil
}

type references struct {
	store *Store
}

func (r references) GetEquipment(_ context.Context, id string) (*domain.Equipment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if v, ok := r.store.equipment[id]; ok {
		return &v, nil
	}
	return nil, repository.ErrNotFound
}

func (r references) GetPart(_ context.Context, id string) (*domain.Part, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if v, ok := r.store.parts[id]; ok {
		return &v, nil
	}
	return nil, repository.ErrNotFound
}

func (r references) GetWorkType(_ context.Context, id string) (*domain.WorkType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if v, ok := r.store.workTypes[id]; ok {
		return &v, nil
	}
	return nil, repository.ErrNotFound
}

func (r references) GetPendingReason(_ context.Context, id string) (*domain.PendingReason, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if v, ok := r.store.pending[id]; ok {
		return &v, nil
	}
	return nil, repository.ErrNotFound
}

type users struct {
	store *Store
}

func (r users) GetUser(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if v, ok := r.store.users[id]; ok {
		return &v, nil
	}
	return nil, repository.ErrNotFound
}

func getOrder(st *state, id string) (*domain.WorkOrder, error) {
	wo, ok := st.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return wo.Clone(), nil
}

func listOrders(st *state, filter repository.WorkOrderFilter) []domain.WorkOrder {
	matched := make([]domain.WorkOrder, 0)
	for _, wo := range st.orders {
		if filter.Matches(wo) {
			matched = append(matched, *wo.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].InitiationDate.Equal(matched[j].InitiationDate) {
			return matched[i].InitiationDate.After(matched[j].InitiationDate)
		}
		return matched[i].ID < matched[j].ID
	})

	limit, offset := filter.Page()
	if offset >= len(matched) {
		return []domain.WorkOrder{}
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end]
}

// historyFor returns entries newest first; entries with equal timestamps keep
// reverse insertion order.
func historyFor(st *state, workOrderID string) []domain.HistoryEntry {
	result := make([]domain.HistoryEntry, 0)
	for i := len(st.history) - 1; i >= 0; i-- {
		if st.history[i].WorkOrderID == workOrderID {
			result = append(result, cloneEntry(st.history[i]))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

func cloneEntry(e domain.HistoryEntry) domain.HistoryEntry {
	snap := make(map[string]any, len(e.Snapshot))
	for k, v := range e.Snapshot {
		snap[k] = v
	}
	e.Snapshot = snap
	if e.ChangedBy != nil {
		v := *e.ChangedBy
		e.ChangedBy = &v
	}
	return e
}
