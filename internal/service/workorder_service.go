package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/access"
	"github.com/spec-kit/workorder-service/internal/audit"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/observability"
	"github.com/spec-kit/workorder-service/internal/repository"
	"github.com/spec-kit/workorder-service/internal/workflow"
	"github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// WorkOrderService coordinates work order workflows. Every mutation runs in
// one store transaction that locks the row, applies the state machine,
// writes the record and appends exactly one history entry.
type WorkOrderService struct {
	store      repository.Store
	references repository.ReferenceRepository
	machine    *workflow.Machine
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// WorkOrderDependencies bundles collaborators for the service.
type WorkOrderDependencies struct {
	Store repository.Store
	// References defaults to Store.References().
	References repository.ReferenceRepository
	Machine    *workflow.Machine
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// ListFilter describes caller-supplied listing filters. Access scope is
// applied on top.
type ListFilter struct {
	Statuses   []domain.WorkStatus
	Department *domain.Department
	Accepted   *bool
	Closed     *domain.ClosedState
	Limit      int
	Offset     int
}

// NewWorkOrderService constructs the service.
func NewWorkOrderService(deps WorkOrderDependencies) *WorkOrderService {
	refs := deps.References
	if refs == nil {
		refs = deps.Store.References()
	}
	machine := deps.Machine
	if machine == nil {
		machine = workflow.NewMachine(false)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkOrderService{
		store:      deps.Store,
		references: refs,
		machine:    machine,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Create raises a new Pending work order and records the created entry.
func (s *WorkOrderService) Create(ctx context.Context, actor domain.Actor, input workflow.CreateInput) (*domain.WorkOrder, error) {
	wo, err := s.machine.NewWorkOrder(input, actor)
	if err != nil {
		s.metrics.RecordTransitionFailure("create", errorutil.ToDomainError(err).Code)
		return nil, err
	}
	if err := s.checkReferences(ctx, wo.EquipmentID, wo.WorkTypeID, wo.PartID, nil); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(domain.ActionCreated, nil, audit.Snapshot(wo), actorRef(actor), wo.InitiationDate)
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.WorkOrders.Create(ctx, wo); err != nil {
			return err
		}
		return repos.History.Append(ctx, &entry)
	})
	if err != nil {
		return nil, s.storeError(err)
	}

	s.metrics.RecordTransition(string(domain.ActionCreated))
	s.logger.Info("work order created",
		zap.String("workorder_id", wo.ID),
		zap.String("actor_id", actor.ID),
		zap.String("department", string(wo.Department)))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventWorkOrderCreated,
		WorkOrderID: wo.ID,
		Actor:       eventActor(actor),
		Payload: events.WorkOrderCreatedPayload{
			Department:  wo.Department,
			EquipmentID: wo.EquipmentID,
			Problem:     wo.Problem,
		},
	})
	return wo, nil
}

// Accept moves a Pending work order to In_Process.
func (s *WorkOrderService) Accept(ctx context.Context, actor domain.Actor, id string, cmd workflow.Accept) (*domain.WorkOrder, error) {
	return s.transition(ctx, actor, id, cmd)
}

// Reject declines a work order.
func (s *WorkOrderService) Reject(ctx context.Context, actor domain.Actor, id string) (*domain.WorkOrder, error) {
	return s.transition(ctx, actor, id, workflow.Reject{})
}

// Complete finishes an In_Process work order.
func (s *WorkOrderService) Complete(ctx context.Context, actor domain.Actor, id string) (*domain.WorkOrder, error) {
	return s.transition(ctx, actor, id, workflow.Complete{})
}

// Close records production's sign-off or reopens the work order.
func (s *WorkOrderService) Close(ctx context.Context, actor domain.Actor, id string, cmd workflow.Close) (*domain.WorkOrder, error) {
	return s.transition(ctx, actor, id, cmd)
}

// Update applies a partial update with field-level ownership.
func (s *WorkOrderService) Update(ctx context.Context, actor domain.Actor, id string, patch workflow.Patch) (*domain.WorkOrder, error) {
	cmd := workflow.Update{Patch: patch}
	if err := s.machine.Authorize(cmd, actor); err != nil {
		s.recordFailure(cmd.Operation(), id, actor, err)
		return nil, err
	}
	if patch.PendingReasonID != nil {
		if err := s.checkReferences(ctx, "", "", nil, patch.PendingReasonID); err != nil {
			return nil, err
		}
	}
	return s.transition(ctx, actor, id, cmd)
}

func (s *WorkOrderService) transition(ctx context.Context, actor domain.Actor, id string, cmd workflow.Command) (*domain.WorkOrder, error) {
	if err := s.machine.Authorize(cmd, actor); err != nil {
		s.recordFailure(cmd.Operation(), id, actor, err)
		return nil, err
	}

	var outcome workflow.Outcome
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.WorkOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !access.CanView(actor, current) {
			return repository.ErrNotFound
		}
		outcome, err = s.machine.Apply(current, cmd, actor)
		if err != nil {
			return err
		}
		if err := repos.WorkOrders.Update(ctx, outcome.After); err != nil {
			return err
		}
		entry := audit.NewEntry(outcome.Action,
			audit.Snapshot(outcome.Before), audit.Snapshot(outcome.After),
			actorRef(actor), outcome.After.UpdatedAt)
		return repos.History.Append(ctx, &entry)
	})
	if err != nil {
		err = s.storeError(err)
		s.recordFailure(cmd.Operation(), id, actor, err)
		return nil, err
	}

	after := outcome.After
	s.metrics.RecordTransition(string(outcome.Action))
	s.logger.Info("work order transitioned",
		zap.String("workorder_id", after.ID),
		zap.String("actor_id", actor.ID),
		zap.String("operation", string(cmd.Operation())),
		zap.String("action", string(outcome.Action)),
		zap.String("from", string(outcome.Before.Status)),
		zap.String("to", string(after.Status)))
	s.publishEvent(ctx, events.Event{
		Type:        events.TypeForAction(outcome.Action),
		WorkOrderID: after.ID,
		Actor:       eventActor(actor),
		Payload: events.WorkOrderTransitionPayload{
			Action:        outcome.Action,
			FromStatus:    outcome.Before.Status,
			ToStatus:      after.Status,
			ChangedFields: outcome.Changes.Fields,
			AssignedTo:    after.AssignedTo,
			InitiatedBy:   after.InitiatedBy,
		},
	})
	return after, nil
}

// Get returns one work order the actor can see.
func (s *WorkOrderService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.WorkOrder, error) {
	wo, err := s.store.Repositories().WorkOrders.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err)
	}
	if !access.CanView(actor, wo) {
		return nil, errorutil.NewNotFound("work order", map[string]any{"id": id})
	}
	return wo, nil
}

// List returns the work orders visible to actor, newest first.
func (s *WorkOrderService) List(ctx context.Context, actor domain.Actor, filter ListFilter) ([]domain.WorkOrder, error) {
	scope := access.ScopeFor(actor)
	if scope.Empty() {
		return []domain.WorkOrder{}, nil
	}
	list, err := s.store.Repositories().WorkOrders.List(ctx, repository.WorkOrderFilter{
		Scope:      scope,
		Statuses:   filter.Statuses,
		Department: filter.Department,
		Accepted:   filter.Accepted,
		Closed:     filter.Closed,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	return list, nil
}

// History returns the audit trail of a visible work order, newest first.
func (s *WorkOrderService) History(ctx context.Context, actor domain.Actor, id string) ([]domain.HistoryEntry, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.store.Repositories().History.ListByWorkOrder(ctx, id)
	if err != nil {
		return nil, s.storeError(err)
	}
	return entries, nil
}

// CheckAccess applies the list rules to a single work order.
func (s *WorkOrderService) CheckAccess(ctx context.Context, actor domain.Actor, id string) (access.Decision, error) {
	wo, err := s.store.Repositories().WorkOrders.GetByID(ctx, id)
	if err != nil {
		return access.DecisionUnauthorized, s.storeError(err)
	}
	return access.Check(actor, wo), nil
}

func (s *WorkOrderService) checkReferences(ctx context.Context, equipmentID, workTypeID string, partID, pendingReasonID *string) error {
	if equipmentID != "" {
		if _, err := s.references.GetEquipment(ctx, equipmentID); err != nil {
			return s.lookupError("equipment", equipmentID, err)
		}
	}
	if workTypeID != "" {
		if _, err := s.references.GetWorkType(ctx, workTypeID); err != nil {
			return s.lookupError("work type", workTypeID, err)
		}
	}
	if partID != nil {
		if _, err := s.references.GetPart(ctx, *partID); err != nil {
			return s.lookupError("part", *partID, err)
		}
	}
	if pendingReasonID != nil {
		if _, err := s.references.GetPendingReason(ctx, *pendingReasonID); err != nil {
			return s.lookupError("pending reason", *pendingReasonID, err)
		}
	}
	return nil
}

func (s *WorkOrderService) lookupError(resource, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound(resource, map[string]any{"id": id})
	}
	return s.storeError(err)
}

// storeError passes domain errors through and hides everything else behind
// INTERNAL_ERROR.
func (s *WorkOrderService) storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound("work order", nil)
	}
	var domainErr *errorutil.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	s.logger.Error("store operation failed", zap.Error(err))
	return errorutil.NewInternalError(err)
}

func (s *WorkOrderService) recordFailure(op workflow.Operation, id string, actor domain.Actor, err error) {
	code := errorutil.ToDomainError(err).Code
	s.metrics.RecordTransitionFailure(string(op), code)
	s.logger.Debug("work order operation refused",
		zap.String("workorder_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("operation", string(op)),
		zap.String("code", code))
}

func (s *WorkOrderService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func actorRef(actor domain.Actor) *string {
	if actor.ID == "" {
		return nil
	}
	id := actor.ID
	return &id
}

func eventActor(actor domain.Actor) events.Actor {
	return events.Actor{UserID: actor.ID, Username: actor.Username}
}
