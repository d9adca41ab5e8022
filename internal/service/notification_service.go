package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventWorkOrderCreated, n.handleCreated)
	n.dispatcher.Subscribe(events.EventWorkOrderAccepted, n.handleUtilitiesDecision)
	n.dispatcher.Subscribe(events.EventWorkOrderRejected, n.handleUtilitiesDecision)
	n.dispatcher.Subscribe(events.EventWorkOrderCompleted, n.handleUtilitiesDecision)
	n.dispatcher.Subscribe(events.EventWorkOrderClosed, n.handleSignOff)
	n.dispatcher.Subscribe(events.EventWorkOrderReopened, n.handleSignOff)
}

// handleCreated tells the servicing department a new request is waiting.
func (n *NotificationService) handleCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("WorkOrderCreated", zap.String("workorder_id", event.WorkOrderID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// handleUtilitiesDecision tells the initiator their request moved.
func (n *NotificationService) handleUtilitiesDecision(ctx context.Context, event events.Event) error {
	n.logger.Info("WorkOrderProgressed",
		zap.String("workorder_id", event.WorkOrderID),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSignOff(ctx context.Context, event events.Event) error {
	n.logger.Info("WorkOrderSignOff",
		zap.String("workorder_id", event.WorkOrderID),
		zap.String("event_type", string(event.Type)))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("workorder_id", event.WorkOrderID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("workorder_id", event.WorkOrderID),
		zap.String("event_type", string(event.Type)))
}
