package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/civicguard/internal/config"
	"github.com/spec-kit/civicguard/internal/events"
	"github.com/spec-kit/civicguard/internal/notify"
)

// NotificationService observes ticket lifecycle events, logging them and
// forwarding them to an optional operator webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notify.ApiNotifier
	logger     *zap.Logger
	cfg        config.NotifyConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notify.ApiNotifier, logger *zap.Logger, cfg config.NotifyConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketFiling, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketFiled, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))

	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	if err := n.notifier.Post(ctx, n.cfg.WebhookURL, event); err != nil {
		n.logger.Warn("lifecycle webhook failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return nil
}
