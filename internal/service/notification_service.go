package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/events"
)

// NotificationService turns lifecycle events into outbound notifications.
// Delivery itself is stubbed: payloads are logged with their recipients, and
// the configured email sender and webhook endpoint are recorded on each entry
// so a real transport can be dropped in behind the same handler.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{cfg: cfg, logger: logger}
}

// Register subscribes the service to every incident lifecycle event.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventIncidentCreated,
		events.EventIncidentUpdated,
		events.EventIncidentAssigned,
		events.EventIncidentTransferred,
		events.EventIncidentClosed,
	} {
		dispatcher.Subscribe(eventType, s.handle)
	}
}

func (s *NotificationService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("incident_id", event.IncidentID),
		zap.String("incident_number", event.Incident.Number),
		zap.String("status", string(event.Incident.Status)),
		zap.Strings("recipients", event.Recipients),
		zap.String("message", event.Message),
		zap.String("email_from", s.cfg.EmailFrom),
	}
	if s.cfg.WebhookURL != "" {
		fields = append(fields, zap.String("webhook_url", s.cfg.WebhookURL))
	}
	s.logger.Info("notification dispatched", fields...)
	return nil
}
