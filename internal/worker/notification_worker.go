package worker

import (
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/service"
)

// RegisterNotificationHandlers wires the notification service into the event
// dispatcher. Kept here so cmd wiring treats background consumers uniformly.
func RegisterNotificationHandlers(dispatcher events.Dispatcher, notifications *service.NotificationService) {
	notifications.Register(dispatcher)
}
