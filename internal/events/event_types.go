package events

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated     EventType = "incident_created"
	EventIncidentUpdated     EventType = "incident_updated"
	EventIncidentAssigned    EventType = "incident_assigned"
	EventIncidentTransferred EventType = "incident_transferred"
	EventIncidentClosed      EventType = "incident_closed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type         domain.ActorType `json:"type"`
	UserID       *string          `json:"user_id,omitempty"`
	TechnicianID *string          `json:"technician_id,omitempty"`
}

// Event represents a domain event emitted by services. Incident carries the
// full snapshot at emission time; Recipients lists notification targets.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	IncidentID string          `json:"incident_id"`
	Incident   domain.Incident `json:"incident"`
	Actor      Actor           `json:"actor"`
	Message    string          `json:"message,omitempty"`
	Recipients []string        `json:"recipients,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// SystemActor marks engine-originated events such as sweep assignments.
func SystemActor() Actor {
	return Actor{Type: domain.ActorTypeSystem}
}
