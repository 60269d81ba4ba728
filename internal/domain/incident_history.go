package domain

import "time"

// ActorType indicates who performed a recorded change.
type ActorType string

const (
	ActorTypeUser       ActorType = "USER"
	ActorTypeTechnician ActorType = "TECHNICIAN"
	ActorTypeSystem     ActorType = "SYSTEM"
)

// IncidentHistory is an immutable audit trail entry. Rows are only ever
// inserted, never updated or deleted.
type IncidentHistory struct {
	ID            string
	IncidentID    string
	Status        IncidentStatus
	AssigneeName  string
	ActorType     ActorType
	ActorID       *string
	Comment       string
	Category      string
	Location      string
	AttachmentKey *string
	CreatedAt     time.Time
}
