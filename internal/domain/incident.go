package domain

import "time"

// IncidentStatus enumerates lifecycle states for incidents.
type IncidentStatus string

const (
	IncidentStatusOpen         IncidentStatus = "OPEN"
	IncidentStatusHold         IncidentStatus = "HOLD"
	IncidentStatusInProgress   IncidentStatus = "IN_PROGRESS"
	IncidentStatusClosed       IncidentStatus = "CLOSED"
	IncidentStatusPending      IncidentStatus = "PENDING_ASSIGNMENT"
	IncidentStatusPendingTier2 IncidentStatus = "PENDING_TIER2_ASSIGNMENT"
)

// ActiveStatuses are the states that count against a technician's workload.
var ActiveStatuses = []IncidentStatus{
	IncidentStatusOpen,
	IncidentStatusHold,
	IncidentStatusInProgress,
}

// IsActive reports whether the status counts toward the workload ceiling.
func (s IncidentStatus) IsActive() bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// IsPending reports whether the incident is waiting for a technician.
func (s IncidentStatus) IsPending() bool {
	return s == IncidentStatusPending || s == IncidentStatusPendingTier2
}

// IncidentPriority enumerates urgency levels.
type IncidentPriority string

const (
	IncidentPriorityLow    IncidentPriority = "LOW"
	IncidentPriorityMedium IncidentPriority = "MEDIUM"
	IncidentPriorityHigh   IncidentPriority = "HIGH"
	IncidentPriorityUrgent IncidentPriority = "URGENT"
)

// Incident is the aggregate for reported IT incidents.
type Incident struct {
	ID          string
	Number      string
	Category    string
	Title       string
	Description string
	Status      IncidentStatus
	Priority    IncidentPriority
	HandlerID   *string
	InformantID string
	LocationID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}
