package service

import (
	"context"

	"github.com/spec-kit/incident-service/internal/repository"
)

// WorkloadGate counts a technician's non-terminal incidents and enforces the
// capacity ceiling. The count-then-compare is not atomic with the subsequent
// save, so two concurrent assignments can transiently exceed the ceiling;
// single-threaded sequences never do.
type WorkloadGate struct {
	incidents repository.IncidentRepository
	ceiling   int
}

// DefaultMaxActiveAssignments is the workload ceiling used when no explicit
// configuration is supplied.
const DefaultMaxActiveAssignments = 3

// NewWorkloadGate constructs the gate.
func NewWorkloadGate(incidents repository.IncidentRepository, ceiling int) *WorkloadGate {
	if ceiling <= 0 {
		ceiling = DefaultMaxActiveAssignments
	}
	return &WorkloadGate{incidents: incidents, ceiling: ceiling}
}

// Ceiling returns the configured capacity limit.
func (g *WorkloadGate) Ceiling() int {
	return g.ceiling
}

// Count returns the technician's current number of active incidents.
func (g *WorkloadGate) Count(ctx context.Context, technicianID string) (int, error) {
	return g.incidents.CountActiveByHandler(ctx, technicianID)
}

// HasCapacity reports whether the technician is under the ceiling.
func (g *WorkloadGate) HasCapacity(ctx context.Context, technicianID string) (bool, error) {
	count, err := g.Count(ctx, technicianID)
	if err != nil {
		return false, err
	}
	return count < g.ceiling, nil
}
