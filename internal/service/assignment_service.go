package service

import (
	"context"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// AssignmentService is the routing core: it resolves an incident's category
// to a team, filters technicians by skill and tier, and selects the next
// candidate under the workload ceiling via rotation. A nil technician with a
// nil error means "no capacity anywhere": the caller queues the incident in a
// pending status rather than failing.
type AssignmentService struct {
	technicians repository.TechnicianRepository
	admins      repository.TeamAdminRepository
	resolver    *CategoryResolver
	rotation    *RotationSelector
	gate        *WorkloadGate
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TechnicianRepo repository.TechnicianRepository
	TeamAdminRepo  repository.TeamAdminRepository
	Resolver       *CategoryResolver
	Rotation       *RotationSelector
	Gate           *WorkloadGate
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		technicians: deps.TechnicianRepo,
		admins:      deps.TeamAdminRepo,
		resolver:    deps.Resolver,
		rotation:    deps.Rotation,
		gate:        deps.Gate,
	}
}

// Resolve exposes category resolution to callers that need the path.
func (s *AssignmentService) Resolve(ctx context.Context, category string) (*domain.CategoryPath, error) {
	return s.resolver.Resolve(ctx, category)
}

// Gate exposes the workload gate for capacity re-checks.
func (s *AssignmentService) Gate() *WorkloadGate {
	return s.gate
}

// SelectTier1 picks a Tier1 technician for the resolved category, or nil when
// no skilled candidate has capacity.
func (s *AssignmentService) SelectTier1(ctx context.Context, path *domain.CategoryPath) (*domain.Technician, error) {
	tier := domain.TierOne
	active := true
	candidates, err := s.technicians.List(ctx, repository.TechnicianFilter{
		TeamID: &path.TeamID,
		Tier:   &tier,
		Active: &active,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	key := RotationKey{TeamID: path.TeamID, Tier: domain.TierOne, SubCategory: path.SubCategory}
	return s.rotation.Select(ctx, key, filterSkilled(candidates, path))
}

// SelectTier2 picks a Tier2 technician. The candidate query matches the team
// by identifier or name in one pass, absorbing rows where imported data put a
// team name in the identifier column.
func (s *AssignmentService) SelectTier2(ctx context.Context, path *domain.CategoryPath) (*domain.Technician, error) {
	tier := domain.TierTwo
	active := true
	candidates, err := s.technicians.List(ctx, repository.TechnicianFilter{
		TeamID:   &path.TeamID,
		TeamName: &path.TeamName,
		Tier:     &tier,
		Active:   &active,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	key := RotationKey{TeamID: path.TeamID, Tier: domain.TierTwo}
	return s.rotation.Select(ctx, key, filterSkilled(candidates, path))
}

// FindTeamAdmin looks up the active team admin for the handler's team by
// team identifier or name. Team-Admin escalation has no pending state, so a
// missing admin is a terminal validation error. No capacity check is applied:
// admins absorb overflow.
func (s *AssignmentService) FindTeamAdmin(ctx context.Context, tech *domain.Technician) (*domain.TeamAdmin, error) {
	active := true
	admins, err := s.admins.List(ctx, repository.TeamAdminFilter{
		TeamID:   &tech.TeamID,
		TeamName: &tech.TeamName,
		Active:   &active,
		Limit:    1,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(admins) == 0 {
		return nil, apperrors.NewValidationError("no active team admin for team", map[string]any{
			"team_id":   tech.TeamID,
			"team_name": tech.TeamName,
		})
	}
	return &admins[0], nil
}

// ValidateManualAssignment checks a directly supplied handler: the target
// must exist, be active, be skilled for the incident's current category, and
// be under the workload ceiling. Failures name the specific deficiency.
func (s *AssignmentService) ValidateManualAssignment(ctx context.Context, technicianID string, path *domain.CategoryPath) (*domain.Technician, error) {
	tech, err := s.technicians.GetByID(ctx, technicianID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if !tech.Active {
		return nil, apperrors.NewValidationError("technician is not active", map[string]any{"technician_id": technicianID})
	}
	if !MatchesSkills(tech, path) {
		return nil, apperrors.NewValidationError("technician is not skilled for category", map[string]any{
			"technician_id": technicianID,
			"category":      path.ItemName,
			"sub_category":  path.SubCategory,
		})
	}
	ok, err := s.gate.HasCapacity(ctx, tech.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewValidationError("technician is at capacity", map[string]any{
			"technician_id": technicianID,
			"ceiling":       s.gate.Ceiling(),
		})
	}
	return tech, nil
}
