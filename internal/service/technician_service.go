package service

import (
	"context"
	"strings"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// TechnicianService manages technician and team admin records.
type TechnicianService struct {
	technicians repository.TechnicianRepository
	admins      repository.TeamAdminRepository
	teams       repository.TeamRepository
	bcryptCost  int
}

// NewTechnicianService constructs the service.
func NewTechnicianService(technicians repository.TechnicianRepository, admins repository.TeamAdminRepository, teams repository.TeamRepository, bcryptCost int) *TechnicianService {
	return &TechnicianService{technicians: technicians, admins: admins, teams: teams, bcryptCost: bcryptCost}
}

// TechnicianInput describes technician create/update payloads.
type TechnicianInput struct {
	Name      string
	Email     string
	Password  string
	TeamID    string
	Tier      string
	Skills    []string
	SortOrder int
}

// CreateTechnician registers a technician on a team. Skill tags are trimmed
// and capped; the tier label is normalized before storage.
func (s *TechnicianService) CreateTechnician(ctx context.Context, input TechnicianInput) (*domain.Technician, error) {
	team, tier, skills, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	tech := &domain.Technician{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		TeamID:       team.ID,
		TeamName:     team.Name,
		Tier:         tier,
		Skills:       skills,
		Active:       false,
		SortOrder:    input.SortOrder,
	}
	if err := s.technicians.Create(ctx, tech); err != nil {
		return nil, apperrors.MapError(err)
	}
	return tech, nil
}

// UpdateTechnician replaces a technician's profile fields. Password and active
// flag are managed by the auth flows, not here.
func (s *TechnicianService) UpdateTechnician(ctx context.Context, id string, input TechnicianInput) (*domain.Technician, error) {
	tech, err := s.GetTechnician(ctx, id)
	if err != nil {
		return nil, err
	}
	team, tier, skills, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}
	tech.Name = strings.TrimSpace(input.Name)
	tech.Email = strings.ToLower(strings.TrimSpace(input.Email))
	tech.TeamID = team.ID
	tech.TeamName = team.Name
	tech.Tier = tier
	tech.Skills = skills
	tech.SortOrder = input.SortOrder
	if err := s.technicians.Update(ctx, tech); err != nil {
		return nil, apperrors.MapError(err)
	}
	return tech, nil
}

// GetTechnician fetches a technician.
func (s *TechnicianService) GetTechnician(ctx context.Context, id string) (*domain.Technician, error) {
	tech, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return tech, nil
}

// ListTechnicians returns technicians matching the filter.
func (s *TechnicianService) ListTechnicians(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	list, err := s.technicians.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// TeamAdminInput describes team admin create payloads.
type TeamAdminInput struct {
	Name     string
	Email    string
	Password string
	TeamID   string
}

// CreateTeamAdmin registers the escalation target for a team.
func (s *TechnicianService) CreateTeamAdmin(ctx context.Context, input TeamAdminInput) (*domain.TeamAdmin, error) {
	team, err := s.lookupTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	admin := &domain.TeamAdmin{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		TeamID:       team.ID,
		TeamName:     team.Name,
		Active:       true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, apperrors.MapError(err)
	}
	return admin, nil
}

// ListTeamAdmins returns admins matching the filter.
func (s *TechnicianService) ListTeamAdmins(ctx context.Context, filter repository.TeamAdminFilter) ([]domain.TeamAdmin, error) {
	list, err := s.admins.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *TechnicianService) validate(ctx context.Context, input TechnicianInput) (*domain.Team, domain.TechnicianTier, []string, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, "", nil, apperrors.NewValidationError("name and email required", nil)
	}
	tier := domain.NormalizeTier(input.Tier)
	if tier != domain.TierOne && tier != domain.TierTwo {
		return nil, "", nil, apperrors.NewValidationError("tier must be TIER1 or TIER2", map[string]any{"tier": input.Tier})
	}

	skills := make([]string, 0, len(input.Skills))
	for _, raw := range input.Skills {
		if skill := strings.TrimSpace(raw); skill != "" {
			skills = append(skills, skill)
		}
	}
	if len(skills) == 0 {
		return nil, "", nil, apperrors.NewValidationError("at least one skill tag required", nil)
	}
	if len(skills) > domain.MaxSkillTags {
		return nil, "", nil, apperrors.NewValidationError("too many skill tags", map[string]any{
			"max":   domain.MaxSkillTags,
			"given": len(skills),
		})
	}

	team, err := s.lookupTeam(ctx, input.TeamID)
	if err != nil {
		return nil, "", nil, err
	}
	return team, tier, skills, nil
}

func (s *TechnicianService) lookupTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("team not found", map[string]any{"team_id": teamID})
		}
		return nil, apperrors.MapError(err)
	}
	return team, nil
}
