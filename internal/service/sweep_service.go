package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// SweepService retries assignment for incidents stuck in a pending state and
// backfills technicians whose queues have freed up. It runs on a schedule and
// on demand after closes and transfers.
type SweepService struct {
	incidents   repository.IncidentRepository
	technicians repository.TechnicianRepository
	history     repository.IncidentHistoryRepository
	assignment  *AssignmentService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// SweepDependencies bundles collaborators for the sweep service.
type SweepDependencies struct {
	IncidentRepo   repository.IncidentRepository
	TechnicianRepo repository.TechnicianRepository
	HistoryRepo    repository.IncidentHistoryRepository
	Assignment     *AssignmentService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewSweepService constructs the service.
func NewSweepService(deps SweepDependencies) *SweepService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{
		incidents:   deps.IncidentRepo,
		technicians: deps.TechnicianRepo,
		history:     deps.HistoryRepo,
		assignment:  deps.Assignment,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// RunPendingSweep processes both pending pools oldest-first and returns the
// number of incidents assigned. A single incident's failure never aborts the
// sweep; unresolvable ones stay queued for the next run.
func (s *SweepService) RunPendingSweep(ctx context.Context) (int, error) {
	assigned, err := s.sweepPool(ctx, domain.IncidentStatusPending, false)
	if err != nil {
		return assigned, err
	}
	tier2, err := s.SweepTier2(ctx)
	return assigned + tier2, err
}

// SweepTier2 retries only the Tier2-pending pool.
func (s *SweepService) SweepTier2(ctx context.Context) (int, error) {
	return s.sweepPool(ctx, domain.IncidentStatusPendingTier2, true)
}

func (s *SweepService) sweepPool(ctx context.Context, status domain.IncidentStatus, tier2 bool) (int, error) {
	pending, err := s.incidents.ListPending(ctx, status)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	assigned := 0
	for i := range pending {
		incident := &pending[i]
		path, err := s.assignment.Resolve(ctx, incident.Category)
		if err != nil {
			if isTerminalValidation(err) {
				s.logger.Warn("pending incident has unresolvable category",
					zap.String("incident_id", incident.ID),
					zap.String("category", incident.Category))
				continue
			}
			return assigned, err
		}
		var tech *domain.Technician
		if tier2 {
			tech, err = s.assignment.SelectTier2(ctx, path)
		} else {
			tech, err = s.assignment.SelectTier1(ctx, path)
		}
		if err != nil {
			return assigned, err
		}
		if tech == nil {
			continue
		}
		if err := s.assignPending(ctx, incident, tech); err != nil {
			s.logger.Warn("sweep assignment failed",
				zap.String("incident_id", incident.ID),
				zap.String("technician_id", tech.ID),
				zap.Error(err))
			continue
		}
		assigned++
	}
	return assigned, nil
}

// BackfillTechnician tries to fill a technician's freed capacity from the
// pending pools: the technician's own team first, then other teams. Capacity
// is re-checked before every assignment because concurrent updates may have
// consumed it.
func (s *SweepService) BackfillTechnician(ctx context.Context, technicianID string) error {
	tech, err := s.technicians.GetByID(ctx, technicianID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if !tech.Active {
		return nil
	}

	status := domain.IncidentStatusPending
	if domain.NormalizeTier(string(tech.Tier)) == domain.TierTwo {
		status = domain.IncidentStatusPendingTier2
	}
	pending, err := s.incidents.ListPending(ctx, status)
	if err != nil {
		return apperrors.MapError(err)
	}

	// Own-team incidents take priority over cross-team ones.
	for _, ownTeam := range []bool{true, false} {
		for i := range pending {
			incident := &pending[i]
			if incident.Status != status {
				continue
			}
			ok, err := s.assignment.Gate().HasCapacity(ctx, tech.ID)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			path, err := s.assignment.Resolve(ctx, incident.Category)
			if err != nil {
				if isTerminalValidation(err) {
					continue
				}
				return err
			}
			if (path.TeamID == tech.TeamID) != ownTeam {
				continue
			}
			if !MatchesSkills(tech, path) {
				continue
			}
			if err := s.assignPending(ctx, incident, tech); err != nil {
				s.logger.Warn("backfill assignment failed",
					zap.String("incident_id", incident.ID),
					zap.String("technician_id", tech.ID),
					zap.Error(err))
				continue
			}
		}
	}
	return nil
}

func (s *SweepService) assignPending(ctx context.Context, incident *domain.Incident, tech *domain.Technician) error {
	incident.Status = domain.IncidentStatusOpen
	incident.HandlerID = &tech.ID

	entry := &domain.IncidentHistory{
		IncidentID:   incident.ID,
		Status:       incident.Status,
		AssigneeName: tech.Name,
		ActorType:    domain.ActorTypeSystem,
		Comment:      "assigned from pending queue",
		Category:     incident.Category,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.incidents.Update(ctx, incident); err != nil {
		return apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:         uuid.NewString(),
			Type:       events.EventIncidentAssigned,
			IncidentID: incident.ID,
			Incident:   *incident,
			Actor:      events.SystemActor(),
			Message:    "incident assigned to " + tech.Name,
			Recipients: []string{incident.InformantID, tech.ID},
			Timestamp:  time.Now(),
		})
	}
	return nil
}
