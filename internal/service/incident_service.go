package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// ActorRef identifies who performed an operation.
type ActorRef struct {
	Type domain.ActorType
	ID   *string
}

// UserActor builds an informant actor reference.
func UserActor(id string) ActorRef {
	return ActorRef{Type: domain.ActorTypeUser, ID: &id}
}

// TechnicianActor builds a technician actor reference.
func TechnicianActor(id string) ActorRef {
	return ActorRef{Type: domain.ActorTypeTechnician, ID: &id}
}

// SystemActorRef marks engine-originated changes.
func SystemActorRef() ActorRef {
	return ActorRef{Type: domain.ActorTypeSystem}
}

// IncidentService coordinates incident workflows: creation with automatic
// Tier1 routing, the fixed-precedence update path, history recording and
// post-update side effects.
type IncidentService struct {
	incidents   repository.IncidentRepository
	technicians repository.TechnicianRepository
	locations   repository.LocationRepository
	attachments repository.AttachmentRepository
	history     repository.IncidentHistoryRepository
	assignment  *AssignmentService
	sweeper     *SweepService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// IncidentDependencies bundles collaborators for the incident service.
type IncidentDependencies struct {
	IncidentRepo   repository.IncidentRepository
	TechnicianRepo repository.TechnicianRepository
	LocationRepo   repository.LocationRepository
	AttachmentRepo repository.AttachmentRepository
	HistoryRepo    repository.IncidentHistoryRepository
	Assignment     *AssignmentService
	Sweeper        *SweepService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{
		incidents:   deps.IncidentRepo,
		technicians: deps.TechnicianRepo,
		locations:   deps.LocationRepo,
		attachments: deps.AttachmentRepo,
		history:     deps.HistoryRepo,
		assignment:  deps.Assignment,
		sweeper:     deps.Sweeper,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// AttachmentInput defines attachment metadata supplied on creation.
type AttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// IncidentCreateInput describes incident creation payload.
type IncidentCreateInput struct {
	Category    string
	Title       string
	Description string
	Priority    domain.IncidentPriority
	LocationID  *string
	Attachments []AttachmentInput
}

// IncidentUpdateInput describes a partial update. Routing directives are
// evaluated in fixed precedence: category change, Tier2 auto-assign,
// Team-Admin assign, manual handler.
type IncidentUpdateInput struct {
	Title           *string
	Description     *string
	Priority        *domain.IncidentPriority
	Status          *domain.IncidentStatus
	Category        *string
	HandlerID       *string
	AssignTier2     bool
	AssignTeamAdmin bool
	LocationID      *string
	Comment         string
}

// CreateIncident files a new incident and attempts Tier1 assignment. When no
// skilled Tier1 technician has capacity the incident is queued as pending for
// the sweep to resolve.
func (s *IncidentService) CreateIncident(ctx context.Context, informantID string, input IncidentCreateInput) (*domain.Incident, error) {
	if strings.TrimSpace(input.Category) == "" {
		return nil, apperrors.NewValidationError("category required", nil)
	}
	if input.LocationID != nil {
		location, err := s.locations.GetByID(ctx, *input.LocationID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewNotFound("location", map[string]any{"location_id": *input.LocationID})
			}
			return nil, apperrors.MapError(err)
		}
		if !location.IsActive {
			return nil, apperrors.NewValidationError("location inactive", map[string]any{"location_id": location.ID})
		}
	}

	path, err := s.assignment.Resolve(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	tech, err := s.assignment.SelectTier1(ctx, path)
	if err != nil {
		return nil, err
	}

	incident := &domain.Incident{
		Number:      generateIncidentNumber(),
		Category:    input.Category,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		InformantID: informantID,
		LocationID:  input.LocationID,
	}
	if incident.Priority == "" {
		incident.Priority = domain.IncidentPriorityMedium
	}
	comment := "assigned on creation"
	if tech != nil {
		incident.Status = domain.IncidentStatusOpen
		incident.HandlerID = &tech.ID
	} else {
		incident.Status = domain.IncidentStatusPending
		comment = "no skilled Tier1 technician with capacity; queued for assignment"
	}

	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}

	var attachmentKey *string
	for _, att := range input.Attachments {
		record := &domain.AttachmentReference{
			IncidentID: incident.ID,
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			return nil, apperrors.MapError(err)
		}
		if attachmentKey == nil {
			key := record.StorageKey
			attachmentKey = &key
		}
	}

	if err := s.recordHistory(ctx, incident, UserActor(informantID), comment, attachmentKey); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventIncidentCreated, incident, UserActor(informantID), "incident created", s.recipients(incident))
	if tech != nil {
		s.publish(ctx, events.EventIncidentAssigned, incident, SystemActorRef(), "incident assigned to "+tech.Name, []string{tech.ID})
	}
	return incident, nil
}

// UpdateIncident applies a partial update, running the routing precedence
// chain, then records history, persists, and fires detached side effects.
func (s *IncidentService) UpdateIncident(ctx context.Context, actor ActorRef, incidentID string, input IncidentUpdateInput) (*domain.Incident, error) {
	incident, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": incidentID})
		}
		return nil, apperrors.MapError(err)
	}

	prevStatus := incident.Status
	prevHandler := incident.HandlerID

	if input.Title != nil {
		incident.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		incident.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		incident.Priority = *input.Priority
	}
	if input.LocationID != nil {
		incident.LocationID = input.LocationID
	}

	routed, err := s.applyRouting(ctx, incident, &input)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status != incident.Status {
		if err := s.applyStatusChange(incident, *input.Status, prevStatus); err != nil {
			return nil, err
		}
	}
	if incident.Status == domain.IncidentStatusClosed && incident.ClosedAt == nil {
		now := time.Now()
		incident.ClosedAt = &now
	}

	comment := input.Comment
	if comment == "" && routed {
		comment = "reassigned by routing"
	}
	if err := s.recordHistory(ctx, incident, actor, comment, nil); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.incidents.Update(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.emitUpdateEvents(ctx, incident, actor, prevStatus, prevHandler)
	s.triggerBackfill(incident, prevStatus, prevHandler)
	return incident, nil
}

// applyRouting evaluates the routing directives in fixed precedence order.
// It reports whether a directive changed the handler.
func (s *IncidentService) applyRouting(ctx context.Context, incident *domain.Incident, input *IncidentUpdateInput) (bool, error) {
	routed := false

	// Step 1: category change re-runs Tier1 resolution against the new
	// category. A selection failure forces the pending state and overrides
	// any simultaneously requested Tier2/Team-Admin flags.
	if input.Category != nil && *input.Category != incident.Category {
		incident.Category = *input.Category
		path, err := s.assignment.Resolve(ctx, incident.Category)
		if err != nil {
			return false, err
		}
		tech, err := s.assignment.SelectTier1(ctx, path)
		if err != nil {
			return false, err
		}
		if tech != nil {
			incident.HandlerID = &tech.ID
			if incident.Status.IsPending() {
				incident.Status = domain.IncidentStatusOpen
			}
			routed = true
		} else {
			incident.Status = domain.IncidentStatusPending
			incident.HandlerID = nil
			input.AssignTier2 = false
			input.AssignTeamAdmin = false
			return false, nil
		}
	}

	// Step 2: Tier2 auto-assign, unless step 1 already resolved the handler.
	if input.AssignTier2 && !routed {
		path, err := s.assignment.Resolve(ctx, incident.Category)
		if err != nil {
			return false, err
		}
		tech, err := s.assignment.SelectTier2(ctx, path)
		if err != nil {
			return false, err
		}
		if tech != nil {
			incident.HandlerID = &tech.ID
			if incident.Status.IsPending() {
				incident.Status = domain.IncidentStatusOpen
			}
			routed = true
		} else {
			incident.Status = domain.IncidentStatusPendingTier2
			incident.HandlerID = nil
			return false, nil
		}
	}

	// Step 3: Team-Admin assignment requires a current handler whose record
	// supplies the team. There is no pending state for this step.
	if input.AssignTeamAdmin {
		if incident.HandlerID == nil {
			return false, apperrors.NewValidationError("no current handler to escalate from", nil)
		}
		tech, err := s.technicians.GetByID(ctx, *incident.HandlerID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return false, apperrors.NewValidationError("current handler is not a technician", map[string]any{"handler_id": *incident.HandlerID})
			}
			return false, apperrors.MapError(err)
		}
		admin, err := s.assignment.FindTeamAdmin(ctx, tech)
		if err != nil {
			return false, err
		}
		incident.HandlerID = &admin.ID
		if incident.Status.IsPending() {
			incident.Status = domain.IncidentStatusOpen
		}
		return true, nil
	}

	// Step 4: manual handler assignment, only when none of the directives
	// above touched the handler.
	if input.HandlerID != nil && !routed {
		path, err := s.assignment.Resolve(ctx, incident.Category)
		if err != nil {
			return false, err
		}
		tech, err := s.assignment.ValidateManualAssignment(ctx, *input.HandlerID, path)
		if err != nil {
			return false, err
		}
		incident.HandlerID = &tech.ID
		if incident.Status.IsPending() {
			incident.Status = domain.IncidentStatusOpen
		}
		routed = true
	}
	return routed, nil
}

func (s *IncidentService) applyStatusChange(incident *domain.Incident, next, prev domain.IncidentStatus) error {
	if prev == domain.IncidentStatusClosed {
		return apperrors.NewValidationError("incident already closed", nil)
	}
	switch {
	case next == domain.IncidentStatusClosed:
		incident.Status = next
	case next.IsPending():
		return apperrors.NewValidationError("pending statuses are set by the routing engine", nil)
	case next.IsActive():
		if incident.HandlerID == nil {
			return apperrors.NewValidationError("cannot move unassigned incident to an active status", nil)
		}
		incident.Status = next
	default:
		return apperrors.NewValidationError("unknown status", map[string]any{"status": next})
	}
	return nil
}

// GetIncident fetches a single incident.
func (s *IncidentService) GetIncident(ctx context.Context, incidentID string) (*domain.Incident, error) {
	incident, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": incidentID})
		}
		return nil, apperrors.MapError(err)
	}
	return incident, nil
}

// ListIncidents returns incidents matching the filter.
func (s *IncidentService) ListIncidents(ctx context.Context, filter repository.IncidentFilter) ([]domain.Incident, error) {
	list, err := s.incidents.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// ListHistory returns the audit trail for an incident.
func (s *IncidentService) ListHistory(ctx context.Context, incidentID string) ([]domain.IncidentHistory, error) {
	entries, err := s.history.ListByIncident(ctx, incidentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// ListAttachments returns attachment metadata for an incident.
func (s *IncidentService) ListAttachments(ctx context.Context, incidentID string) ([]domain.AttachmentReference, error) {
	list, err := s.attachments.ListByIncident(ctx, incidentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *IncidentService) recordHistory(ctx context.Context, incident *domain.Incident, actor ActorRef, comment string, attachmentKey *string) error {
	entry := &domain.IncidentHistory{
		IncidentID:    incident.ID,
		Status:        incident.Status,
		AssigneeName:  s.assigneeName(ctx, incident.HandlerID),
		ActorType:     actor.Type,
		ActorID:       actor.ID,
		Comment:       comment,
		Category:      incident.Category,
		Location:      s.locationName(ctx, incident.LocationID),
		AttachmentKey: attachmentKey,
	}
	return s.history.Create(ctx, entry)
}

// assigneeName resolves the handler's display name; lookup failures degrade
// to the raw identifier rather than aborting the mutation.
func (s *IncidentService) assigneeName(ctx context.Context, handlerID *string) string {
	if handlerID == nil {
		return ""
	}
	if tech, err := s.technicians.GetByID(ctx, *handlerID); err == nil {
		return tech.Name
	}
	return *handlerID
}

func (s *IncidentService) locationName(ctx context.Context, locationID *string) string {
	if locationID == nil || s.locations == nil {
		return ""
	}
	if location, err := s.locations.GetByID(ctx, *locationID); err == nil {
		return location.Name
	}
	return ""
}

func (s *IncidentService) emitUpdateEvents(ctx context.Context, incident *domain.Incident, actor ActorRef, prevStatus domain.IncidentStatus, prevHandler *string) {
	handlerChanged := !handlerEqual(prevHandler, incident.HandlerID)
	switch {
	case prevStatus != domain.IncidentStatusClosed && incident.Status == domain.IncidentStatusClosed:
		s.publish(ctx, events.EventIncidentClosed, incident, actor, "incident closed", s.recipients(incident))
	case handlerChanged && prevHandler != nil && incident.HandlerID != nil:
		s.publish(ctx, events.EventIncidentTransferred, incident, actor,
			"incident transferred to "+s.assigneeName(ctx, incident.HandlerID), s.recipients(incident))
	case handlerChanged && incident.HandlerID != nil:
		s.publish(ctx, events.EventIncidentAssigned, incident, actor,
			"incident assigned to "+s.assigneeName(ctx, incident.HandlerID), s.recipients(incident))
	default:
		s.publish(ctx, events.EventIncidentUpdated, incident, actor, "incident updated", s.recipients(incident))
	}
}

// triggerBackfill fires the detached post-update side effects: backfilling
// the vacating technician's queue and sweeping the Tier2-pending pool. These
// never block or fail the request that triggered them.
func (s *IncidentService) triggerBackfill(incident *domain.Incident, prevStatus domain.IncidentStatus, prevHandler *string) {
	if s.sweeper == nil {
		return
	}
	closed := prevStatus != domain.IncidentStatusClosed && incident.Status == domain.IncidentStatusClosed
	handlerChanged := !handlerEqual(prevHandler, incident.HandlerID)
	if !closed && !handlerChanged {
		return
	}
	vacating := prevHandler
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if vacating != nil {
			if err := s.sweeper.BackfillTechnician(ctx, *vacating); err != nil {
				s.logger.Warn("backfill after close/transfer failed", zap.String("technician_id", *vacating), zap.Error(err))
			}
		}
		if _, err := s.sweeper.SweepTier2(ctx); err != nil {
			s.logger.Warn("tier2 pending sweep failed", zap.Error(err))
		}
	}()
}

func (s *IncidentService) recipients(incident *domain.Incident) []string {
	recipients := []string{incident.InformantID}
	if incident.HandlerID != nil {
		recipients = append(recipients, *incident.HandlerID)
	}
	return recipients
}

func (s *IncidentService) publish(ctx context.Context, eventType events.EventType, incident *domain.Incident, actor ActorRef, message string, recipients []string) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		IncidentID: incident.ID,
		Incident:   *incident,
		Actor:      eventActor(actor),
		Message:    message,
		Recipients: recipients,
		Timestamp:  time.Now(),
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor ActorRef) events.Actor {
	switch actor.Type {
	case domain.ActorTypeUser:
		return events.Actor{Type: actor.Type, UserID: actor.ID}
	case domain.ActorTypeTechnician:
		return events.Actor{Type: actor.Type, TechnicianID: actor.ID}
	default:
		return events.SystemActor()
	}
}

func handlerEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func generateIncidentNumber() string {
	return "INC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
