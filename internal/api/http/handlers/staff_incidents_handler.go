package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// StaffIncidentsHandler manages incident endpoints for technicians and team
// admins: queue views, detail, and the update path that drives routing.
type StaffIncidentsHandler struct {
	service *service.IncidentService
}

// NewStaffIncidentsHandler constructs handler.
func NewStaffIncidentsHandler(incidentService *service.IncidentService) *StaffIncidentsHandler {
	return &StaffIncidentsHandler{service: incidentService}
}

// ListIncidents GET /staff/incidents. Technicians see their own queue by
// default; "all=true" widens the view for triage.
func (h *StaffIncidentsHandler) ListIncidents(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || (principal.Technician == nil && principal.TeamAdmin == nil) {
		return apperrors.NewUnauthorized("staff required")
	}
	filter := parseIncidentQuery(c)
	if principal.Technician != nil && c.Query("all") != "true" {
		filter.HandlerID = &principal.Technician.ID
	}
	incidents, err := h.service.ListIncidents(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.IncidentSummary, 0, len(incidents))
	for i := range incidents {
		items = append(items, incidentSummary(&incidents[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetIncident GET /staff/incidents/:id.
func (h *StaffIncidentsHandler) GetIncident(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	incident, err := h.service.GetIncident(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.service.ListHistory(c.Context(), incident.ID)
	if err != nil {
		return err
	}
	attachments, err := h.service.ListAttachments(c.Context(), incident.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": incidentDetail(incident, history, attachments)})
}

// UpdateIncident PATCH /staff/incidents/:id. Carries the routing directives:
// category change, Tier2 escalation, Team-Admin escalation, manual handler.
func (h *StaffIncidentsHandler) UpdateIncident(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || (principal.Technician == nil && principal.TeamAdmin == nil) {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.UpdateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	actor := staffActor(principal)
	input := service.IncidentUpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		Status:          req.Status,
		Category:        req.Category,
		HandlerID:       req.HandlerID,
		AssignTier2:     req.AssignTier2,
		AssignTeamAdmin: req.AssignTeamAdmin,
		LocationID:      req.LocationID,
		Comment:         req.Comment,
	}
	incident, err := h.service.UpdateIncident(c.Context(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": incidentSummary(incident)})
}

func staffActor(principal *auth.Principal) service.ActorRef {
	if principal.Technician != nil {
		return service.TechnicianActor(principal.Technician.ID)
	}
	if principal.TeamAdmin != nil {
		return service.TechnicianActor(principal.TeamAdmin.ID)
	}
	return service.SystemActorRef()
}
