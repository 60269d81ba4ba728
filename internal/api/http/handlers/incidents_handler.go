package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// IncidentsHandler manages end-user incident endpoints.
type IncidentsHandler struct {
	service *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidentService *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{service: incidentService}
}

// CreateIncident POST /incidents.
func (h *IncidentsHandler) CreateIncident(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Category == "" || strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("category and title required", nil)
	}

	input := service.IncidentCreateInput{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		LocationID:  req.LocationID,
	}
	for _, att := range req.Attachments {
		input.Attachments = append(input.Attachments, service.AttachmentInput{
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		})
	}
	incident, err := h.service.CreateIncident(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": incidentSummary(incident)})
}

// ListIncidents GET /incidents returns the caller's own incidents.
func (h *IncidentsHandler) ListIncidents(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter := parseIncidentQuery(c)
	filter.InformantID = &principal.User.ID
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

// GetIncident GET /incidents/:id.
func (h *IncidentsHandler) GetIncident(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	incident, err := h.service.GetIncident(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if incident.InformantID != principal.User.ID {
		return apperrors.NewForbidden("incident belongs to another informant")
	}
	return h.detail(c, incident)
}

// CloseIncident POST /incidents/:id/close lets the informant close their own
// incident.
func (h *IncidentsHandler) CloseIncident(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	incident, err := h.service.GetIncident(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if incident.InformantID != principal.User.ID {
		return apperrors.NewForbidden("incident belongs to another informant")
	}
	closed := domain.IncidentStatusClosed
	updated, err := h.service.UpdateIncident(c.Context(), service.UserActor(principal.User.ID), incident.ID, service.IncidentUpdateInput{
		Status:  &closed,
		Comment: "closed by informant",
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": incidentSummary(updated)})
}

func (h *IncidentsHandler) detail(c *fiber.Ctx, incident *domain.Incident) error {
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

func parseIncidentQuery(c *fiber.Ctx) repository.IncidentFilter {
	filter := repository.IncidentFilter{}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, domain.IncidentStatus(strings.ToUpper(part)))
			}
		}
	}
	if raw := c.Query("priority"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Priorities = append(filter.Priorities, domain.IncidentPriority(strings.ToUpper(part)))
			}
		}
	}
	if raw := c.Query("category"); raw != "" {
		filter.Category = &raw
	}
	if raw := c.Query("q"); raw != "" {
		filter.SearchTerm = &raw
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			filter.Offset = offset
		}
	}
	return filter
}
