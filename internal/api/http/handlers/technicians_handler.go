package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// TechniciansHandler manages technician and team admin administration.
type TechniciansHandler struct {
	service *service.TechnicianService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(technicianService *service.TechnicianService) *TechniciansHandler {
	return &TechniciansHandler{service: technicianService}
}

// CreateTechnician POST /admin/technicians.
func (h *TechniciansHandler) CreateTechnician(c *fiber.Ctx) error {
	var req dto.TechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tech, err := h.service.CreateTechnician(c.Context(), service.TechnicianInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		TeamID:    req.TeamID,
		Tier:      req.Tier,
		Skills:    req.Skills,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": technicianResponse(tech)})
}

// UpdateTechnician PUT /admin/technicians/:id.
func (h *TechniciansHandler) UpdateTechnician(c *fiber.Ctx) error {
	var req dto.TechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tech, err := h.service.UpdateTechnician(c.Context(), c.Params("id"), service.TechnicianInput{
		Name:      req.Name,
		Email:     req.Email,
		TeamID:    req.TeamID,
		Tier:      req.Tier,
		Skills:    req.Skills,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": technicianResponse(tech)})
}

// GetTechnician GET /admin/technicians/:id.
func (h *TechniciansHandler) GetTechnician(c *fiber.Ctx) error {
	tech, err := h.service.GetTechnician(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": technicianResponse(tech)})
}

// ListTechnicians GET /admin/technicians.
func (h *TechniciansHandler) ListTechnicians(c *fiber.Ctx) error {
	filter := repository.TechnicianFilter{}
	if teamID := c.Query("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}
	if rawTier := c.Query("tier"); rawTier != "" {
		tier := domain.NormalizeTier(rawTier)
		filter.Tier = &tier
	}
	if rawActive := c.Query("active"); rawActive != "" {
		active := rawActive == "true"
		filter.Active = &active
	}
	technicians, err := h.service.ListTechnicians(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(technicians))
	for i := range technicians {
		items = append(items, technicianResponse(&technicians[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTeamAdmin POST /admin/team-admins.
func (h *TechniciansHandler) CreateTeamAdmin(c *fiber.Ctx) error {
	var req dto.TeamAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	admin, err := h.service.CreateTeamAdmin(c.Context(), service.TeamAdminInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		TeamID:   req.TeamID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamAdminResponse(admin)})
}

// ListTeamAdmins GET /admin/team-admins.
func (h *TechniciansHandler) ListTeamAdmins(c *fiber.Ctx) error {
	filter := repository.TeamAdminFilter{}
	if teamID := c.Query("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}
	admins, err := h.service.ListTeamAdmins(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TeamAdminResponse, 0, len(admins))
	for i := range admins {
		items = append(items, teamAdminResponse(&admins[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
