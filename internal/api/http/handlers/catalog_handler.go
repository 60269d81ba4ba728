package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// CatalogHandler manages reference data: teams, categories and locations.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// CreateTeam POST /admin/teams.
func (h *CatalogHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.CreateTeam(c.Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

// ListTeams GET /catalog/teams.
func (h *CatalogHandler) ListTeams(c *fiber.Ctx) error {
	teams, err := h.service.ListTeams(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateMainCategory POST /admin/categories/main.
func (h *CatalogHandler) CreateMainCategory(c *fiber.Ctx) error {
	var req dto.MainCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	main, err := h.service.CreateMainCategory(c.Context(), req.Name, req.TeamID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": mainCategoryResponse(main)})
}

// CreateSubCategory POST /admin/categories/sub.
func (h *CatalogHandler) CreateSubCategory(c *fiber.Ctx) error {
	var req dto.SubCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sub, err := h.service.CreateSubCategory(c.Context(), req.MainCategoryID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": subCategoryResponse(sub)})
}

// CreateCategoryItem POST /admin/categories/items.
func (h *CatalogHandler) CreateCategoryItem(c *fiber.Ctx) error {
	var req dto.CategoryItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.CreateCategoryItem(c.Context(), req.SubCategoryID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": categoryItemResponse(item)})
}

// ListMainCategories GET /catalog/categories.
func (h *CatalogHandler) ListMainCategories(c *fiber.Ctx) error {
	list, err := h.service.ListMainCategories(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.MainCategoryResponse, 0, len(list))
	for i := range list {
		items = append(items, mainCategoryResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListSubCategories GET /catalog/categories/:mainID/sub.
func (h *CatalogHandler) ListSubCategories(c *fiber.Ctx) error {
	list, err := h.service.ListSubCategories(c.Context(), c.Params("mainID"))
	if err != nil {
		return err
	}
	items := make([]dto.SubCategoryResponse, 0, len(list))
	for i := range list {
		items = append(items, subCategoryResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListCategoryItems GET /catalog/sub-categories/:subID/items.
func (h *CatalogHandler) ListCategoryItems(c *fiber.Ctx) error {
	list, err := h.service.ListCategoryItems(c.Context(), c.Params("subID"))
	if err != nil {
		return err
	}
	items := make([]dto.CategoryItemResponse, 0, len(list))
	for i := range list {
		items = append(items, categoryItemResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateLocation POST /admin/locations.
func (h *CatalogHandler) CreateLocation(c *fiber.Ctx) error {
	var req dto.LocationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	location, err := h.service.CreateLocation(c.Context(), req.Name, req.Building, req.Floor)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": locationResponse(location)})
}

// ListLocations GET /catalog/locations.
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	list, err := h.service.ListLocations(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for i := range list {
		items = append(items, locationResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func mainCategoryResponse(main *domain.MainCategory) dto.MainCategoryResponse {
	return dto.MainCategoryResponse{ID: main.ID, Name: main.Name, TeamID: main.TeamID}
}

func subCategoryResponse(sub *domain.SubCategory) dto.SubCategoryResponse {
	return dto.SubCategoryResponse{ID: sub.ID, MainCategoryID: sub.MainCategoryID, Name: sub.Name}
}

func categoryItemResponse(item *domain.CategoryItem) dto.CategoryItemResponse {
	return dto.CategoryItemResponse{ID: item.ID, SubCategoryID: item.SubCategoryID, Name: item.Name}
}
