package service

import (
	"context"
	"strings"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// CatalogService manages reference data: teams, the three-level category
// hierarchy and locations. The hierarchy is what the resolver routes on, so
// every level is validated against its parent at creation.
type CatalogService struct {
	categories repository.CategoryRepository
	teams      repository.TeamRepository
	locations  repository.LocationRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(categories repository.CategoryRepository, teams repository.TeamRepository, locations repository.LocationRepository) *CatalogService {
	return &CatalogService{categories: categories, teams: teams, locations: locations}
}

// CreateTeam registers a support team.
func (s *CatalogService) CreateTeam(ctx context.Context, name, description string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name required", nil)
	}
	if existing, err := s.teams.GetByName(ctx, name); err == nil && existing != nil {
		return nil, apperrors.NewConflict("team name already exists", map[string]any{"name": name})
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}
	team := &domain.Team{Name: name, Description: strings.TrimSpace(description), IsActive: true}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// ListTeams returns active teams.
func (s *CatalogService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// CreateMainCategory links a top-level category to its owning team.
func (s *CatalogService) CreateMainCategory(ctx context.Context, name, teamID string) (*domain.MainCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("team not found", map[string]any{"team_id": teamID})
		}
		return nil, apperrors.MapError(err)
	}
	main := &domain.MainCategory{Name: name, TeamID: teamID}
	if err := s.categories.CreateMain(ctx, main); err != nil {
		return nil, apperrors.MapError(err)
	}
	return main, nil
}

// CreateSubCategory adds a sub-category under a main category.
func (s *CatalogService) CreateSubCategory(ctx context.Context, mainCategoryID, name string) (*domain.SubCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("sub-category name required", nil)
	}
	if _, err := s.categories.GetMainByID(ctx, mainCategoryID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("main category not found", map[string]any{"main_category_id": mainCategoryID})
		}
		return nil, apperrors.MapError(err)
	}
	sub := &domain.SubCategory{MainCategoryID: mainCategoryID, Name: name}
	if err := s.categories.CreateSub(ctx, sub); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}

// CreateCategoryItem adds a leaf label under a sub-category. Leaf labels are
// what incidents carry in their category field.
func (s *CatalogService) CreateCategoryItem(ctx context.Context, subCategoryID, name string) (*domain.CategoryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category item name required", nil)
	}
	if _, err := s.categories.GetSubByID(ctx, subCategoryID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("sub-category not found", map[string]any{"sub_category_id": subCategoryID})
		}
		return nil, apperrors.MapError(err)
	}
	if existing, err := s.categories.GetItemByName(ctx, name); err == nil && existing != nil {
		return nil, apperrors.NewConflict("category item already exists", map[string]any{"name": name})
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}
	item := &domain.CategoryItem{SubCategoryID: subCategoryID, Name: name}
	if err := s.categories.CreateItem(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

// ListMainCategories returns all top-level categories.
func (s *CatalogService) ListMainCategories(ctx context.Context) ([]domain.MainCategory, error) {
	list, err := s.categories.ListMain(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// ListSubCategories returns sub-categories under a main category.
func (s *CatalogService) ListSubCategories(ctx context.Context, mainCategoryID string) ([]domain.SubCategory, error) {
	list, err := s.categories.ListSubByMain(ctx, mainCategoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// ListCategoryItems returns leaf labels under a sub-category.
func (s *CatalogService) ListCategoryItems(ctx context.Context, subCategoryID string) ([]domain.CategoryItem, error) {
	list, err := s.categories.ListItemsBySub(ctx, subCategoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// CreateLocation registers a reporting location.
func (s *CatalogService) CreateLocation(ctx context.Context, name, building, floor string) (*domain.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("location name required", nil)
	}
	location := &domain.Location{
		Name:     name,
		Building: strings.TrimSpace(building),
		Floor:    strings.TrimSpace(floor),
		IsActive: true,
	}
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, apperrors.MapError(err)
	}
	return location, nil
}

// ListLocations returns active locations.
func (s *CatalogService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	list, err := s.locations.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}
