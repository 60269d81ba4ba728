package service

import (
	"context"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// CategoryResolver maps an incident category label to its owning team, main
// category and sub-category. Labels are matched exactly, case-sensitive.
type CategoryResolver struct {
	categories repository.CategoryRepository
	teams      repository.TeamRepository
}

// NewCategoryResolver builds the resolver.
func NewCategoryResolver(categories repository.CategoryRepository, teams repository.TeamRepository) *CategoryResolver {
	return &CategoryResolver{categories: categories, teams: teams}
}

// Resolve walks CategoryItem -> SubCategory -> MainCategory for the label.
// Each missing link yields a distinct terminal validation error; these are
// never retried.
func (r *CategoryResolver) Resolve(ctx context.Context, label string) (*domain.CategoryPath, error) {
	item, err := r.categories.GetItemByName(ctx, label)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("category not found", map[string]any{"category": label})
		}
		return nil, apperrors.MapError(err)
	}

	sub, err := r.categories.GetSubByID(ctx, item.SubCategoryID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("sub-category not found", map[string]any{"category": label})
		}
		return nil, apperrors.MapError(err)
	}

	main, err := r.categories.GetMainByID(ctx, sub.MainCategoryID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("team not found for category", map[string]any{"category": label})
		}
		return nil, apperrors.MapError(err)
	}

	path := &domain.CategoryPath{
		ItemName:    item.Name,
		SubCategory: sub.Name,
		TeamID:      main.TeamID,
		TeamName:    main.Name,
	}

	// The main category name doubles as the team name; when a teams row
	// exists it is authoritative for the display name.
	if r.teams != nil {
		if team, err := r.teams.GetByID(ctx, main.TeamID); err == nil {
			path.TeamName = team.Name
		}
	}
	return path, nil
}

// isTerminalValidation reports whether err is a caller error that retrying
// cannot fix, as opposed to an infrastructure failure.
func isTerminalValidation(err error) bool {
	if err == nil {
		return false
	}
	de := apperrors.ToDomainError(err)
	return de.Code == "VALIDATION_FAILED" || de.Code == "NOT_FOUND"
}
