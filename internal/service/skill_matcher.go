package service

import (
	"strings"

	"github.com/spec-kit/incident-service/internal/domain"
)

// MatchesSkills reports whether a technician's declared skill tags cover the
// resolved category path. A tag matches when it equals the category item, the
// sub-category, or the team name, case-insensitively after trimming. A
// technician with no non-empty tags is never skilled.
func MatchesSkills(tech *domain.Technician, path *domain.CategoryPath) bool {
	if tech == nil || path == nil {
		return false
	}
	for _, raw := range tech.Skills {
		skill := strings.TrimSpace(raw)
		if skill == "" {
			continue
		}
		if strings.EqualFold(skill, path.ItemName) ||
			strings.EqualFold(skill, path.SubCategory) ||
			strings.EqualFold(skill, path.TeamName) {
			return true
		}
	}
	return false
}

// filterSkilled keeps only candidates whose skills cover the path, preserving
// input order.
func filterSkilled(candidates []domain.Technician, path *domain.CategoryPath) []domain.Technician {
	skilled := make([]domain.Technician, 0, len(candidates))
	for i := range candidates {
		if MatchesSkills(&candidates[i], path) {
			skilled = append(skilled, candidates[i])
		}
	}
	return skilled
}
