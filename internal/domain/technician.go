package domain

import (
	"strings"
	"time"
)

// TechnicianTier labels an escalation level. Stored values vary in casing
// across imported data sets, so comparisons always go through NormalizeTier.
type TechnicianTier string

const (
	TierOne TechnicianTier = "TIER1"
	TierTwo TechnicianTier = "TIER2"
)

// NormalizeTier folds a free-form tier label to its canonical value.
func NormalizeTier(raw string) TechnicianTier {
	return TechnicianTier(strings.ToUpper(strings.TrimSpace(raw)))
}

// MaxSkillTags caps the number of skill tags a technician may declare.
const MaxSkillTags = 4

// Technician models a support agent belonging to one team and tier.
type Technician struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	TeamID       string
	TeamName     string
	Tier         TechnicianTier
	Skills       []string
	Active       bool
	SortOrder    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TeamAdmin is the terminal escalation target for a team.
type TeamAdmin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	TeamID       string
	TeamName     string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
