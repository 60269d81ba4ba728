package domain

import "time"

// SubjectType differentiates token subjects.
type SubjectType string

const (
	SubjectTypeUser       SubjectType = "USER"
	SubjectTypeTechnician SubjectType = "TECHNICIAN"
	SubjectTypeTeamAdmin  SubjectType = "TEAM_ADMIN"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
