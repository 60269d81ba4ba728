package dto

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// TechnicianRequest payload for create/update.
type TechnicianRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password,omitempty"`
	TeamID    string   `json:"team_id"`
	Tier      string   `json:"tier"`
	Skills    []string `json:"skills"`
	SortOrder int      `json:"sort_order"`
}

// TechnicianResponse omits credentials.
type TechnicianResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	TeamID    string                `json:"team_id"`
	TeamName  string                `json:"team_name"`
	Tier      domain.TechnicianTier `json:"tier"`
	Skills    []string              `json:"skills"`
	Active    bool                  `json:"active"`
	SortOrder int                   `json:"sort_order"`
	CreatedAt time.Time             `json:"created_at"`
}

// TeamAdminRequest payload.
type TeamAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TeamID   string `json:"team_id"`
}

// TeamAdminResponse omits credentials.
type TeamAdminResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Active   bool   `json:"active"`
}
