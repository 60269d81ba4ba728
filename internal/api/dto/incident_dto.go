package dto

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// CreateIncidentRequest payload.
type CreateIncidentRequest struct {
	Category    string                  `json:"category"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Priority    domain.IncidentPriority `json:"priority"`
	LocationID  *string                 `json:"location_id"`
	Attachments []AttachmentInput       `json:"attachments"`
}

// AttachmentInput describes an uploaded file reference.
type AttachmentInput struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// UpdateIncidentRequest payload. Routing directives are optional; when more
// than one is set they apply in a fixed precedence order.
type UpdateIncidentRequest struct {
	Title           *string                  `json:"title"`
	Description     *string                  `json:"description"`
	Priority        *domain.IncidentPriority `json:"priority"`
	Status          *domain.IncidentStatus   `json:"status"`
	Category        *string                  `json:"category"`
	HandlerID       *string                  `json:"handler_id"`
	AssignTier2     bool                     `json:"assign_tier2"`
	AssignTeamAdmin bool                     `json:"assign_team_admin"`
	LocationID      *string                  `json:"location_id"`
	Comment         string                   `json:"comment"`
}

// IncidentSummary response.
type IncidentSummary struct {
	ID          string                  `json:"id"`
	Number      string                  `json:"number"`
	Category    string                  `json:"category"`
	Title       string                  `json:"title"`
	Status      domain.IncidentStatus   `json:"status"`
	Priority    domain.IncidentPriority `json:"priority"`
	HandlerID   *string                 `json:"handler_id"`
	InformantID string                  `json:"informant_id"`
	LocationID  *string                 `json:"location_id"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	ClosedAt    *time.Time              `json:"closed_at"`
}

// IncidentDetailResponse provides full incident info.
type IncidentDetailResponse struct {
	IncidentSummary
	Description string                 `json:"description"`
	History     []HistoryEntryResponse `json:"history"`
	Attachments []AttachmentResponse   `json:"attachments"`
}

// HistoryEntryResponse represents one audit trail row.
type HistoryEntryResponse struct {
	ID            string                `json:"id"`
	Status        domain.IncidentStatus `json:"status"`
	AssigneeName  string                `json:"assignee_name,omitempty"`
	ActorType     domain.ActorType      `json:"actor_type"`
	ActorID       *string               `json:"actor_id"`
	Comment       string                `json:"comment,omitempty"`
	Category      string                `json:"category"`
	Location      string                `json:"location,omitempty"`
	AttachmentKey *string               `json:"attachment_key,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         string `json:"id"`
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}
