package handlers

import (
	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/domain"
)

func incidentSummary(incident *domain.Incident) dto.IncidentSummary {
	return dto.IncidentSummary{
		ID:          incident.ID,
		Number:      incident.Number,
		Category:    incident.Category,
		Title:       incident.Title,
		Status:      incident.Status,
		Priority:    incident.Priority,
		HandlerID:   incident.HandlerID,
		InformantID: incident.InformantID,
		LocationID:  incident.LocationID,
		CreatedAt:   incident.CreatedAt,
		UpdatedAt:   incident.UpdatedAt,
		ClosedAt:    incident.ClosedAt,
	}
}

func incidentDetail(incident *domain.Incident, history []domain.IncidentHistory, attachments []domain.AttachmentReference) dto.IncidentDetailResponse {
	detail := dto.IncidentDetailResponse{
		IncidentSummary: incidentSummary(incident),
		Description:     incident.Description,
		History:         make([]dto.HistoryEntryResponse, 0, len(history)),
		Attachments:     make([]dto.AttachmentResponse, 0, len(attachments)),
	}
	for i := range history {
		detail.History = append(detail.History, historyEntry(&history[i]))
	}
	for i := range attachments {
		detail.Attachments = append(detail.Attachments, attachmentResponse(&attachments[i]))
	}
	return detail
}

func historyEntry(entry *domain.IncidentHistory) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:            entry.ID,
		Status:        entry.Status,
		AssigneeName:  entry.AssigneeName,
		ActorType:     entry.ActorType,
		ActorID:       entry.ActorID,
		Comment:       entry.Comment,
		Category:      entry.Category,
		Location:      entry.Location,
		AttachmentKey: entry.AttachmentKey,
		CreatedAt:     entry.CreatedAt,
	}
}

func attachmentResponse(att *domain.AttachmentReference) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:         att.ID,
		StorageKey: att.StorageKey,
		FileName:   att.FileName,
		MimeType:   att.MimeType,
		SizeBytes:  att.SizeBytes,
	}
}

func technicianResponse(tech *domain.Technician) dto.TechnicianResponse {
	return dto.TechnicianResponse{
		ID:        tech.ID,
		Name:      tech.Name,
		Email:     tech.Email,
		TeamID:    tech.TeamID,
		TeamName:  tech.TeamName,
		Tier:      tech.Tier,
		Skills:    tech.Skills,
		Active:    tech.Active,
		SortOrder: tech.SortOrder,
		CreatedAt: tech.CreatedAt,
	}
}

func teamAdminResponse(admin *domain.TeamAdmin) dto.TeamAdminResponse {
	return dto.TeamAdminResponse{
		ID:       admin.ID,
		Name:     admin.Name,
		Email:    admin.Email,
		TeamID:   admin.TeamID,
		TeamName: admin.TeamName,
		Active:   admin.Active,
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Status: string(user.Status),
	}
}

func teamResponse(team *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		IsActive:    team.IsActive,
	}
}

func locationResponse(location *domain.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:       location.ID,
		Name:     location.Name,
		Building: location.Building,
		Floor:    location.Floor,
		IsActive: location.IsActive,
	}
}
