package domain

import "time"

// Team is a support group that owns one main category and its technicians.
type Team struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
