package domain

import "time"

// Location is reference data describing where an incident was reported.
type Location struct {
	ID        string
	Name      string
	Building  string
	Floor     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
