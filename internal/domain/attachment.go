package domain

import "time"

// AttachmentReference stores metadata for files attached to an incident.
// The binary itself lives in external storage under StorageKey.
type AttachmentReference struct {
	ID         string
	IncidentID string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
