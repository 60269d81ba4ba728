package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// IncidentHistoryRepository stores audit entries. Insert-only.
type IncidentHistoryRepository interface {
	Create(ctx context.Context, entry *domain.IncidentHistory) error
	ListByIncident(ctx context.Context, incidentID string) ([]domain.IncidentHistory, error)
}

type incidentHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentHistoryRepository builds repository.
func NewIncidentHistoryRepository(pool *pgxpool.Pool) IncidentHistoryRepository {
	return &incidentHistoryRepository{pool: pool}
}

func (r *incidentHistoryRepository) Create(ctx context.Context, entry *domain.IncidentHistory) error {
	const query = `
        INSERT INTO incident_history (incident_id, status, assignee_name, actor_type, actor_id, comment, category, location, attachment_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.IncidentID,
		entry.Status,
		entry.AssigneeName,
		entry.ActorType,
		entry.ActorID,
		entry.Comment,
		entry.Category,
		entry.Location,
		entry.AttachmentKey,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *incidentHistoryRepository) ListByIncident(ctx context.Context, incidentID string) ([]domain.IncidentHistory, error) {
	const query = `
        SELECT id, incident_id, status, assignee_name, actor_type, actor_id, comment, category, location, attachment_key, created_at
        FROM incident_history WHERE incident_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IncidentHistory
	for rows.Next() {
		var entry domain.IncidentHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.IncidentID,
			&entry.Status,
			&entry.AssigneeName,
			&entry.ActorType,
			&entry.ActorID,
			&entry.Comment,
			&entry.Category,
			&entry.Location,
			&entry.AttachmentKey,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
