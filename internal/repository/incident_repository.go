package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// IncidentFilter captures incident search parameters.
type IncidentFilter struct {
	InformantID *string
	HandlerID   *string
	Category    *string
	Statuses    []domain.IncidentStatus
	Priorities  []domain.IncidentPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// IncidentRepository encapsulates incident persistence.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Update(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	GetByNumber(ctx context.Context, number string) (*domain.Incident, error)
	ListWithFilter(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
	// ListPending returns incidents in the given pending status ordered
	// oldest-first by last update, the order the sweep consumes them in.
	ListPending(ctx context.Context, status domain.IncidentStatus) ([]domain.Incident, error)
	// CountActiveByHandler counts incidents assigned to the technician with a
	// status that occupies workload capacity.
	CountActiveByHandler(ctx context.Context, handlerID string) (int, error)
}

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository instantiates repository.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

const incidentColumns = `id, number, category, title, description, status, priority,
               handler_id, informant_id, location_id, created_at, updated_at, closed_at`

func (r *incidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	const query = `
        INSERT INTO incidents (number, category, title, description, status, priority, handler_id, informant_id, location_id, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		incident.Number,
		incident.Category,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.Priority,
		incident.HandlerID,
		incident.InformantID,
		incident.LocationID,
		incident.ClosedAt,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
}

func (r *incidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	const query = `
        UPDATE incidents SET category=$1, title=$2, description=$3, status=$4, priority=$5,
            handler_id=$6, location_id=$7, closed_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		incident.Category,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.Priority,
		incident.HandlerID,
		incident.LocationID,
		incident.ClosedAt,
		incident.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *incidentRepository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *incidentRepository) GetByNumber(ctx context.Context, number string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *incidentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Incident, error) {
	var incident domain.Incident
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&incident.ID,
		&incident.Number,
		&incident.Category,
		&incident.Title,
		&incident.Description,
		&incident.Status,
		&incident.Priority,
		&incident.HandlerID,
		&incident.InformantID,
		&incident.LocationID,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&incident.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *incidentRepository) ListWithFilter(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	base := `SELECT ` + incidentColumns + ` FROM incidents`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.InformantID != nil {
		args = append(args, *filter.InformantID)
		clauses = append(clauses, fmt.Sprintf("informant_id=$%d", len(args)))
	}
	if filter.HandlerID != nil {
		args = append(args, *filter.HandlerID)
		clauses = append(clauses, fmt.Sprintf("handler_id=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

func (r *incidentRepository) ListPending(ctx context.Context, status domain.IncidentStatus) ([]domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE status=$1 ORDER BY updated_at ASC`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

func (r *incidentRepository) CountActiveByHandler(ctx context.Context, handlerID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM incidents
        WHERE handler_id=$1 AND status = ANY($2)`
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	var count int
	if err := r.pool.QueryRow(ctx, query, handlerID, statuses).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanIncidents(rows pgx.Rows) ([]domain.Incident, error) {
	var result []domain.Incident
	for rows.Next() {
		var incident domain.Incident
		if err := rows.Scan(
			&incident.ID,
			&incident.Number,
			&incident.Category,
			&incident.Title,
			&incident.Description,
			&incident.Status,
			&incident.Priority,
			&incident.HandlerID,
			&incident.InformantID,
			&incident.LocationID,
			&incident.CreatedAt,
			&incident.UpdatedAt,
			&incident.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, incident)
	}
	return result, rows.Err()
}
