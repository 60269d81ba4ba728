package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// TechnicianFilter defines query params for technician listing. When both
// TeamID and TeamName are set the query matches either column, which absorbs
// imported rows that carry a team name where an identifier belongs. Tier is
// compared case-insensitively after normalization.
type TechnicianFilter struct {
	TeamID   *string
	TeamName *string
	Tier     *domain.TechnicianTier
	Active   *bool
	Limit    int
	Offset   int
}

// TechnicianRepository handles persistence for technicians.
type TechnicianRepository interface {
	Create(ctx context.Context, tech *domain.Technician) error
	Update(ctx context.Context, tech *domain.Technician) error
	SetActive(ctx context.Context, id string, active bool) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	GetByEmail(ctx context.Context, email string) (*domain.Technician, error)
	List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error)
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

const technicianColumns = `id, name, email, password_hash, team_id, team_name, tier, skills,
               active_flag, sort_order, created_at, updated_at`

func (r *technicianRepository) Create(ctx context.Context, tech *domain.Technician) error {
	const query = `
        INSERT INTO technicians (name, email, password_hash, team_id, team_name, tier, skills, active_flag, sort_order)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		tech.Name,
		tech.Email,
		tech.PasswordHash,
		tech.TeamID,
		tech.TeamName,
		tech.Tier,
		tech.Skills,
		tech.Active,
		tech.SortOrder,
	).Scan(&tech.ID, &tech.CreatedAt, &tech.UpdatedAt)
}

func (r *technicianRepository) Update(ctx context.Context, tech *domain.Technician) error {
	const query = `
        UPDATE technicians
        SET name=$1, email=$2, password_hash=$3, team_id=$4, team_name=$5, tier=$6, skills=$7,
            active_flag=$8, sort_order=$9, updated_at=NOW()
        WHERE id=$10`

	cmd, err := r.pool.Exec(ctx, query,
		tech.Name,
		tech.Email,
		tech.PasswordHash,
		tech.TeamID,
		tech.TeamName,
		tech.Tier,
		tech.Skills,
		tech.Active,
		tech.SortOrder,
		tech.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE technicians SET active_flag=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *technicianRepository) GetByEmail(ctx context.Context, email string) (*domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *technicianRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Technician, error) {
	var tech domain.Technician
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&tech.ID,
		&tech.Name,
		&tech.Email,
		&tech.PasswordHash,
		&tech.TeamID,
		&tech.TeamName,
		&tech.Tier,
		&tech.Skills,
		&tech.Active,
		&tech.SortOrder,
		&tech.CreatedAt,
		&tech.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tech, nil
}

func (r *technicianRepository) List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians`
	args := []any{}
	clauses := []string{}

	switch {
	case filter.TeamID != nil && filter.TeamName != nil:
		args = append(args, *filter.TeamID)
		idArg := len(args)
		args = append(args, *filter.TeamName)
		clauses = append(clauses, fmt.Sprintf("(team_id=$%d OR team_name=$%d)", idArg, len(args)))
	case filter.TeamID != nil:
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("team_id=$%d", len(args)))
	case filter.TeamName != nil:
		args = append(args, *filter.TeamName)
		clauses = append(clauses, fmt.Sprintf("team_name=$%d", len(args)))
	}
	if filter.Tier != nil {
		args = append(args, string(domain.NormalizeTier(string(*filter.Tier))))
		clauses = append(clauses, fmt.Sprintf("UPPER(TRIM(tier))=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY sort_order ASC, created_at ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		var tech domain.Technician
		if err := rows.Scan(
			&tech.ID,
			&tech.Name,
			&tech.Email,
			&tech.PasswordHash,
			&tech.TeamID,
			&tech.TeamName,
			&tech.Tier,
			&tech.Skills,
			&tech.Active,
			&tech.SortOrder,
			&tech.CreatedAt,
			&tech.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tech)
	}
	return result, rows.Err()
}
