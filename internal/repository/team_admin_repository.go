package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// TeamAdminFilter defines query params for team admin lookup. When both
// TeamID and TeamName are set the query matches either column.
type TeamAdminFilter struct {
	TeamID   *string
	TeamName *string
	Active   *bool
	Limit    int
}

// TeamAdminRepository handles persistence for team admins.
type TeamAdminRepository interface {
	Create(ctx context.Context, admin *domain.TeamAdmin) error
	Update(ctx context.Context, admin *domain.TeamAdmin) error
	GetByID(ctx context.Context, id string) (*domain.TeamAdmin, error)
	GetByEmail(ctx context.Context, email string) (*domain.TeamAdmin, error)
	List(ctx context.Context, filter TeamAdminFilter) ([]domain.TeamAdmin, error)
}

type teamAdminRepository struct {
	pool *pgxpool.Pool
}

// NewTeamAdminRepository instantiates the repository.
func NewTeamAdminRepository(pool *pgxpool.Pool) TeamAdminRepository {
	return &teamAdminRepository{pool: pool}
}

const teamAdminColumns = `id, name, email, password_hash, team_id, team_name, active_flag, created_at, updated_at`

func (r *teamAdminRepository) Create(ctx context.Context, admin *domain.TeamAdmin) error {
	const query = `
        INSERT INTO team_admins (name, email, password_hash, team_id, team_name, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.TeamID,
		admin.TeamName,
		admin.Active,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *teamAdminRepository) Update(ctx context.Context, admin *domain.TeamAdmin) error {
	const query = `
        UPDATE team_admins
        SET name=$1, email=$2, password_hash=$3, team_id=$4, team_name=$5, active_flag=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.TeamID,
		admin.TeamName,
		admin.Active,
		admin.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamAdminRepository) GetByID(ctx context.Context, id string) (*domain.TeamAdmin, error) {
	query := `SELECT ` + teamAdminColumns + ` FROM team_admins WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *teamAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.TeamAdmin, error) {
	query := `SELECT ` + teamAdminColumns + ` FROM team_admins WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *teamAdminRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.TeamAdmin, error) {
	var admin domain.TeamAdmin
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.TeamID,
		&admin.TeamName,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *teamAdminRepository) List(ctx context.Context, filter TeamAdminFilter) ([]domain.TeamAdmin, error) {
	query := `SELECT ` + teamAdminColumns + ` FROM team_admins`
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
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeamAdmin
	for rows.Next() {
		var admin domain.TeamAdmin
		if err := rows.Scan(
			&admin.ID,
			&admin.Name,
			&admin.Email,
			&admin.PasswordHash,
			&admin.TeamID,
			&admin.TeamName,
			&admin.Active,
			&admin.CreatedAt,
			&admin.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, admin)
	}
	return result, rows.Err()
}
