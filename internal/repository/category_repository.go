package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// CategoryRepository manages the three-level category hierarchy. Lookups by
// name are exact and case-sensitive; the resolver layer decides which missing
// link maps to which error.
type CategoryRepository interface {
	CreateMain(ctx context.Context, main *domain.MainCategory) error
	CreateSub(ctx context.Context, sub *domain.SubCategory) error
	CreateItem(ctx context.Context, item *domain.CategoryItem) error
	GetItemByName(ctx context.Context, name string) (*domain.CategoryItem, error)
	GetSubByID(ctx context.Context, id string) (*domain.SubCategory, error)
	GetMainByID(ctx context.Context, id string) (*domain.MainCategory, error)
	ListMain(ctx context.Context) ([]domain.MainCategory, error)
	ListSubByMain(ctx context.Context, mainID string) ([]domain.SubCategory, error)
	ListItemsBySub(ctx context.Context, subID string) ([]domain.CategoryItem, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) CreateMain(ctx context.Context, main *domain.MainCategory) error {
	const query = `
        INSERT INTO main_categories (name, team_id)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, main.Name, main.TeamID).
		Scan(&main.ID, &main.CreatedAt, &main.UpdatedAt)
}

func (r *categoryRepository) CreateSub(ctx context.Context, sub *domain.SubCategory) error {
	const query = `
        INSERT INTO sub_categories (main_category_id, name)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, sub.MainCategoryID, sub.Name).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *categoryRepository) CreateItem(ctx context.Context, item *domain.CategoryItem) error {
	const query = `
        INSERT INTO category_items (sub_category_id, name)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, item.SubCategoryID, item.Name).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *categoryRepository) GetItemByName(ctx context.Context, name string) (*domain.CategoryItem, error) {
	const query = `
        SELECT id, sub_category_id, name, created_at, updated_at
        FROM category_items WHERE name=$1`
	var item domain.CategoryItem
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&item.ID, &item.SubCategoryID, &item.Name, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *categoryRepository) GetSubByID(ctx context.Context, id string) (*domain.SubCategory, error) {
	const query = `
        SELECT id, main_category_id, name, created_at, updated_at
        FROM sub_categories WHERE id=$1`
	var sub domain.SubCategory
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&sub.ID, &sub.MainCategoryID, &sub.Name, &sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *categoryRepository) GetMainByID(ctx context.Context, id string) (*domain.MainCategory, error) {
	const query = `
        SELECT id, name, team_id, created_at, updated_at
        FROM main_categories WHERE id=$1`
	var main domain.MainCategory
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&main.ID, &main.Name, &main.TeamID, &main.CreatedAt, &main.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &main, nil
}

func (r *categoryRepository) ListMain(ctx context.Context) ([]domain.MainCategory, error) {
	const query = `
        SELECT id, name, team_id, created_at, updated_at
        FROM main_categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MainCategory
	for rows.Next() {
		var main domain.MainCategory
		if err := rows.Scan(&main.ID, &main.Name, &main.TeamID, &main.CreatedAt, &main.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, main)
	}
	return result, rows.Err()
}

func (r *categoryRepository) ListSubByMain(ctx context.Context, mainID string) ([]domain.SubCategory, error) {
	const query = `
        SELECT id, main_category_id, name, created_at, updated_at
        FROM sub_categories WHERE main_category_id=$1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, mainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SubCategory
	for rows.Next() {
		var sub domain.SubCategory
		if err := rows.Scan(&sub.ID, &sub.MainCategoryID, &sub.Name, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func (r *categoryRepository) ListItemsBySub(ctx context.Context, subID string) ([]domain.CategoryItem, error) {
	const query = `
        SELECT id, sub_category_id, name, created_at, updated_at
        FROM category_items WHERE sub_category_id=$1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, subID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryItem
	for rows.Next() {
		var item domain.CategoryItem
		if err := rows.Scan(&item.ID, &item.SubCategoryID, &item.Name, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
