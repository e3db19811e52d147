package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docpilot/internal/domain"
	"docpilot/internal/port"
)

type templateRepo struct {
	db *sqlx.DB
}

// NewTemplateRepo creates a PostgreSQL-backed TemplateStore.
func NewTemplateRepo(db *sqlx.DB) port.TemplateStore {
	return &templateRepo{db: db}
}

func (r *templateRepo) List(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, error) {
	query := `SELECT * FROM templates WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filter.Category.Known() {
		query += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, filter.Category)
		idx++
	}
	if filter.Namespace != "" {
		query += fmt.Sprintf(" AND namespace = $%d", idx)
		args = append(args, filter.Namespace)
		idx++
	}
	if filter.Active {
		query += fmt.Sprintf(" AND is_active = $%d", idx)
		args = append(args, true)
	}
	query += " ORDER BY name"

	var templates []domain.Template
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("templateRepo.List: %w", err)
	}
	return templates, nil
}

func (r *templateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	var tpl domain.Template
	err := r.db.GetContext(ctx, &tpl, "SELECT * FROM templates WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("templateRepo.GetByID: %w", err)
	}
	return &tpl, nil
}

func (r *templateRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE templates SET usage_count = usage_count + 1, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("templateRepo.IncrementUsage: %w", err)
	}
	return nil
}
