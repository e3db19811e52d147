package port

import (
	"context"

	"github.com/google/uuid"

	"docpilot/internal/domain"
)

// TemplateStore is the catalog collaborator: a remote store of extraction
// templates. The engine only reads templates and fires usage increments.
type TemplateStore interface {
	List(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error)
	// IncrementUsage is best-effort; callers must never block on it.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}
