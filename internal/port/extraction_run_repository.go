package port

import (
	"context"

	"github.com/google/uuid"

	"folioscan/internal/domain"
)

// ExtractionRunRepository defines persistence for the extraction run log.
type ExtractionRunRepository interface {
	Create(ctx context.Context, run *domain.ExtractionRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error)
	ListRecent(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error)
}
