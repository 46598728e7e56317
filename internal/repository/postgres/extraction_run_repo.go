package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"folioscan/internal/domain"
	"folioscan/internal/port"
)

type extractionRunRepo struct {
	db *sqlx.DB
}

// NewExtractionRunRepo creates a new PostgreSQL-backed ExtractionRunRepository.
func NewExtractionRunRepo(db *sqlx.DB) port.ExtractionRunRepository {
	return &extractionRunRepo{db: db}
}

func (r *extractionRunRepo) Create(ctx context.Context, run *domain.ExtractionRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO extraction_runs (id, broker, image_count, success_count, failure_count, draft, results, created_at)
		 VALUES (:id, :broker, :image_count, :success_count, :failure_count, :draft, :results, :created_at)`,
		run)
	if err != nil {
		return fmt.Errorf("extractionRunRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	var run domain.ExtractionRun
	err := r.db.GetContext(ctx, &run, "SELECT * FROM extraction_runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("extractionRunRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *extractionRunRepo) ListRecent(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM extraction_runs"); err != nil {
		return nil, 0, fmt.Errorf("extractionRunRepo.ListRecent count: %w", err)
	}

	var runs []domain.ExtractionRun
	err := r.db.SelectContext(ctx, &runs,
		"SELECT * FROM extraction_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRunRepo.ListRecent: %w", err)
	}
	return runs, total, nil
}
