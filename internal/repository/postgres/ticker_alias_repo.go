package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"folioscan/internal/domain"
	"folioscan/internal/port"
)

type tickerAliasRepo struct {
	db *sqlx.DB
}

// NewTickerAliasRepo creates a new PostgreSQL-backed TickerAliasRepository.
func NewTickerAliasRepo(db *sqlx.DB) port.TickerAliasRepository {
	return &tickerAliasRepo{db: db}
}

func (r *tickerAliasRepo) LoadAll(ctx context.Context) ([]domain.TickerAlias, error) {
	var aliases []domain.TickerAlias
	err := r.db.SelectContext(ctx, &aliases,
		"SELECT alias, ticker, created_at FROM ticker_aliases ORDER BY alias")
	if err != nil {
		return nil, fmt.Errorf("tickerAliasRepo.LoadAll: %w", err)
	}
	return aliases, nil
}
