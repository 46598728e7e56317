package port

import (
	"context"

	"folioscan/internal/domain"
)

// TickerAliasRepository defines the contract for company-name alias data access.
type TickerAliasRepository interface {
	LoadAll(ctx context.Context) ([]domain.TickerAlias, error)
}
