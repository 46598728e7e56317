package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"folioscan/internal/domain"
)

// MockTickerAliasRepo is a mock implementation of port.TickerAliasRepository.
type MockTickerAliasRepo struct {
	mock.Mock
}

func (m *MockTickerAliasRepo) LoadAll(ctx context.Context) ([]domain.TickerAlias, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TickerAlias), args.Error(1)
}
