package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"folioscan/internal/domain"
)

// MockExtractionRunRepo is a mock implementation of port.ExtractionRunRepository.
type MockExtractionRunRepo struct {
	mock.Mock
}

func (m *MockExtractionRunRepo) Create(ctx context.Context, run *domain.ExtractionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockExtractionRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionRun), args.Error(1)
}

func (m *MockExtractionRunRepo) ListRecent(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExtractionRun), args.Int(1), args.Error(2)
}
