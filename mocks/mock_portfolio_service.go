package mocks

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"folioscan/internal/domain"
	"folioscan/internal/service"
)

// MockPortfolioService is a mock implementation of service.PortfolioService.
type MockPortfolioService struct {
	mock.Mock
}

func (m *MockPortfolioService) Extract(ctx context.Context, req service.ExtractRequest) (*service.ExtractResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractResponse), args.Error(1)
}

func (m *MockPortfolioService) Validate(ctx context.Context, portfolio map[string]json.RawMessage) service.ValidationView {
	args := m.Called(ctx, portfolio)
	return args.Get(0).(service.ValidationView)
}

func (m *MockPortfolioService) GetRun(ctx context.Context, id uuid.UUID) (*service.RunView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RunView), args.Error(1)
}

func (m *MockPortfolioService) ListRuns(ctx context.Context, offset, limit int) ([]service.RunView, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]service.RunView), args.Int(1), args.Error(2)
}

func (m *MockPortfolioService) Export(ctx context.Context, id uuid.UUID, format domain.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, id, format, w)
	if fn, ok := args.Get(0).(func(io.Writer) error); ok {
		return fn(w)
	}
	return args.Error(0)
}
