package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"folioscan/internal/port"
)

// MockHoldingsExtractor is a mock implementation of port.HoldingsExtractor.
type MockHoldingsExtractor struct {
	mock.Mock
}

func (m *MockHoldingsExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractOutput), args.Error(1)
}
