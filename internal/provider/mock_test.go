package provider

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockLiveSource struct {
	mock.Mock
}

func (m *MockLiveSource) ListSymbols(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var symbols []string
	if v := args.Get(0); v != nil {
		symbols = v.([]string)
	}
	return symbols, args.Error(1)
}

func (m *MockLiveSource) GetRate(ctx context.Context, from, to string) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type MockHistoricalSource struct {
	mock.Mock
}

func (m *MockHistoricalSource) MidRate(ctx context.Context, currency string, date time.Time) (float64, error) {
	args := m.Called(ctx, currency, date)
	return args.Get(0).(float64), args.Error(1)
}
