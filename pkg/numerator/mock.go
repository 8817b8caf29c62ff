package numerator

import (
	"context"
	"sync/atomic"
	"time"
)

// Mock is an in-memory Generator for tests and the memory store.
type Mock struct {
	counter atomic.Int64
}

// NewMock creates an in-memory number generator.
func NewMock() *Mock {
	return &Mock{}
}

// GetNextNumber returns sequential numbers without persistence.
func (m *Mock) GetNextNumber(_ context.Context, cfg Config, period time.Time) (string, error) {
	return formatNumber(cfg, period, m.counter.Add(1)), nil
}

var _ Generator = (*Mock)(nil)
