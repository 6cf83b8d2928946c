package numerator

import (
	"context"
	"sync"
	"time"

	core "invoicing/internal/core/numerator"
)

// Memory keeps sequences in a map. Numbers handed out are never reused,
// even when the write that asked for one fails.
type Memory struct {
	mu   sync.Mutex
	last map[string]int64
}

var _ core.Generator = (*Memory)(nil)

// NewMemory creates an empty in-memory generator.
func NewMemory() *Memory {
	return &Memory{last: make(map[string]int64)}
}

// Next generates the next number of cfg.Key(period).
func (m *Memory) Next(_ context.Context, cfg core.Config, period time.Time) (string, error) {
	key := cfg.Key(period)

	m.mu.Lock()
	m.last[key]++
	n := m.last[key]
	m.mu.Unlock()

	return cfg.Format(period, n), nil
}

// SetNext makes value the last number of cfg.Key(period).
func (m *Memory) SetNext(_ context.Context, cfg core.Config, period time.Time, value int64) error {
	m.mu.Lock()
	m.last[cfg.Key(period)] = value
	m.mu.Unlock()
	return nil
}
