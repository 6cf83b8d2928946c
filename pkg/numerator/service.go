// Package numerator implements document auto-numbering over a key-based
// sequence table and in memory.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	core "invoicing/internal/core/numerator"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses INSERT ... ON CONFLICT ... RETURNING for every number.
	// Numbers are sequential without gaps unless a caller discards one.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges of numbers and hands them out from memory.
	// Unused numbers of a range are lost on restart.
	StrategyCached
)

// DefaultRangeSize is the range reserved at once by StrategyCached.
const DefaultRangeSize int64 = 50

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values reserved at once in StrategyCached.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Querier is the part of a pool or transaction the service needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type cachedRange struct {
	current int64
	max     int64
}

// Service draws numbers from the invoice_sequences table.
type Service struct {
	querier func(ctx context.Context) Querier
	opts    Options

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

var _ core.Generator = (*Service)(nil)

// New creates a service over a fixed querier.
func New(q Querier, opts *Options) *Service {
	return NewFromContext(func(context.Context) Querier { return q }, opts)
}

// NewFromContext creates a service that resolves its querier per call,
// so a transaction carried by ctx is joined.
func NewFromContext(querier func(ctx context.Context) Querier, opts *Options) *Service {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.RangeSize <= 0 {
		o.RangeSize = DefaultRangeSize
	}
	return &Service{
		querier: querier,
		opts:    o,
		ranges:  make(map[string]*cachedRange),
	}
}

// Next generates the next number, e.g. PUR-2026-00001.
func (s *Service) Next(ctx context.Context, cfg core.Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := cfg.Key(period)
	var (
		num int64
		err error
	)
	switch s.opts.Strategy {
	case StrategyCached:
		num, err = s.nextCached(ctx, key)
	default:
		num, err = s.nextStrict(ctx, key)
	}
	if err != nil {
		return "", err
	}
	return cfg.Format(period, num), nil
}

func (s *Service) nextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO invoice_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = invoice_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next number %s: %w", key, err)
	}
	return num, nil
}

func (s *Service) nextCached(ctx context.Context, key string) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		size := s.opts.RangeSize
		var newMax int64
		// current_val is the last value reserved; the new range is (old, newMax].
		err := s.querier(ctx).QueryRow(ctx, `
			INSERT INTO invoice_sequences (key, current_val)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET current_val = invoice_sequences.current_val + $2
			RETURNING current_val
		`, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range %s: %w", key, err)
		}
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNext overwrites the sequence and drops any cached range for it.
func (s *Service) SetNext(ctx context.Context, cfg core.Config, period time.Time, value int64) error {
	key := cfg.Key(period)

	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO invoice_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)

	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()

	if err != nil {
		return fmt.Errorf("set number %s: %w", key, err)
	}
	return nil
}
