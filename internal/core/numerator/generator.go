package numerator

import (
	"context"
	"time"
)

// Generator hands out sequential document numbers.
type Generator interface {
	// Next returns the next number of the sequence cfg.Key(period),
	// formatted with cfg.Format.
	Next(ctx context.Context, cfg Config, period time.Time) (string, error)

	// SetNext makes value the last number handed out, so the following
	// Next returns value+1.
	SetNext(ctx context.Context, cfg Config, period time.Time, value int64) error
}
