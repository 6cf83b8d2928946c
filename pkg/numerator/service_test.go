package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "invoicing/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates invoice_sequences keyed by the first argument.
type mockQuerier struct {
	mu    sync.Mutex
	seq   map[string]int64
	calls int
	err   error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{seq: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	switch {
	case len(args) == 1:
		m.seq[key]++
	case strings.Contains(sql, "current_val = $2"):
		m.seq[key] = args[1].(int64)
	default:
		m.seq[key] += args[1].(int64)
	}
	return &mockRow{val: m.seq[key]}
}

var may2026 = time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

func TestNext_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, nil)
	ctx := context.Background()
	cfg := core.DefaultConfig("PUR")

	num, err := svc.Next(ctx, cfg, may2026)
	require.NoError(t, err)
	assert.Equal(t, "PUR-2026-00001", num)

	num, err = svc.Next(ctx, cfg, may2026)
	require.NoError(t, err)
	assert.Equal(t, "PUR-2026-00002", num)

	num, err = svc.Next(ctx, cfg, may2026.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "PUR-2027-00001", num, "yearly sequences restart")

	assert.Equal(t, 3, q.calls)
}

func TestNext_CachedReservesRanges(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, &Options{Strategy: StrategyCached, RangeSize: 10})
	ctx := context.Background()
	cfg := core.DefaultConfig("SAL")

	for i := 1; i <= 10; i++ {
		num, err := svc.Next(ctx, cfg, may2026)
		require.NoError(t, err)
		assert.Equal(t, int64(i), core.ParseNumber(num))
	}
	assert.Equal(t, 1, q.calls)

	num, err := svc.Next(ctx, cfg, may2026)
	require.NoError(t, err)
	assert.Equal(t, "SAL-2026-00011", num)
	assert.Equal(t, 2, q.calls)
}

func TestNext_CachedConcurrentUnique(t *testing.T) {
	svc := New(newMockQuerier(), &Options{Strategy: StrategyCached, RangeSize: 7})
	cfg := core.DefaultConfig("SAL")

	const workers, perWorker = 8, 25
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				num, err := svc.Next(context.Background(), cfg, may2026)
				assert.NoError(t, err)
				mu.Lock()
				seen[num] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestSetNext_DropsCachedRange(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, &Options{Strategy: StrategyCached, RangeSize: 5})
	ctx := context.Background()
	cfg := core.DefaultConfig("PUR")

	_, err := svc.Next(ctx, cfg, may2026)
	require.NoError(t, err)

	require.NoError(t, svc.SetNext(ctx, cfg, may2026, 100))

	num, err := svc.Next(ctx, cfg, may2026)
	require.NoError(t, err)
	assert.Equal(t, "PUR-2026-00101", num)
}

func TestNext_QueryError(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")
	svc := New(q, nil)

	_, err := svc.Next(context.Background(), core.DefaultConfig("PUR"), may2026)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUR_2026")
	assert.ErrorIs(t, err, q.err)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	pur := core.DefaultConfig("PUR")
	sal := core.DefaultConfig("SAL")

	n, err := m.Next(ctx, pur, may2026)
	require.NoError(t, err)
	assert.Equal(t, "PUR-2026-00001", n)

	n, err = m.Next(ctx, sal, may2026)
	require.NoError(t, err)
	assert.Equal(t, "SAL-2026-00001", n)

	require.NoError(t, m.SetNext(ctx, pur, may2026, 41))
	n, err = m.Next(ctx, pur, may2026)
	require.NoError(t, err)
	assert.Equal(t, "PUR-2026-00042", n)
}
