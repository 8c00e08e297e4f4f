package rates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProviderRate(t *testing.T) {
	p := NewStaticProvider(map[string]float64{"usd/pen": 3.75})
	ctx := context.Background()
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rate, err := p.Rate(ctx, "USD", "PEN", day)
	require.NoError(t, err)
	assert.Equal(t, 3.75, rate)

	// The inverse pair is derived when only one direction is tabled.
	inv, err := p.Rate(ctx, "PEN", "USD", day)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.75, inv, 1e-12)

	same, err := p.Rate(ctx, "pen", "PEN", day)
	require.NoError(t, err)
	assert.Equal(t, 1.0, same)

	_, err = p.Rate(ctx, "EUR", "PEN", day)
	require.Error(t, err)
}

func TestStaticProviderSet(t *testing.T) {
	p := NewStaticProvider(nil)
	p.Set("eur", "pen", 4.10)

	rate, err := p.Rate(context.Background(), "EUR", "PEN", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 4.10, rate)
}

// countingProvider records how often the upstream is consulted.
type countingProvider struct {
	inner *StaticProvider
	calls int
}

func (c *countingProvider) Rate(ctx context.Context, from, to string, date time.Time) (float64, error) {
	c.calls++
	return c.inner.Rate(ctx, from, to, date)
}

func TestCachedProviderMemoizesPerDay(t *testing.T) {
	upstream := &countingProvider{inner: NewStaticProvider(map[string]float64{"USD/PEN": 3.75})}
	p := NewCachedProvider(upstream, time.Hour)
	ctx := context.Background()

	day1 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	day1Later := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{day1, day1, day1Later} {
		rate, err := p.Rate(ctx, "USD", "PEN", at)
		require.NoError(t, err)
		assert.Equal(t, 3.75, rate)
	}
	assert.Equal(t, 1, upstream.calls)

	_, err := p.Rate(ctx, "USD", "PEN", day2)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
}

func TestConvertRounding(t *testing.T) {
	p := NewStaticProvider(map[string]float64{"USD/PEN": 3.333})
	ctx := context.Background()
	day := time.Now()

	// 100 * 3.333 = 333.3 rounds down.
	got, err := Convert(ctx, p, 100, "USD", "PEN", day)
	require.NoError(t, err)
	assert.Equal(t, int64(333), got)

	// 150 * 3.333 = 499.95 rounds up.
	got, err = Convert(ctx, p, 150, "USD", "PEN", day)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got)

	// Negative amounts round away from zero.
	got, err = Convert(ctx, p, -150, "USD", "PEN", day)
	require.NoError(t, err)
	assert.Equal(t, int64(-500), got)

	_, err = Convert(ctx, p, 100, "GBP", "PEN", day)
	require.Error(t, err)
}
