// FILE: pkg/rates/rates.go
package rates

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RateProvider resolves the conversion factor between two currencies at a
// point in time. Implementations may call an external FX service, read a
// rates table, or serve fixtures in tests.
type RateProvider interface {
	// Rate returns how many units of `to` one unit of `from` buys on `date`.
	Rate(ctx context.Context, from, to string, date time.Time) (float64, error)
}

// StaticProvider serves rates from a fixed table. Keys are "FROM/TO".
type StaticProvider struct {
	mu    sync.RWMutex
	table map[string]float64
}

func NewStaticProvider(table map[string]float64) *StaticProvider {
	cp := make(map[string]float64, len(table))
	for k, v := range table {
		cp[strings.ToUpper(k)] = v
	}
	return &StaticProvider{table: cp}
}

func (p *StaticProvider) Set(from, to string, rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table[pairKey(from, to)] = rate
}

func (p *StaticProvider) Rate(_ context.Context, from, to string, _ time.Time) (float64, error) {
	if strings.EqualFold(from, to) {
		return 1, nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if rate, ok := p.table[pairKey(from, to)]; ok {
		return rate, nil
	}
	if inverse, ok := p.table[pairKey(to, from)]; ok && inverse != 0 {
		return 1 / inverse, nil
	}

	return 0, fmt.Errorf("rates: no rate for %s/%s", strings.ToUpper(from), strings.ToUpper(to))
}

// CachedProvider memoizes another provider's answers per currency pair and
// day, so repeated conversions within a billing run hit the upstream once.
type CachedProvider struct {
	upstream RateProvider
	cache    *gocache.Cache
}

func NewCachedProvider(upstream RateProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		upstream: upstream,
		cache:    gocache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) Rate(ctx context.Context, from, to string, date time.Time) (float64, error) {
	key := fmt.Sprintf("%s:%s", pairKey(from, to), date.Format("2006-01-02"))

	if cached, found := p.cache.Get(key); found {
		return cached.(float64), nil
	}

	rate, err := p.upstream.Rate(ctx, from, to, date)
	if err != nil {
		return 0, err
	}

	p.cache.Set(key, rate, gocache.DefaultExpiration)
	return rate, nil
}

// Convert applies the provider's rate to an amount in minor units, rounding
// half away from zero.
func Convert(ctx context.Context, p RateProvider, amountCents int64, from, to string, date time.Time) (int64, error) {
	rate, err := p.Rate(ctx, from, to, date)
	if err != nil {
		return 0, err
	}

	converted := float64(amountCents) * rate
	if converted >= 0 {
		return int64(converted + 0.5), nil
	}
	return int64(converted - 0.5), nil
}

func pairKey(from, to string) string {
	return strings.ToUpper(from) + "/" + strings.ToUpper(to)
}
