package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"GoldGrid/internal/model"
)

// GuardedFetcher rate-limits calls to an upstream Fetcher and stops calling
// it for a while after repeated failures.
type GuardedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuardedFetcher wraps next with a token bucket of rps/burst and a
// breaker that opens after three consecutive failures.
func NewGuardedFetcher(next Fetcher, rps float64, burst int, cooldown time.Duration) *GuardedFetcher {
	st := gobreaker.Settings{
		Name:     next.Name(),
		Interval: 60 * time.Second,
		Timeout:  cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("feed", name).Str("from", from.String()).Str("to", to.String()).Msg("feed breaker state changed")
		},
	}
	return &GuardedFetcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

func (g *GuardedFetcher) Name() string { return g.next.Name() }

func (g *GuardedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := g.breaker.Execute(func() (any, error) {
		return g.next.FetchDailyBars(ctx, symbol, days)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.OHLCV), nil
}

func (g *GuardedFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	v, err := g.breaker.Execute(func() (any, error) {
		return g.next.FetchCurrentPrice(ctx, symbol)
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}
