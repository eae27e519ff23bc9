package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"GoldGrid/internal/model"
)

// ErrFeedUnavailable wraps every market feed failure.
var ErrFeedUnavailable = errors.New("market feed unavailable")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Prices    map[string]float64
	DailyData map[string][]model.OHLCV
	Err       map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := m.Err[symbol]; err != nil {
		return nil, err
	}
	if bars, ok := m.DailyData[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(m.Prices[symbol], days), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, symbol string) (float64, error) {
	if err := m.Err[symbol]; err != nil {
		return 0, err
	}
	return m.Prices[symbol], nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches the instrument series and the reference FX rate.
type Collector struct {
	Fetcher     Fetcher
	Symbol      string
	FXSymbol    string
	HistoryDays int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, fxSymbol string, historyDays int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, FXSymbol: fxSymbol, HistoryDays: historyDays}
}

// Collect always returns a Market. Parts that could not be fetched are
// marked unavailable and the error wraps ErrFeedUnavailable.
func (c *Collector) Collect(ctx context.Context) (*model.Market, error) {
	m := &model.Market{FetchedAt: time.Now()}
	var seriesErr, fxErr error

	bars, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.HistoryDays)
	switch {
	case err != nil:
		seriesErr = err
	case len(bars) == 0:
		seriesErr = fmt.Errorf("no bars for %s", c.Symbol)
	default:
		m.Series = &model.PriceSeries{Symbol: c.Symbol, Bars: bars, FetchedAt: m.FetchedAt}
	}

	fx, err := c.Fetcher.FetchCurrentPrice(ctx, c.FXSymbol)
	switch {
	case err != nil:
		fxErr = err
	case fx <= 0:
		fxErr = fmt.Errorf("invalid rate %v for %s", fx, c.FXSymbol)
	default:
		m.FXRate = fx
		m.FXAvailable = true
	}

	switch {
	case seriesErr != nil && fxErr != nil:
		log.Warn().Err(seriesErr).AnErr("fx_err", fxErr).Str("feed", c.Fetcher.Name()).Msg("market feed failed")
		return m, fmt.Errorf("%w: series: %v; fx: %v", ErrFeedUnavailable, seriesErr, fxErr)
	case seriesErr != nil:
		log.Warn().Err(seriesErr).Str("symbol", c.Symbol).Msg("series fetch failed")
		return m, fmt.Errorf("%w: series: %w", ErrFeedUnavailable, seriesErr)
	case fxErr != nil:
		log.Warn().Err(fxErr).Str("symbol", c.FXSymbol).Msg("fx fetch failed")
		return m, fmt.Errorf("%w: fx: %w", ErrFeedUnavailable, fxErr)
	}

	log.Debug().Int("bars", len(bars)).Float64("fx", m.FXRate).Msg("market collected")
	return m, nil
}
