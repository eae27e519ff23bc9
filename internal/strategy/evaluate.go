package strategy

import (
	"math"
	"time"

	"GoldGrid/internal/calculator"
	"GoldGrid/internal/model"
)

// Conversion turns the instrument quote into the local traded price.
type Conversion struct {
	Factor  float64
	Premium float64
}

// Settings is everything one evaluation cycle reads besides state and market.
type Settings struct {
	Indicators calculator.Params
	Grid       model.GridConfig
	Conversion Conversion
}

// LocalPrice converts the market's last close into the ledger's price,
// or NaN when either the series or the reference rate is unavailable.
func LocalPrice(m *model.Market, ind model.IndicatorSnapshot, s Settings) float64 {
	if m == nil || !m.FXAvailable || !ind.HasClose() {
		return math.NaN()
	}
	p, err := calculator.LocalPrice(ind.LastClose, m.FXRate, s.Conversion.Factor, s.Conversion.Premium, s.Grid.PriceIncrement)
	if err != nil {
		return math.NaN()
	}
	return p
}

// Evaluate is the read-only half of the engine: it computes indicators
// from the market and advises against the portfolio without changing it.
func Evaluate(p model.Portfolio, m *model.Market, s Settings, now time.Time) model.Advice {
	var series *model.PriceSeries
	if m != nil {
		series = m.Series
	}
	ind := calculator.Compute(series, s.Indicators)
	price := LocalPrice(m, ind, s)

	return model.Advice{
		Signal:     Advise(ind.Momentum, price, p, s.Grid),
		Trend:      Tag(ind, s.Grid),
		Indicators: ind,
		Price:      price,
		Estimated:  m != nil && m.FXFallback && !math.IsNaN(price),
		Evaluated:  now,
	}
}
