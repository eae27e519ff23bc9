package calculator

import (
	"github.com/rs/zerolog/log"

	"GoldGrid/internal/model"
)

// Params selects the indicator periods.
type Params struct {
	MomentumPeriod int
	ShortSpan      int
	LongSpan       int
}

// Compute derives the full indicator snapshot from series. Values that
// cannot be computed stay NaN; a nil series yields an all-undefined snapshot.
func Compute(series *model.PriceSeries, p Params) model.IndicatorSnapshot {
	snap := model.UndefinedSnapshot()
	last, ok := series.Last()
	if !ok {
		return snap
	}
	snap.At = last.Time
	snap.LastClose = last.Close

	closes := series.Closes()
	if v, err := CalculateMomentum(closes, p.MomentumPeriod); err == nil {
		snap.Momentum = v
	} else {
		log.Debug().Err(err).Int("bars", len(closes)).Msg("momentum undefined")
	}
	if v, err := CalculateEMA(closes, p.ShortSpan); err == nil {
		snap.ShortTrend = v
	}
	if v, err := CalculateEMA(closes, p.LongSpan); err == nil {
		snap.LongTrend = v
	}
	return snap
}
