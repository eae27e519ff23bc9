package strategy

import "GoldGrid/internal/model"

// ClassifyShortTerm labels the momentum reading for short-term traders.
// BUY_DIP additionally needs the close above the long trend average.
func ClassifyShortTerm(ind model.IndicatorSnapshot, cfg model.GridConfig) model.ShortTermTier {
	if !ind.HasMomentum() {
		return model.ShortNoData
	}
	rsi := ind.Momentum
	switch {
	case rsi <= cfg.DeepOversold:
		return model.ShortFire
	case rsi <= cfg.FireThreshold && aboveLongTrend(ind):
		return model.ShortBuyDip
	case rsi >= cfg.Overbought:
		return model.ShortSell
	default:
		return model.ShortWait
	}
}

// ClassifyLongTerm labels the trend for long-term holders.
func ClassifyLongTerm(ind model.IndicatorSnapshot) (tier model.LongTermTier, nearSupport bool) {
	if !ind.HasLongTrend() || !ind.HasClose() {
		return model.LongNoData, false
	}
	if ind.LastClose > ind.LongTrend {
		return model.LongHold, ind.HasShortTrend() && ind.LastClose < ind.ShortTrend
	}
	return model.LongCaution, false
}

// Tag builds the display-only trend tag.
func Tag(ind model.IndicatorSnapshot, cfg model.GridConfig) model.TrendTag {
	long, near := ClassifyLongTerm(ind)
	return model.TrendTag{
		ShortTerm:      ClassifyShortTerm(ind, cfg),
		LongTerm:       long,
		AboveLongTrend: aboveLongTrend(ind),
		NearSupport:    near,
	}
}

func aboveLongTrend(ind model.IndicatorSnapshot) bool {
	return ind.HasLongTrend() && ind.HasClose() && ind.LastClose > ind.LongTrend
}
