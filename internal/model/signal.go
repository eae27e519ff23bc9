package model

import "time"

// SignalKind tags the variant carried by a Signal.
type SignalKind string

const (
	SignalFire          SignalKind = "FIRE"
	SignalWait          SignalKind = "WAIT"
	SignalSellReady     SignalKind = "SELL_READY"
	SignalPortfolioFull SignalKind = "PORTFOLIO_FULL"
)

// Signal is the advisor's single recommended action.
// Slot is 0 for PORTFOLIO_FULL. TargetPrice is the rounded trap price for
// FIRE/WAIT and the close target for SELL_READY.
type Signal struct {
	Kind           SignalKind
	Slot           int
	Reason         string
	TargetPrice    float64
	ProfitEstimate float64
}

func Fire(slot int, target float64) Signal {
	return Signal{Kind: SignalFire, Slot: slot, TargetPrice: target}
}

func Wait(slot int, target float64, reason string) Signal {
	return Signal{Kind: SignalWait, Slot: slot, TargetPrice: target, Reason: reason}
}

func SellReady(slot int, target, profit float64) Signal {
	return Signal{Kind: SignalSellReady, Slot: slot, TargetPrice: target, ProfitEstimate: profit}
}

func PortfolioFull() Signal {
	return Signal{Kind: SignalPortfolioFull}
}

// SameAction reports whether two signals recommend the same thing, ignoring
// estimates that move with the price.
func (s Signal) SameAction(o Signal) bool {
	return s.Kind == o.Kind && s.Slot == o.Slot
}

// ShortTermTier is the momentum-based label for short-term traders.
type ShortTermTier string

const (
	ShortFire   ShortTermTier = "FIRE"
	ShortBuyDip ShortTermTier = "BUY_DIP"
	ShortSell   ShortTermTier = "SELL"
	ShortWait   ShortTermTier = "WAIT"
	ShortNoData ShortTermTier = "NO_DATA"
)

// LongTermTier is the trend-based label for long-term holders.
type LongTermTier string

const (
	LongHold    LongTermTier = "HOLD"
	LongCaution LongTermTier = "CAUTION"
	LongNoData  LongTermTier = "NO_DATA"
)

// TrendTag is display-only labeling. It never changes slot eligibility.
type TrendTag struct {
	ShortTerm      ShortTermTier
	LongTerm       LongTermTier
	AboveLongTrend bool
	NearSupport    bool // above the long trend but below the short one
}

// Advice is the output of one evaluation cycle.
type Advice struct {
	Signal     Signal
	Trend      TrendTag
	Indicators IndicatorSnapshot
	Price      float64 // local price the ledger trades at; NaN when unavailable
	Estimated  bool    // Price used a configured fallback reference rate
	Evaluated  time.Time
}
