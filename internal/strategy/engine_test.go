package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"GoldGrid/internal/model"
)

func testGrid() model.GridConfig {
	return model.GridConfig{
		Gaps:           [model.SlotCount - 1]float64{500, 600, 800, 1000},
		MinProfit:      300,
		SpreadBuffer:   50,
		BaseCapital:    10000,
		PriceIncrement: 50,
		FireThreshold:  45,
		DeepOversold:   30,
		Overbought:     70,
	}
}

func withActive(entries ...float64) model.Portfolio {
	p := model.NewPortfolio()
	for i, e := range entries {
		p.Slots[i] = model.PositionSlot{Status: model.SlotActive, EntryPrice: e, Quantity: 10000 / e}
	}
	return p
}

func TestAdvise_FireFirstSlotWhenOversold(t *testing.T) {
	sig := Advise(25, 40000, model.NewPortfolio(), testGrid())

	assert.Equal(t, model.SignalFire, sig.Kind)
	assert.Equal(t, 1, sig.Slot)
}

func TestAdvise_WaitFirstSlotWhenNotOversold(t *testing.T) {
	sig := Advise(55, 40000, model.NewPortfolio(), testGrid())

	assert.Equal(t, model.SignalWait, sig.Kind)
	assert.Equal(t, 1, sig.Slot)
	assert.Equal(t, reasonNotOversold, sig.Reason)
}

func TestAdvise_ThresholdIsInclusive(t *testing.T) {
	sig := Advise(45, 40000, model.NewPortfolio(), testGrid())
	assert.Equal(t, model.SignalFire, sig.Kind)
}

func TestAdvise_UndefinedMomentumNeverFires(t *testing.T) {
	sig := Advise(math.NaN(), 40000, model.NewPortfolio(), testGrid())

	assert.Equal(t, model.SignalWait, sig.Kind)
	assert.Equal(t, 1, sig.Slot)
	assert.Equal(t, reasonNoMomentum, sig.Reason)
}

func TestAdvise_SellReadyAtCloseTarget(t *testing.T) {
	sig := Advise(50, 40400, withActive(40000), testGrid())

	assert.Equal(t, model.SignalSellReady, sig.Kind)
	assert.Equal(t, 1, sig.Slot)
	assert.Equal(t, 40350.0, sig.TargetPrice)
	assert.InDelta(t, 87.5, sig.ProfitEstimate, 1e-9)
}

func TestAdvise_BelowCloseTargetIsNotSellReady(t *testing.T) {
	sig := Advise(50, 40340, withActive(40000), testGrid())
	assert.NotEqual(t, model.SignalSellReady, sig.Kind)
}

func TestAdvise_NextSlotGap(t *testing.T) {
	p := withActive(40000)

	sig := Advise(50, 39600, p, testGrid())
	assert.Equal(t, model.SignalWait, sig.Kind)
	assert.Equal(t, 2, sig.Slot)
	assert.Equal(t, 39500.0, sig.TargetPrice)
	assert.Equal(t, reasonAboveTarget, sig.Reason)

	sig = Advise(50, 39500, p, testGrid())
	assert.Equal(t, model.SignalFire, sig.Kind)
	assert.Equal(t, 2, sig.Slot)
	assert.Equal(t, 39500.0, sig.TargetPrice)
}

func TestAdvise_LaterSlotsIgnoreMomentum(t *testing.T) {
	sig := Advise(90, 39400, withActive(40000), testGrid())
	assert.Equal(t, model.SignalFire, sig.Kind)

	sig = Advise(math.NaN(), 39400, withActive(40000), testGrid())
	assert.Equal(t, model.SignalFire, sig.Kind)
}

func TestAdvise_GapsPerTransition(t *testing.T) {
	p := withActive(40000, 39500, 38900)

	sig := Advise(50, 38200, p, testGrid())
	assert.Equal(t, model.SignalWait, sig.Kind)
	assert.Equal(t, 4, sig.Slot)
	assert.Equal(t, 38100.0, sig.TargetPrice)

	p = withActive(40000, 39500, 38900, 38100)
	sig = Advise(50, 37100, p, testGrid())
	assert.Equal(t, model.SignalFire, sig.Kind)
	assert.Equal(t, 5, sig.Slot)
	assert.Equal(t, 37100.0, sig.TargetPrice)
}

func TestAdvise_UnavailablePriceWaits(t *testing.T) {
	sig := Advise(20, math.NaN(), withActive(40000), testGrid())

	assert.Equal(t, model.SignalWait, sig.Kind)
	assert.Equal(t, 2, sig.Slot)
	assert.Equal(t, reasonNoPrice, sig.Reason)
}

func TestAdvise_PortfolioFull(t *testing.T) {
	p := withActive(40000, 39500, 38900, 38100, 37100)

	sig := Advise(10, 36000, p, testGrid())
	assert.Equal(t, model.PortfolioFull(), sig)
}

func TestAdvise_SellTakesPriority(t *testing.T) {
	p := withActive(40000, 39500, 38900, 38100, 37100)

	// slot 5 closes at 37450, the rest are still under water
	sig := Advise(10, 37500, p, testGrid())
	assert.Equal(t, model.SignalSellReady, sig.Kind)
	assert.Equal(t, 5, sig.Slot)

	// lowest numbered eligible slot wins
	sig = Advise(10, 40500, p, testGrid())
	assert.Equal(t, model.SignalSellReady, sig.Kind)
	assert.Equal(t, 1, sig.Slot)
}

func TestAdvise_DoesNotMutatePortfolio(t *testing.T) {
	p := withActive(40000)
	before := p.Clone()

	Advise(10, 39000, p, testGrid())
	assert.Equal(t, before, p)
}

func TestNextTarget(t *testing.T) {
	slot, target, ok := NextTarget(model.NewPortfolio(), testGrid())
	assert.True(t, ok)
	assert.Equal(t, 1, slot)
	assert.True(t, math.IsNaN(target))

	// trap prices are rounded to the increment
	slot, target, ok = NextTarget(withActive(40030), testGrid())
	assert.True(t, ok)
	assert.Equal(t, 2, slot)
	assert.Equal(t, 39550.0, target)

	_, _, ok = NextTarget(withActive(1, 1, 1, 1, 1), testGrid())
	assert.False(t, ok)
}

func TestEvaluate_ComputesFromMarket(t *testing.T) {
	bars := make([]model.OHLCV, 20)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: 2500 - float64(i)*10}
	}
	m := &model.Market{
		Series:      &model.PriceSeries{Symbol: "GC=F", Bars: bars},
		FXRate:      34.5,
		FXAvailable: true,
	}
	s := Settings{
		Grid:       testGrid(),
		Conversion: Conversion{Factor: 0.473, Premium: 100},
	}
	s.Indicators.MomentumPeriod = 14
	s.Indicators.ShortSpan = 50
	s.Indicators.LongSpan = 200
	now := start.AddDate(0, 1, 0)

	adv := Evaluate(model.NewPortfolio(), m, s, now)

	assert.Equal(t, model.SignalFire, adv.Signal.Kind)
	assert.Equal(t, 1, adv.Signal.Slot)
	assert.Equal(t, 0.0, adv.Indicators.Momentum)
	// 2310 * 34.5 * 0.473 + 100 = 37795.7, rounded to 50
	assert.Equal(t, 37800.0, adv.Price)
	assert.False(t, adv.Estimated)
	assert.Equal(t, now, adv.Evaluated)
	assert.Equal(t, model.ShortFire, adv.Trend.ShortTerm)
	assert.Equal(t, model.LongCaution, adv.Trend.LongTerm)
}

func TestEvaluate_FeedDown(t *testing.T) {
	adv := Evaluate(withActive(40000), &model.Market{}, Settings{Grid: testGrid()}, time.Now())

	assert.True(t, math.IsNaN(adv.Price))
	assert.Equal(t, model.SignalWait, adv.Signal.Kind)
	assert.Equal(t, 2, adv.Signal.Slot)
	assert.Equal(t, model.ShortNoData, adv.Trend.ShortTerm)
	assert.Equal(t, model.LongNoData, adv.Trend.LongTerm)
}

func TestEvaluate_FallbackRateIsEstimated(t *testing.T) {
	m := &model.Market{
		Series:      &model.PriceSeries{Bars: []model.OHLCV{{Close: 2400}, {Close: 2410}}},
		FXRate:      35,
		FXAvailable: true,
		FXFallback:  true,
	}
	s := Settings{Grid: testGrid(), Conversion: Conversion{Factor: 0.473, Premium: 100}}
	s.Indicators.MomentumPeriod = 14

	adv := Evaluate(model.NewPortfolio(), m, s, time.Now())
	assert.True(t, adv.Estimated)
	assert.False(t, math.IsNaN(adv.Price))
}
