package notifier

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"GoldGrid/internal/ledger"
	"GoldGrid/internal/model"
)

func testGrid() model.GridConfig {
	return model.GridConfig{
		Gaps:           [model.SlotCount - 1]float64{500, 600, 800, 1000},
		MinProfit:      300,
		SpreadBuffer:   100,
		BaseCapital:    10000,
		PriceIncrement: 50,
		FireThreshold:  45,
		DeepOversold:   30,
		Overbought:     70,
	}
}

func TestFormatSignal(t *testing.T) {
	cases := []struct {
		sig  model.Signal
		want string
	}{
		{model.Fire(1, math.NaN()), "open slot 1 now"},
		{model.Fire(2, 39500), "open slot 2 (trap 39500)"},
		{model.Wait(2, 39500, "price above target"), "slot 2: price above target (trap 39500)"},
		{model.Wait(1, math.NaN(), "momentum not oversold"), "slot 1: momentum not oversold"},
		{model.SellReady(1, 40400, 87.5), "slot 1 above 40400, est. profit +88"},
		{model.PortfolioFull(), "PORTFOLIO FULL"},
	}
	for _, tc := range cases {
		assert.Contains(t, FormatSignal(tc.sig), tc.want)
	}
}

func TestFormatAdvice(t *testing.T) {
	ind := model.UndefinedSnapshot()
	ind.LastClose = 2650.5
	adv := model.Advice{
		Signal:     model.Wait(1, math.NaN(), "momentum unavailable"),
		Trend:      model.TrendTag{ShortTerm: model.ShortNoData, LongTerm: model.LongNoData},
		Indicators: ind,
		Price:      43250,
		Estimated:  true,
		Evaluated:  time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
	}

	msg := FormatAdvice(adv)
	assert.Contains(t, msg, "2025-03-10 09:30")
	assert.Contains(t, msg, "43250 (estimated FX)")
	assert.Contains(t, msg, "RSI: n/a")
	assert.Contains(t, msg, "Spot: 2650.50")
	assert.NotContains(t, msg, "NaN")
}

func TestFormatStatus(t *testing.T) {
	p := model.NewPortfolio()
	p.Slots[0] = model.PositionSlot{Status: model.SlotActive, EntryPrice: 40000, Quantity: 0.25}
	p.RealizedProfit = 325

	msg := FormatStatus(p, testGrid())
	assert.Contains(t, msg, "Slot 1: 40000 x 0.2500, sell ≥ 40400")
	assert.Contains(t, msg, "Slot 2: empty")
	assert.Contains(t, msg, "Next: slot 2 at 39500")
	assert.Contains(t, msg, "Capital: 10325")

	msg = FormatStatus(model.NewPortfolio(), testGrid())
	assert.Contains(t, msg, "Next: slot 1 on RSI ≤ 45")
}

func TestFormatVault(t *testing.T) {
	assert.Contains(t, FormatVault(model.NewPortfolio()), "No closed trades yet")

	p := model.NewPortfolio()
	p.Archive = []model.TradeRecord{
		{Slot: 1, Profit: 325, ClosedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Slot: 2, Profit: -50, ClosedAt: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	p.RealizedProfit = 275

	msg := FormatVault(p)
	assert.Contains(t, msg, "2025-03-01 slot 1: +325")
	assert.Contains(t, msg, "2025-03-02 slot 2: -50")
	assert.Contains(t, msg, "Accumulated profit: +275")
}

func TestFormatOutcome(t *testing.T) {
	assert.Equal(t, "✅ Slot 3 opened", FormatOutcome(ledger.Outcome{Op: ledger.OpOpen, Slot: 3}))
	assert.Equal(t, "✅ Slot 1 closed, profit +325", FormatOutcome(ledger.Outcome{Op: ledger.OpClose, Slot: 1, Profit: 325}))
}

func TestFormatErrorEscapesHTML(t *testing.T) {
	msg := FormatError(errors.New("bad <input>"))
	assert.True(t, strings.HasSuffix(msg, "bad &lt;input&gt;"))
}
