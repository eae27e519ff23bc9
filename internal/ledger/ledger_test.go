package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoldGrid/internal/model"
)

var t0 = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func mustApply(t *testing.T, p model.Portfolio, cmd Command) (model.Portfolio, Outcome) {
	t.Helper()
	next, out, err := Apply(p, cmd, t0)
	require.NoError(t, err)
	return next, out
}

func fullPortfolio(t *testing.T) model.Portfolio {
	p := model.NewPortfolio()
	for i := 1; i <= model.SlotCount; i++ {
		p, _ = mustApply(t, p, OpenSlot{Slot: i, FillPrice: 40000 - float64(i-1)*500, Capital: 10000})
	}
	return p
}

func TestOpenSlot_FirstSlotNeedsNoPredecessor(t *testing.T) {
	p, out := mustApply(t, model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: 10000})

	assert.Equal(t, OpOpen, out.Op)
	s, _ := p.Slot(1)
	assert.Equal(t, model.SlotActive, s.Status)
	assert.Equal(t, 40000.0, s.EntryPrice)
	assert.InDelta(t, 0.25, s.Quantity, 1e-12)
	assert.Equal(t, t0, s.OpenedAt)
}

func TestOpenSlot_RequiresActivePredecessor(t *testing.T) {
	for i := 2; i <= model.SlotCount; i++ {
		p := model.NewPortfolio()
		// every slot except i-1 active where the chain allows it
		for j := 1; j < i-1; j++ {
			p, _ = mustApply(t, p, OpenSlot{Slot: j, FillPrice: 40000, Capital: 10000})
		}
		next, _, err := Apply(p, OpenSlot{Slot: i, FillPrice: 39000, Capital: 10000}, t0)
		assert.ErrorIs(t, err, ErrInvalidTransition, "slot %d", i)
		assert.Equal(t, p, next, "rejected command must not change state")
	}
}

func TestOpenSlot_Rejections(t *testing.T) {
	active, _ := mustApply(t, model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: 10000})

	tests := []struct {
		name string
		p    model.Portfolio
		cmd  OpenSlot
	}{
		{"slot zero", model.NewPortfolio(), OpenSlot{Slot: 0, FillPrice: 1, Capital: 1}},
		{"slot six", model.NewPortfolio(), OpenSlot{Slot: 6, FillPrice: 1, Capital: 1}},
		{"already active", active, OpenSlot{Slot: 1, FillPrice: 40000, Capital: 1}},
		{"zero price", model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 0, Capital: 1}},
		{"negative capital", model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 1, Capital: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Apply(tt.p, tt.cmd, t0)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestOpenSlot_FullPortfolioRejectsEverything(t *testing.T) {
	p := fullPortfolio(t)
	for i := 0; i <= model.SlotCount+1; i++ {
		_, _, err := Apply(p, OpenSlot{Slot: i, FillPrice: 30000, Capital: 10000}, t0)
		assert.ErrorIs(t, err, ErrInvalidTransition, "slot %d", i)
	}
}

func TestCloseSlot_ArchivesProfit(t *testing.T) {
	p, _ := mustApply(t, model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: 10000})
	p, out := mustApply(t, p, CloseSlot{Slot: 1, ExitPrice: 41400, SpreadBuffer: 100})

	// (41400 - 100 - 40000) * 0.25
	assert.InDelta(t, 325.0, out.Profit, 1e-9)
	require.NotNil(t, out.Record)
	assert.Equal(t, 1, out.Record.Slot)
	assert.Equal(t, t0, out.Record.ClosedAt)

	s, _ := p.Slot(1)
	assert.Equal(t, model.PositionSlot{Status: model.SlotEmpty}, s)
	require.Len(t, p.Archive, 1)
	assert.InDelta(t, 325.0, p.RealizedProfit, 1e-9)
}

func TestCloseSlot_LossIsPermitted(t *testing.T) {
	p, _ := mustApply(t, model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: 10000})
	p, out := mustApply(t, p, CloseSlot{Slot: 1, ExitPrice: 38000, SpreadBuffer: 100})
	assert.Less(t, out.Profit, 0.0)
	assert.Equal(t, out.Profit, p.RealizedProfit)
}

func TestCloseSlot_RequiresActive(t *testing.T) {
	for _, slot := range []int{0, 1, 3, 6} {
		_, _, err := Apply(model.NewPortfolio(), CloseSlot{Slot: slot, ExitPrice: 40000}, t0)
		assert.ErrorIs(t, err, ErrInvalidTransition, "slot %d", slot)
	}
}

func TestApply_RejectsNonFiniteAmounts(t *testing.T) {
	active, _ := mustApply(t, model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: 10000})

	tests := []struct {
		name string
		p    model.Portfolio
		cmd  Command
	}{
		{"open NaN price", model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: math.NaN(), Capital: 10000}},
		{"open +Inf price", model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: math.Inf(1), Capital: 10000}},
		{"open NaN capital", model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: math.NaN()}},
		{"open +Inf capital", model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: math.Inf(1)}},
		{"close NaN exit", active, CloseSlot{Slot: 1, ExitPrice: math.NaN()}},
		{"close +Inf exit", active, CloseSlot{Slot: 1, ExitPrice: math.Inf(1)}},
		{"close -Inf exit", active, CloseSlot{Slot: 1, ExitPrice: math.Inf(-1)}},
		{"close NaN spread", active, CloseSlot{Slot: 1, ExitPrice: 41000, SpreadBuffer: math.NaN()}},
		{"close -Inf spread", active, CloseSlot{Slot: 1, ExitPrice: 41000, SpreadBuffer: math.Inf(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, out, err := Apply(tt.p, tt.cmd, t0)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, Outcome{}, out)
			assert.Equal(t, tt.p, next)
			assert.Empty(t, next.Archive)
			assert.Zero(t, next.RealizedProfit)
		})
	}
}

func TestRealizedProfitMatchesArchive(t *testing.T) {
	p := model.NewPortfolio()
	prices := []float64{40000, 39500, 41200, 38700, 40100, 42000}
	for cycle, entry := range prices {
		p, _ = mustApply(t, p, OpenSlot{Slot: 1, FillPrice: entry, Capital: CurrentCapital(p, 10000)})
		p, _ = mustApply(t, p, OpenSlot{Slot: 2, FillPrice: entry - 500, Capital: CurrentCapital(p, 10000)})
		assert.InDelta(t, p.ArchiveTotal(), p.RealizedProfit, 1e-9, "after opens, cycle %d", cycle)

		exit := entry + float64(cycle-2)*300
		p, _ = mustApply(t, p, CloseSlot{Slot: 2, ExitPrice: exit, SpreadBuffer: 100})
		assert.InDelta(t, p.ArchiveTotal(), p.RealizedProfit, 1e-9)
		p, _ = mustApply(t, p, CloseSlot{Slot: 1, ExitPrice: exit, SpreadBuffer: 100})
		assert.InDelta(t, p.ArchiveTotal(), p.RealizedProfit, 1e-9)
	}
	assert.Len(t, p.Archive, 2*len(prices))
}

func TestClearArchive_KeepsActiveSlots(t *testing.T) {
	p, _ := mustApply(t, model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: 10000})
	p, _ = mustApply(t, p, CloseSlot{Slot: 1, ExitPrice: 41000, SpreadBuffer: 100})
	p, _ = mustApply(t, p, OpenSlot{Slot: 1, FillPrice: 40500, Capital: 10000})
	p, _ = mustApply(t, p, ClearArchive{})

	assert.Empty(t, p.Archive)
	assert.Zero(t, p.RealizedProfit)
	s, _ := p.Slot(1)
	assert.True(t, s.Active())
	assert.Equal(t, 10000.0, CurrentCapital(p, 10000))
}

func TestApply_DoesNotAliasArchive(t *testing.T) {
	p, _ := mustApply(t, model.NewPortfolio(), OpenSlot{Slot: 1, FillPrice: 40000, Capital: 10000})
	p, _ = mustApply(t, p, CloseSlot{Slot: 1, ExitPrice: 41000, SpreadBuffer: 100})
	before := p.Clone()

	p2, _ := mustApply(t, p, OpenSlot{Slot: 1, FillPrice: 40000, Capital: 10000})
	_, _ = mustApply(t, p2, CloseSlot{Slot: 1, ExitPrice: 39000, SpreadBuffer: 100})

	assert.Equal(t, before, p)
}
