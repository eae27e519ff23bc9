package strategy

import (
	"math"

	"GoldGrid/internal/calculator"
	"GoldGrid/internal/model"
)

const (
	reasonNotOversold = "momentum not oversold"
	reasonAboveTarget = "price above target"
	reasonNoMomentum  = "momentum unavailable"
	reasonNoPrice     = "price unavailable"
)

// CloseTarget is the price at which an ACTIVE slot becomes worth closing.
func CloseTarget(slot model.PositionSlot, cfg model.GridConfig) float64 {
	return slot.EntryPrice + cfg.MinProfit + cfg.SpreadBuffer
}

// EstimateProfit is what closing slot at price would realize.
func EstimateProfit(slot model.PositionSlot, price float64, cfg model.GridConfig) float64 {
	return (price - cfg.SpreadBuffer - slot.EntryPrice) * slot.Quantity
}

// NextTarget returns the next slot to open and its trap price, rounded to
// the price increment. Slot 1 has no trap price (it is momentum-gated), so
// target is NaN there. ok is false when every slot is taken.
func NextTarget(p model.Portfolio, cfg model.GridConfig) (slot int, target float64, ok bool) {
	slot = p.HighestActive() + 1
	if slot > model.SlotCount {
		return 0, math.NaN(), false
	}
	if slot == 1 {
		return 1, math.NaN(), true
	}
	gap, _ := cfg.Gap(slot)
	prev := p.Slots[slot-2]
	return slot, calculator.RoundToIncrement(prev.EntryPrice-gap, cfg.PriceIncrement), true
}

// Advise picks the single recommended action. Closing opportunities come
// first, then the next slot in the chain. NaN momentum or price never
// triggers an action.
func Advise(momentum, price float64, p model.Portfolio, cfg model.GridConfig) model.Signal {
	if !math.IsNaN(price) {
		for i, s := range p.Slots {
			if !s.Active() {
				continue
			}
			target := CloseTarget(s, cfg)
			if price >= target {
				return model.SellReady(i+1, calculator.RoundToIncrement(target, cfg.PriceIncrement), EstimateProfit(s, price, cfg))
			}
		}
	}

	next, target, ok := NextTarget(p, cfg)
	if !ok {
		return model.PortfolioFull()
	}

	if next == 1 {
		switch {
		case math.IsNaN(momentum):
			return model.Wait(1, target, reasonNoMomentum)
		case momentum <= cfg.FireThreshold:
			return model.Fire(1, target)
		default:
			return model.Wait(1, target, reasonNotOversold)
		}
	}

	switch {
	case math.IsNaN(price):
		return model.Wait(next, target, reasonNoPrice)
	case price <= target:
		return model.Fire(next, target)
	default:
		return model.Wait(next, target, reasonAboveTarget)
	}
}
