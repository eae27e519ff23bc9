// Package ledger implements the five-slot grid position ledger.
//
// Apply is the only function that changes a Portfolio. It works on a copy
// and returns the new state, so a rejected command leaves the caller's
// portfolio untouched.
package ledger

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"GoldGrid/internal/model"
)

// ErrInvalidTransition is returned when a command violates the slot state machine.
var ErrInvalidTransition = errors.New("invalid slot transition")

// Op names a ledger operation in outcomes, logs and metrics.
type Op string

const (
	OpOpen         Op = "open"
	OpClose        Op = "close"
	OpClearArchive Op = "clear_archive"
)

// Command is a ledger mutation.
type Command interface {
	Op() Op
	apply(p *model.Portfolio, now time.Time) (Outcome, error)
}

// Outcome describes an applied command.
type Outcome struct {
	Op     Op
	Slot   int
	Profit float64
	Record *model.TradeRecord
}

// OpenSlot moves an EMPTY slot to ACTIVE.
type OpenSlot struct {
	Slot      int
	FillPrice float64
	Capital   float64
}

// CloseSlot moves an ACTIVE slot to EMPTY and archives the realized profit.
type CloseSlot struct {
	Slot         int
	ExitPrice    float64
	SpreadBuffer float64
}

// ClearArchive drops every trade record and resets realized profit.
type ClearArchive struct{}

func (OpenSlot) Op() Op     { return OpOpen }
func (CloseSlot) Op() Op    { return OpClose }
func (ClearArchive) Op() Op { return OpClearArchive }

// Apply runs cmd against a copy of p and returns the resulting portfolio.
// On error the returned portfolio is p unchanged.
func Apply(p model.Portfolio, cmd Command, now time.Time) (model.Portfolio, Outcome, error) {
	next := p.Clone()
	out, err := cmd.apply(&next, now)
	if err != nil {
		return p, Outcome{}, err
	}
	return next, out, nil
}

func (c OpenSlot) apply(p *model.Portfolio, now time.Time) (Outcome, error) {
	slot, ok := p.Slot(c.Slot)
	if !ok {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d out of range 1..%d", c.Slot, model.SlotCount)
	}
	if slot.Active() {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d is already active", c.Slot)
	}
	if c.Slot > 1 && !p.Slots[c.Slot-2].Active() {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d requires slot %d to be active", c.Slot, c.Slot-1)
	}
	if !finite(c.FillPrice) || c.FillPrice <= 0 {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d fill price must be positive", c.Slot)
	}
	if !finite(c.Capital) || c.Capital < 0 {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d capital must be non-negative", c.Slot)
	}

	p.Slots[c.Slot-1] = model.PositionSlot{
		Status:     model.SlotActive,
		EntryPrice: c.FillPrice,
		Quantity:   c.Capital / c.FillPrice,
		OpenedAt:   now,
	}
	return Outcome{Op: OpOpen, Slot: c.Slot}, nil
}

func (c CloseSlot) apply(p *model.Portfolio, now time.Time) (Outcome, error) {
	slot, ok := p.Slot(c.Slot)
	if !ok {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d out of range 1..%d", c.Slot, model.SlotCount)
	}
	if !slot.Active() {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d is not active", c.Slot)
	}
	if !finite(c.ExitPrice) {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d exit price must be finite", c.Slot)
	}
	if !finite(c.SpreadBuffer) {
		return Outcome{}, errors.Wrapf(ErrInvalidTransition, "slot %d spread buffer must be finite", c.Slot)
	}

	profit := (c.ExitPrice - c.SpreadBuffer - slot.EntryPrice) * slot.Quantity
	rec := model.TradeRecord{Slot: c.Slot, Profit: profit, ClosedAt: now}
	p.Archive = append(p.Archive, rec)
	p.RealizedProfit += profit
	p.Slots[c.Slot-1] = model.PositionSlot{Status: model.SlotEmpty}
	return Outcome{Op: OpClose, Slot: c.Slot, Profit: profit, Record: &rec}, nil
}

func (ClearArchive) apply(p *model.Portfolio, _ time.Time) (Outcome, error) {
	p.Archive = nil
	p.RealizedProfit = 0
	return Outcome{Op: OpClearArchive}, nil
}

// finite reports whether v can be stored in the JSON document.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CurrentCapital is the funding amount for the next open.
func CurrentCapital(p model.Portfolio, baseCapital float64) float64 {
	return baseCapital + p.RealizedProfit
}
