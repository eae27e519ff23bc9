package model

import "time"

// SlotCount is the number of grid tranches ("woods").
const SlotCount = 5

// SlotStatus is the state of a single position slot.
type SlotStatus string

const (
	SlotEmpty  SlotStatus = "EMPTY"
	SlotActive SlotStatus = "ACTIVE"
)

// PositionSlot is one grid tranche. EntryPrice, Quantity and OpenedAt are
// meaningful only while the slot is ACTIVE.
type PositionSlot struct {
	Status     SlotStatus
	EntryPrice float64
	Quantity   float64
	OpenedAt   time.Time
}

// Active reports whether the slot holds a position.
func (s PositionSlot) Active() bool { return s.Status == SlotActive }

// TradeRecord is one archived close. Immutable once appended.
type TradeRecord struct {
	Slot     int
	Profit   float64
	ClosedAt time.Time
}

// Portfolio is the full ledger state. Slots are indexed 0..4 internally;
// every exported accessor takes the 1-based slot number.
type Portfolio struct {
	Slots          [SlotCount]PositionSlot
	RealizedProfit float64
	Archive        []TradeRecord
}

// NewPortfolio returns a portfolio with every slot EMPTY.
func NewPortfolio() Portfolio {
	var p Portfolio
	for i := range p.Slots {
		p.Slots[i].Status = SlotEmpty
	}
	return p
}

// Slot returns the slot with the 1-based index. ok is false when out of range.
func (p *Portfolio) Slot(index int) (PositionSlot, bool) {
	if index < 1 || index > SlotCount {
		return PositionSlot{}, false
	}
	return p.Slots[index-1], true
}

// HighestActive returns the highest ACTIVE slot number, or 0 if none.
func (p *Portfolio) HighestActive() int {
	for i := SlotCount; i >= 1; i-- {
		if p.Slots[i-1].Active() {
			return i
		}
	}
	return 0
}

// ActiveCount returns how many slots are ACTIVE.
func (p *Portfolio) ActiveCount() int {
	n := 0
	for _, s := range p.Slots {
		if s.Active() {
			n++
		}
	}
	return n
}

// ArchiveTotal sums the archived profits.
func (p *Portfolio) ArchiveTotal() float64 {
	total := 0.0
	for _, r := range p.Archive {
		total += r.Profit
	}
	return total
}

// Clone returns a deep copy that shares no memory with p.
func (p Portfolio) Clone() Portfolio {
	c := p
	if p.Archive != nil {
		c.Archive = make([]TradeRecord, len(p.Archive))
		copy(c.Archive, p.Archive)
	}
	return c
}
