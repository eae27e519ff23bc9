package recorder

import (
	"time"

	"GoldGrid/internal/model"
)

// Evaluation holds all data for one evaluation cycle record.
type Evaluation struct {
	RunID          string
	Advice         model.Advice
	ActiveSlots    int
	RealizedProfit float64
	FeedError      string
}

// LedgerEvent records one attempted ledger mutation.
type LedgerEvent struct {
	Op       string // "open", "close", "clear_archive"
	Slot     int
	Price    float64
	Profit   float64
	Result   string // "ok", "rejected", "storage_error"
	Source   string // "chat", "cli"
	Note     string
	Occurred time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordEvaluation(evt *Evaluation) error
	RecordLedgerEvent(evt *LedgerEvent) error
	Close() error
}
