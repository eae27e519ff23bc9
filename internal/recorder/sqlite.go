package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			price           REAL,
			estimated       INTEGER NOT NULL DEFAULT 0,
			last_close      REAL,
			momentum        REAL,
			short_trend     REAL,
			long_trend      REAL,
			signal_kind     TEXT NOT NULL,
			signal_slot     INTEGER,
			signal_reason   TEXT,
			target_price    REAL,
			profit_estimate REAL,
			short_term      TEXT,
			long_term       TEXT,
			active_slots    INTEGER,
			realized_profit REAL,
			feed_error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_ts ON evaluations(timestamp)`,

		`CREATE TABLE IF NOT EXISTS ledger_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			op        TEXT NOT NULL,
			slot      INTEGER,
			price     REAL,
			profit    REAL,
			result    TEXT NOT NULL,
			source    TEXT,
			note      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_events_ts ON ledger_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable stores undefined indicator values as NULL instead of NaN.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func (r *SQLiteRecorder) RecordEvaluation(evt *Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	adv := evt.Advice
	ts := adv.Evaluated
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO evaluations
		(run_id, timestamp, price, estimated, last_close, momentum, short_trend, long_trend,
		 signal_kind, signal_slot, signal_reason, target_price, profit_estimate,
		 short_term, long_term, active_slots, realized_profit, feed_error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.RunID, ts.Unix(), nullable(adv.Price), adv.Estimated,
		nullable(adv.Indicators.LastClose), nullable(adv.Indicators.Momentum),
		nullable(adv.Indicators.ShortTrend), nullable(adv.Indicators.LongTrend),
		string(adv.Signal.Kind), adv.Signal.Slot, adv.Signal.Reason,
		nullable(adv.Signal.TargetPrice), adv.Signal.ProfitEstimate,
		string(adv.Trend.ShortTerm), string(adv.Trend.LongTerm),
		evt.ActiveSlots, evt.RealizedProfit, evt.FeedError,
	)
	return err
}

func (r *SQLiteRecorder) RecordLedgerEvent(evt *LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Occurred
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO ledger_events
		(timestamp, op, slot, price, profit, result, source, note)
		VALUES (?,?,?,?,?,?,?,?)`,
		ts.Unix(), evt.Op, evt.Slot, nullable(evt.Price), evt.Profit,
		evt.Result, evt.Source, evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
