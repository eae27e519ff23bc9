package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"GoldGrid/internal/model"
)

// ErrStorage wraps every persistence failure surfaced by the Manager.
var ErrStorage = errors.New("storage failure")

// Store loads and saves the whole portfolio as one snapshot.
type Store interface {
	Load(ctx context.Context) (model.Portfolio, error)
	Save(ctx context.Context, p model.Portfolio) error
}

// Manager serializes ledger commands and persists a snapshot after each one.
type Manager struct {
	mu    sync.Mutex
	state model.Portfolio
	store Store
	dirty bool
	now   func() time.Time
}

// NewManager creates a Manager, loading the current state from store.
func NewManager(ctx context.Context, store Store) (*Manager, error) {
	state, err := store.Load(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrStorage, "load portfolio: %v", err)
	}
	return &Manager{state: state, store: store, now: time.Now}, nil
}

// Snapshot returns a copy of the current portfolio.
func (m *Manager) Snapshot() model.Portfolio {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Apply runs cmd and saves the result. A rejected command changes nothing.
// When only the save fails, the new state is kept in memory, the returned
// Outcome is valid, and the error wraps ErrStorage; call Save to retry.
func (m *Manager) Apply(ctx context.Context, cmd Command) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, out, err := Apply(m.state, cmd, m.now())
	if err != nil {
		return Outcome{}, err
	}
	m.state = next
	m.dirty = true

	log.Info().
		Str("op", string(out.Op)).
		Int("slot", out.Slot).
		Float64("profit", out.Profit).
		Float64("realized", m.state.RealizedProfit).
		Msg("ledger updated")

	return out, m.persist(ctx)
}

// Open opens slot at fillPrice funded with capital.
func (m *Manager) Open(ctx context.Context, slot int, fillPrice, capital float64) (Outcome, error) {
	return m.Apply(ctx, OpenSlot{Slot: slot, FillPrice: fillPrice, Capital: capital})
}

// Close closes slot at exitPrice and returns the realized profit.
func (m *Manager) Close(ctx context.Context, slot int, exitPrice, spreadBuffer float64) (Outcome, error) {
	return m.Apply(ctx, CloseSlot{Slot: slot, ExitPrice: exitPrice, SpreadBuffer: spreadBuffer})
}

// ClearArchive empties the vault. Irreversible.
func (m *Manager) ClearArchive(ctx context.Context) (Outcome, error) {
	return m.Apply(ctx, ClearArchive{})
}

// CurrentCapital returns baseCapital plus realized profit.
func (m *Manager) CurrentCapital(baseCapital float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CurrentCapital(m.state, baseCapital)
}

// Save writes the current state if it has unsaved changes.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return nil
	}
	return m.persist(ctx)
}

// Dirty reports whether the in-memory state differs from the last successful save.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

func (m *Manager) persist(ctx context.Context) error {
	if err := m.store.Save(ctx, m.state.Clone()); err != nil {
		log.Error().Err(err).Msg("failed to save portfolio")
		return errors.Wrapf(ErrStorage, "save portfolio: %v", err)
	}
	m.dirty = false
	return nil
}
