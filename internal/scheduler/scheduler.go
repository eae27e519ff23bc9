package scheduler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"GoldGrid/internal/ledger"
	"GoldGrid/internal/metrics"
	"GoldGrid/internal/model"
	"GoldGrid/internal/notifier"
	"GoldGrid/internal/recorder"
	"GoldGrid/internal/strategy"
)

// MarketSource produces one market view per evaluation.
type MarketSource interface {
	Collect(ctx context.Context) (*model.Market, error)
}

// Scheduler manages the cron tasks and the chat command surface.
type Scheduler struct {
	Cron     *cron.Cron
	Source   MarketSource
	Ledger   *ledger.Manager
	Notifier notifier.Sender
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Settings strategy.Settings
	// FallbackFX is used when the reference rate feed fails; 0 disables it.
	FallbackFX float64
	Ctx        context.Context

	now func() time.Time

	mu         sync.Mutex
	lastSignal *model.Signal
}

// NewScheduler creates a new Scheduler. A nil recorder or metrics is
// replaced with a no-op recorder and a private registry.
func NewScheduler(ctx context.Context, src MarketSource, lm *ledger.Manager, sender notifier.Sender,
	rec recorder.Recorder, m *metrics.Metrics, settings strategy.Settings, fallbackFX float64) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Source:     src,
		Ledger:     lm,
		Notifier:   sender,
		Recorder:   rec,
		Metrics:    m,
		Settings:   settings,
		FallbackFX: fallbackFX,
		Ctx:        ctx,
		now:        time.Now,
	}
}

// RegisterAll registers the evaluation and daily summary tasks.
func (s *Scheduler) RegisterAll(evaluateCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(evaluateCron, s.evaluateTask); err != nil {
		return fmt.Errorf("register evaluate task: %w", err)
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.summaryTask); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) evaluateTask() {
	if _, err := s.RunCycle(s.Ctx); err != nil {
		log.Warn().Err(err).Msg("evaluation ran on partial market data")
	}
}

func (s *Scheduler) summaryTask() {
	adv, _ := s.Evaluate(s.Ctx)
	s.trySend(s.Ctx, notifier.FormatSummary(adv, s.Ledger.Snapshot(), s.Settings.Grid, s.now()))
}

// RunCycle evaluates the market and alerts when the recommended action
// differs from the previous cycle. A feed error is returned alongside a
// still valid Advice.
func (s *Scheduler) RunCycle(ctx context.Context) (model.Advice, error) {
	adv, err := s.Evaluate(ctx)

	s.mu.Lock()
	changed := s.lastSignal == nil || !s.lastSignal.SameAction(adv.Signal)
	sig := adv.Signal
	s.lastSignal = &sig
	s.mu.Unlock()

	if changed {
		log.Info().Str("kind", string(sig.Kind)).Int("slot", sig.Slot).Msg("signal changed")
		if s.trySend(ctx, notifier.FormatAdvice(adv)) {
			s.Metrics.AlertsSent.Inc()
		}
	}
	return adv, err
}

// Evaluate collects the market, applies the configured FX fallback and
// evaluates against the current portfolio. It never mutates the ledger.
func (s *Scheduler) Evaluate(ctx context.Context) (model.Advice, error) {
	start := time.Now()
	runID := uuid.NewString()

	m, feedErr := s.Source.Collect(ctx)
	if m == nil {
		m = &model.Market{}
	}
	if feedErr != nil {
		if m.Series == nil {
			s.Metrics.FeedFailures.WithLabelValues("series").Inc()
		}
		if !m.FXAvailable {
			s.Metrics.FeedFailures.WithLabelValues("fx").Inc()
		}
	}
	if !m.FXAvailable && s.FallbackFX > 0 {
		log.Warn().Float64("fx", s.FallbackFX).Msg("using configured fallback fx rate")
		m.FXRate = s.FallbackFX
		m.FXAvailable = true
		m.FXFallback = true
	}

	p := s.Ledger.Snapshot()
	adv := strategy.Evaluate(p, m, s.Settings, s.now())

	s.Metrics.EvaluationsTotal.Inc()
	s.Metrics.SignalsTotal.WithLabelValues(string(adv.Signal.Kind)).Inc()
	s.Metrics.ActiveSlots.Set(float64(p.ActiveCount()))
	s.Metrics.RealizedProfit.Set(p.RealizedProfit)
	if !math.IsNaN(adv.Price) {
		s.Metrics.LastPrice.Set(adv.Price)
	}
	if adv.Indicators.HasMomentum() {
		s.Metrics.Momentum.Set(adv.Indicators.Momentum)
	}
	s.Metrics.EvaluationDur.Observe(time.Since(start).Seconds())

	evt := &recorder.Evaluation{
		RunID:          runID,
		Advice:         adv,
		ActiveSlots:    p.ActiveCount(),
		RealizedProfit: p.RealizedProfit,
	}
	if feedErr != nil {
		evt.FeedError = feedErr.Error()
	}
	if err := s.Recorder.RecordEvaluation(evt); err != nil {
		log.Error().Err(err).Str("run", runID).Msg("record evaluation")
	}

	log.Info().
		Str("run", runID).
		Str("signal", string(adv.Signal.Kind)).
		Int("slot", adv.Signal.Slot).
		Float64("price", adv.Price).
		Float64("momentum", adv.Indicators.Momentum).
		Msg("evaluation complete")
	return adv, feedErr
}

// trySend reports whether the message was delivered.
func (s *Scheduler) trySend(ctx context.Context, text string) bool {
	if s.Notifier == nil {
		return false
	}
	if err := s.Notifier.Send(ctx, text); err != nil {
		log.Error().Err(err).Msg("send notification")
		return false
	}
	return true
}
