package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds all Prometheus metrics for the grid bot.
type Metrics struct {
	registry *prometheus.Registry

	EvaluationsTotal prometheus.Counter
	EvaluationDur    prometheus.Histogram
	SignalsTotal     *prometheus.CounterVec // labels: kind
	LedgerOpsTotal   *prometheus.CounterVec // labels: op, result
	FeedFailures     *prometheus.CounterVec // labels: stage=series|fx
	AlertsSent       prometheus.Counter

	ActiveSlots    prometheus.Gauge
	RealizedProfit prometheus.Gauge
	LastPrice      prometheus.Gauge
	Momentum       prometheus.Gauge
}

// New creates the metrics on a private registry so several instances can
// coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EvaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goldgrid_evaluations_total",
			Help: "Total evaluation cycles run",
		}),
		EvaluationDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "goldgrid_evaluation_duration_seconds",
			Help:    "Evaluation cycle latency including the market fetch",
			Buckets: prometheus.DefBuckets,
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldgrid_signals_total",
			Help: "Advisor signals by kind",
		}, []string{"kind"}),
		LedgerOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldgrid_ledger_operations_total",
			Help: "Ledger mutations by operation and result",
		}, []string{"op", "result"}),
		FeedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldgrid_feed_failures_total",
			Help: "Market feed failures by stage",
		}, []string{"stage"}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goldgrid_alerts_sent_total",
			Help: "Signal change alerts delivered",
		}),
		ActiveSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldgrid_active_slots",
			Help: "Number of ACTIVE grid slots",
		}),
		RealizedProfit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldgrid_realized_profit",
			Help: "Accumulated realized profit",
		}),
		LastPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldgrid_local_price",
			Help: "Last evaluated local price",
		}),
		Momentum: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldgrid_momentum",
			Help: "Last computed momentum oscillator value",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EvaluationsTotal,
		m.EvaluationDur,
		m.SignalsTotal,
		m.LedgerOpsTotal,
		m.FeedFailures,
		m.AlertsSent,
		m.ActiveSlots,
		m.RealizedProfit,
		m.LastPrice,
		m.Momentum,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
