package main

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"GoldGrid/internal/collector"
	"GoldGrid/internal/config"
	"GoldGrid/internal/ledger"
	"GoldGrid/internal/metrics"
	"GoldGrid/internal/notifier"
	"GoldGrid/internal/recorder"
	"GoldGrid/internal/scheduler"
	"GoldGrid/internal/store"
)

var cfgPath string

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:           "bot",
		Short:         "GoldGrid gold grid-trading advisor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "path to the YAML config")

	root.AddCommand(
		runCmd(),
		adviseCmd(),
		statusCmd(),
		vaultCmd(),
		openCmd(),
		closeCmd(),
		clearVaultCmd(),
		calcCmd(),
	)
	return root.ExecuteContext(ctx)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

// app is the wired object graph shared by the daemon and the one-shot commands.
type app struct {
	cfg      *config.Config
	sched    *scheduler.Scheduler
	telegram *notifier.TelegramNotifier
	closers  []func() error
}

// Close retries a pending ledger save, then releases resources.
func (a *app) Close() {
	if a.sched.Ledger.Dirty() {
		if err := a.sched.Ledger.Save(context.Background()); err != nil {
			log.Error().Err(err).Msg("final ledger save failed")
		}
	}
	a.release()
}

func (a *app) release() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
}

func newApp(ctx context.Context, cfg *config.Config, withTelegram bool) (*app, error) {
	a := &app{cfg: cfg}

	var fetcher collector.Fetcher
	switch cfg.Market.Source {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Prices: map[string]float64{
			cfg.Market.Symbol:   2400,
			cfg.Market.FXSymbol: 34.5,
		}}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	fetcher = collector.NewGuardedFetcher(fetcher, cfg.Market.RequestsPerSec, 2, time.Minute)
	log.Info().Str("source", fetcher.Name()).Msg("market data source")
	col := collector.NewCollector(fetcher, cfg.Market.Symbol, cfg.Market.FXSymbol, cfg.Market.HistoryDays)

	var st ledger.Store
	if cfg.Storage.RedisAddr != "" {
		rs, err := store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Key:      cfg.Storage.RedisKey,
		})
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		st = rs
	} else {
		st = store.NewFileStore(cfg.Storage.StateFile)
	}
	lm, err := ledger.NewManager(ctx, st)
	if err != nil {
		a.release()
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			a.closers = append(a.closers, sr.Close)
		}
	}

	var sender notifier.Sender
	if withTelegram {
		tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			a.release()
			return nil, fmt.Errorf("init telegram: %w", err)
		}
		a.telegram = tn
		sender = tn
	}

	a.sched = scheduler.NewScheduler(ctx, col, lm, sender, rec, metrics.New(), cfg.Settings(), cfg.Market.FallbackFXRate)
	return a, nil
}

// withApp loads config, builds the graph without Telegram and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

var plainReplacer = strings.NewReplacer("<b>", "", "</b>", "")

// printPlain writes a chat message to stdout without HTML markup.
func printPlain(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), html.UnescapeString(plainReplacer.Replace(msg)))
}
