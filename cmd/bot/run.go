package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var now bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler and the Telegram command bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireTelegram(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sched.RegisterAll(cfg.Schedule.EvaluateCron, cfg.Schedule.SummaryCron); err != nil {
				return fmt.Errorf("register cron tasks: %w", err)
			}
			a.sched.Start()
			defer a.sched.Stop()

			if cfg.Metrics.Addr != "" {
				go func() {
					if err := a.sched.Metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
						log.Error().Err(err).Msg("metrics server")
					}
				}()
			}

			go a.telegram.StartPolling(ctx, a.sched.HandleCommand)
			log.Info().Msg("telegram polling started")

			if now {
				go func() {
					if _, err := a.sched.RunCycle(ctx); err != nil {
						log.Warn().Err(err).Msg("startup evaluation ran on partial market data")
					}
				}()
			}

			log.Info().Msg("GoldGrid is running, press Ctrl+C to stop")
			<-ctx.Done()
			log.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "run one evaluation immediately on start")
	return cmd
}

func adviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advise",
		Short: "Evaluate the market once and print the advice",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				printPlain(cmd, a.sched.HandleCommand(ctx, "/advice"))
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the slots, the next trap price and current capital",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				printPlain(cmd, a.sched.HandleCommand(ctx, "/status"))
				return nil
			})
		},
	}
}

func vaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vault",
		Short: "Print closed trades and accumulated profit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				printPlain(cmd, a.sched.HandleCommand(ctx, "/vault"))
				return nil
			})
		},
	}
}
