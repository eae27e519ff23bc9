package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"GoldGrid/internal/calculator"
	"GoldGrid/internal/ledger"
	"GoldGrid/internal/notifier"
)

func openCmd() *cobra.Command {
	var capital float64
	cmd := &cobra.Command{
		Use:   "open SLOT PRICE",
		Short: "Record a buy into a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if cmd.Flags().Changed("capital") {
					args = append(args, strconv.FormatFloat(capital, 'f', -1, 64))
				}
				c, err := a.sched.ParseOpen(args)
				if err != nil {
					return err
				}
				return execLedger(ctx, cmd, a, c)
			})
		},
	}
	cmd.Flags().Float64Var(&capital, "capital", 0, "capital to put in (default: current capital)")
	return cmd
}

func closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close SLOT PRICE",
		Short: "Record the sale of a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				c, err := a.sched.ParseClose(args)
				if err != nil {
					return err
				}
				return execLedger(ctx, cmd, a, c)
			})
		},
	}
}

func clearVaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-vault",
		Short: "Empty the archive and reset accumulated profit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return execLedger(ctx, cmd, a, ledger.ClearArchive{})
			})
		},
	}
}

func execLedger(ctx context.Context, cmd *cobra.Command, a *app, c ledger.Command) error {
	out, err := a.sched.ExecLedger(ctx, c, "cli")
	if err != nil && !errors.Is(err, ledger.ErrStorage) {
		return err
	}
	printPlain(cmd, notifier.FormatOutcome(out))
	return err
}

func calcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc BUY BUDGET PROFIT",
		Short: "Sell target that nets PROFIT on a BUDGET bought at BUY",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			var vals [3]float64
			for i, s := range args {
				if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
					return fmt.Errorf("invalid number %q", s)
				}
			}
			target, qty, err := calculator.SellTarget(vals[0], vals[1], vals[2], cfg.Grid.SpreadBuffer, cfg.Grid.PriceIncrement)
			if err != nil {
				return err
			}
			printPlain(cmd, notifier.FormatCalc(vals[0], vals[1], vals[2], target, qty))
			return nil
		},
	}
}
