package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"GoldGrid/internal/calculator"
	"GoldGrid/internal/ledger"
	"GoldGrid/internal/notifier"
	"GoldGrid/internal/recorder"
)

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	name := fields[0]
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	args := fields[1:]

	switch strings.ToLower(name) {
	case "/advice":
		adv, err := s.Evaluate(ctx)
		reply := notifier.FormatAdvice(adv)
		if err != nil {
			reply += "\n⚠️ partial market data"
		}
		return reply
	case "/status":
		return notifier.FormatStatus(s.Ledger.Snapshot(), s.Settings.Grid)
	case "/vault":
		return notifier.FormatVault(s.Ledger.Snapshot())
	case "/open":
		cmd, err := s.ParseOpen(args)
		if err != nil {
			return notifier.FormatError(err)
		}
		return s.replyLedger(ctx, cmd)
	case "/close":
		cmd, err := s.ParseClose(args)
		if err != nil {
			return notifier.FormatError(err)
		}
		return s.replyLedger(ctx, cmd)
	case "/clearvault":
		return s.replyLedger(ctx, ledger.ClearArchive{})
	case "/calc":
		return s.calc(args)
	default:
		return notifier.HelpText()
	}
}

func (s *Scheduler) replyLedger(ctx context.Context, cmd ledger.Command) string {
	out, err := s.ExecLedger(ctx, cmd, "chat")
	switch {
	case err == nil:
		return notifier.FormatOutcome(out)
	case errors.Is(err, ledger.ErrStorage):
		return notifier.FormatOutcome(out) + "\n⚠️ not saved yet: " + err.Error()
	default:
		return notifier.FormatError(err)
	}
}

// ExecLedger applies a ledger command and records the attempt.
func (s *Scheduler) ExecLedger(ctx context.Context, cmd ledger.Command, source string) (ledger.Outcome, error) {
	out, err := s.Ledger.Apply(ctx, cmd)

	result := "ok"
	switch {
	case errors.Is(err, ledger.ErrStorage):
		result = "storage_error"
	case err != nil:
		result = "rejected"
	}
	s.Metrics.LedgerOpsTotal.WithLabelValues(string(cmd.Op()), result).Inc()
	if result != "rejected" {
		p := s.Ledger.Snapshot()
		s.Metrics.ActiveSlots.Set(float64(p.ActiveCount()))
		s.Metrics.RealizedProfit.Set(p.RealizedProfit)
	}

	evt := &recorder.LedgerEvent{
		Op:       string(cmd.Op()),
		Slot:     out.Slot,
		Profit:   out.Profit,
		Result:   result,
		Source:   source,
		Occurred: s.now(),
	}
	switch c := cmd.(type) {
	case ledger.OpenSlot:
		evt.Slot, evt.Price = c.Slot, c.FillPrice
	case ledger.CloseSlot:
		evt.Slot, evt.Price = c.Slot, c.ExitPrice
	}
	if err != nil {
		evt.Note = err.Error()
	}
	if rerr := s.Recorder.RecordLedgerEvent(evt); rerr != nil {
		log.Error().Err(rerr).Msg("record ledger event")
	}
	return out, err
}

// ParseOpen parses "N PRICE [CAPITAL]". Capital defaults to the current
// capital so realized profit compounds into the next position.
func (s *Scheduler) ParseOpen(args []string) (ledger.OpenSlot, error) {
	if len(args) < 2 || len(args) > 3 {
		return ledger.OpenSlot{}, fmt.Errorf("usage: /open N PRICE [CAPITAL]")
	}
	slot, price, err := parseSlotPrice(args)
	if err != nil {
		return ledger.OpenSlot{}, err
	}
	capital := s.Ledger.CurrentCapital(s.Settings.Grid.BaseCapital)
	if len(args) == 3 {
		if capital, err = strconv.ParseFloat(args[2], 64); err != nil {
			return ledger.OpenSlot{}, fmt.Errorf("invalid capital %q", args[2])
		}
	}
	return ledger.OpenSlot{Slot: slot, FillPrice: price, Capital: capital}, nil
}

// ParseClose parses "N PRICE" and applies the configured spread buffer.
func (s *Scheduler) ParseClose(args []string) (ledger.CloseSlot, error) {
	if len(args) != 2 {
		return ledger.CloseSlot{}, fmt.Errorf("usage: /close N PRICE")
	}
	slot, price, err := parseSlotPrice(args)
	if err != nil {
		return ledger.CloseSlot{}, err
	}
	return ledger.CloseSlot{Slot: slot, ExitPrice: price, SpreadBuffer: s.Settings.Grid.SpreadBuffer}, nil
}

func parseSlotPrice(args []string) (int, float64, error) {
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid slot %q", args[0])
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", ""), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid price %q", args[1])
	}
	return slot, price, nil
}

func (s *Scheduler) calc(args []string) string {
	if len(args) != 3 {
		return notifier.FormatError(fmt.Errorf("usage: /calc BUY BUDGET PROFIT"))
	}
	var vals [3]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.ReplaceAll(a, ",", ""), 64)
		if err != nil {
			return notifier.FormatError(fmt.Errorf("invalid number %q", a))
		}
		vals[i] = v
	}
	g := s.Settings.Grid
	target, qty, err := calculator.SellTarget(vals[0], vals[1], vals[2], g.SpreadBuffer, g.PriceIncrement)
	if err != nil {
		return notifier.FormatError(err)
	}
	return notifier.FormatCalc(vals[0], vals[1], vals[2], target, qty)
}
