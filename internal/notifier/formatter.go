package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"GoldGrid/internal/ledger"
	"GoldGrid/internal/model"
	"GoldGrid/internal/strategy"
)

const dateLayout = "2006-01-02 15:04"

func money(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", v)
}

func indicator(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatSignal renders the one-line action of a signal.
func FormatSignal(sig model.Signal) string {
	switch sig.Kind {
	case model.SignalFire:
		if sig.Slot == 1 || math.IsNaN(sig.TargetPrice) {
			return fmt.Sprintf("🔥 <b>FIRE</b> open slot %d now", sig.Slot)
		}
		return fmt.Sprintf("🔥 <b>FIRE</b> open slot %d (trap %s)", sig.Slot, money(sig.TargetPrice))
	case model.SignalSellReady:
		return fmt.Sprintf("💰 <b>SELL READY</b> slot %d above %s, est. profit %+.0f",
			sig.Slot, money(sig.TargetPrice), sig.ProfitEstimate)
	case model.SignalPortfolioFull:
		return "🧱 <b>PORTFOLIO FULL</b> all slots active, hold"
	default:
		line := fmt.Sprintf("⏳ <b>WAIT</b> slot %d: %s", sig.Slot, html.EscapeString(sig.Reason))
		if !math.IsNaN(sig.TargetPrice) && sig.TargetPrice > 0 {
			line += fmt.Sprintf(" (trap %s)", money(sig.TargetPrice))
		}
		return line
	}
}

// FormatAdvice formats one evaluation into a Telegram message.
func FormatAdvice(adv model.Advice) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🏆 <b>GoldGrid</b> | %s\n\n", adv.Evaluated.Format(dateLayout)))

	price := money(adv.Price)
	if adv.Estimated {
		price += " (estimated FX)"
	}
	b.WriteString(fmt.Sprintf("Local price: %s\n", price))
	ind := adv.Indicators
	b.WriteString(fmt.Sprintf("Spot: %s | RSI: %s\n", indicator(ind.LastClose), indicator(ind.Momentum)))
	b.WriteString(fmt.Sprintf("EMA50: %s | EMA200: %s\n\n", indicator(ind.ShortTrend), indicator(ind.LongTrend)))

	b.WriteString(FormatSignal(adv.Signal))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("⚡ Short-term: %s\n", shortTermText(adv.Trend.ShortTerm)))
	b.WriteString(fmt.Sprintf("🐢 Long-term: %s\n", longTermText(adv.Trend)))
	return b.String()
}

func shortTermText(t model.ShortTermTier) string {
	switch t {
	case model.ShortFire:
		return "FIRE, deeply oversold"
	case model.ShortBuyDip:
		return "BUY DIP, oversold in an uptrend"
	case model.ShortSell:
		return "SELL, overbought"
	case model.ShortWait:
		return "WAIT"
	default:
		return "no data"
	}
}

func longTermText(tag model.TrendTag) string {
	switch tag.LongTerm {
	case model.LongHold:
		if tag.NearSupport {
			return "HOLD, accumulate near support"
		}
		return "HOLD, uptrend intact"
	case model.LongCaution:
		return "CAUTION, below long trend"
	default:
		return "no data"
	}
}

// FormatStatus formats the slot table with close targets and the next trap.
func FormatStatus(p model.Portfolio, cfg model.GridConfig) string {
	var b strings.Builder
	b.WriteString("📦 <b>Portfolio</b>\n\n")

	for i, s := range p.Slots {
		if !s.Active() {
			b.WriteString(fmt.Sprintf("Slot %d: empty\n", i+1))
			continue
		}
		target := strategy.CloseTarget(s, cfg)
		b.WriteString(fmt.Sprintf("Slot %d: %s x %.4f, sell ≥ %s", i+1, money(s.EntryPrice), s.Quantity, money(target)))
		if !s.OpenedAt.IsZero() {
			b.WriteString(fmt.Sprintf(" (%s)", s.OpenedAt.Format("2006-01-02")))
		}
		b.WriteString("\n")
	}

	if slot, target, ok := strategy.NextTarget(p, cfg); ok {
		if math.IsNaN(target) {
			b.WriteString(fmt.Sprintf("\nNext: slot %d on RSI ≤ %.0f\n", slot, cfg.FireThreshold))
		} else {
			b.WriteString(fmt.Sprintf("\nNext: slot %d at %s\n", slot, money(target)))
		}
	} else {
		b.WriteString("\nNext: portfolio full\n")
	}
	b.WriteString(fmt.Sprintf("Capital: %s (base %s, realized %+.0f)\n",
		money(ledger.CurrentCapital(p, cfg.BaseCapital)), money(cfg.BaseCapital), p.RealizedProfit))
	return b.String()
}

// FormatVault formats the archive of closed trades.
func FormatVault(p model.Portfolio) string {
	var b strings.Builder
	b.WriteString("🏦 <b>Vault</b>\n\n")
	if len(p.Archive) == 0 {
		b.WriteString("No closed trades yet.\n")
	}
	for _, r := range p.Archive {
		b.WriteString(fmt.Sprintf("%s slot %d: %+.0f\n", r.ClosedAt.Format("2006-01-02"), r.Slot, r.Profit))
	}
	b.WriteString(fmt.Sprintf("\nAccumulated profit: %+.0f\n", p.RealizedProfit))
	return b.String()
}

// FormatOutcome confirms an applied ledger command.
func FormatOutcome(out ledger.Outcome) string {
	switch out.Op {
	case ledger.OpOpen:
		return fmt.Sprintf("✅ Slot %d opened", out.Slot)
	case ledger.OpClose:
		return fmt.Sprintf("✅ Slot %d closed, profit %+.0f", out.Slot, out.Profit)
	case ledger.OpClearArchive:
		return "✅ Vault cleared"
	default:
		return "✅ Done"
	}
}

// FormatCalc formats a profit calculator result.
func FormatCalc(buy, budget, profit, target, quantity float64) string {
	var b strings.Builder
	b.WriteString("🧮 <b>Profit calculator</b>\n\n")
	b.WriteString(fmt.Sprintf("Buy: %s | Budget: %s\n", money(buy), money(budget)))
	b.WriteString(fmt.Sprintf("Quantity: %.4f\n", quantity))
	b.WriteString(fmt.Sprintf("Sell at %s to net %+.0f\n", money(target), profit))
	return b.String()
}

// FormatError formats a failure reply.
func FormatError(err error) string {
	return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
}

// FormatSummary formats the daily summary.
func FormatSummary(adv model.Advice, p model.Portfolio, cfg model.GridConfig, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Daily summary</b> | %s\n\n", now.Format("2006-01-02")))
	b.WriteString(FormatSignal(adv.Signal))
	b.WriteString("\n\n")
	b.WriteString(FormatStatus(p, cfg))
	return b.String()
}

// HelpText lists the chat commands.
func HelpText() string {
	return strings.Join([]string{
		"<b>Commands</b>",
		"/advice - evaluate the market now",
		"/status - slots and next trap price",
		"/vault - closed trades",
		"/open N PRICE - record a buy into slot N",
		"/close N PRICE - record a sale of slot N",
		"/clearvault - reset the vault",
		"/calc BUY BUDGET PROFIT - sell target for a position",
	}, "\n")
}
