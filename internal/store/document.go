// Package store persists the ledger's Portfolio as a single JSON document.
//
// Document shape:
//
//	{
//	  "portfolio": {"1": {"status": "ACTIVE", "entry_price": 40000, "grams": 0.25, "date": "..."}, ...},
//	  "vault": [{"wood": 1, "profit": 325, "date": "..."}],
//	  "accumulated_profit": 325
//	}
//
// Every key is optional on load so documents written by older versions
// still decode.
package store

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"GoldGrid/internal/model"
)

type slotDoc struct {
	Status     string  `json:"status"`
	EntryPrice float64 `json:"entry_price"`
	Grams      float64 `json:"grams"`
	Date       string  `json:"date"`
}

type vaultDoc struct {
	Wood   int     `json:"wood"`
	Profit float64 `json:"profit"`
	Date   string  `json:"date"`
}

type document struct {
	Portfolio         map[string]*slotDoc `json:"portfolio"`
	Vault             []vaultDoc          `json:"vault"`
	AccumulatedProfit *float64            `json:"accumulated_profit"`
}

// legacy layouts seen in older state files
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Encode renders p as the JSON document.
func Encode(p model.Portfolio) ([]byte, error) {
	doc := document{
		Portfolio: make(map[string]*slotDoc, model.SlotCount),
		Vault:     make([]vaultDoc, 0, len(p.Archive)),
	}
	for i, s := range p.Slots {
		status := s.Status
		if status == "" {
			status = model.SlotEmpty
		}
		doc.Portfolio[strconv.Itoa(i+1)] = &slotDoc{
			Status:     string(status),
			EntryPrice: s.EntryPrice,
			Grams:      s.Quantity,
			Date:       formatDate(s.OpenedAt),
		}
	}
	for _, r := range p.Archive {
		doc.Vault = append(doc.Vault, vaultDoc{Wood: r.Slot, Profit: r.Profit, Date: formatDate(r.ClosedAt)})
	}
	profit := p.RealizedProfit
	doc.AccumulatedProfit = &profit

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode portfolio")
	}
	return data, nil
}

// Decode parses a JSON document, defaulting every missing key.
// Realized profit is always rebuilt from the vault; a stored
// accumulated_profit that disagrees is logged and ignored.
func Decode(data []byte) (model.Portfolio, error) {
	p := model.NewPortfolio()
	if len(strings.TrimSpace(string(data))) == 0 {
		return p, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return p, errors.Wrap(err, "decode portfolio")
	}

	for key, sd := range doc.Portfolio {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 1 || idx > model.SlotCount {
			log.Warn().Str("key", key).Msg("ignoring unknown portfolio slot")
			continue
		}
		if sd == nil {
			continue
		}
		slot, err := decodeSlot(sd)
		if err != nil {
			return model.NewPortfolio(), errors.Wrapf(err, "slot %d", idx)
		}
		p.Slots[idx-1] = slot
	}

	for i, vd := range doc.Vault {
		if vd.Wood < 1 || vd.Wood > model.SlotCount {
			return model.NewPortfolio(), errors.Errorf("vault entry %d: wood %d out of range", i, vd.Wood)
		}
		closed, err := parseDate(vd.Date)
		if err != nil {
			return model.NewPortfolio(), errors.Wrapf(err, "vault entry %d", i)
		}
		p.Archive = append(p.Archive, model.TradeRecord{Slot: vd.Wood, Profit: vd.Profit, ClosedAt: closed})
	}

	p.RealizedProfit = p.ArchiveTotal()
	if stored := doc.AccumulatedProfit; stored != nil && math.Abs(*stored-p.RealizedProfit) > 1e-6 {
		log.Warn().Float64("accumulated", *stored).Float64("vault_total", p.RealizedProfit).
			Msg("accumulated profit does not match vault, using vault total")
	}
	return p, nil
}

func decodeSlot(sd *slotDoc) (model.PositionSlot, error) {
	switch model.SlotStatus(strings.ToUpper(strings.TrimSpace(sd.Status))) {
	case "", model.SlotEmpty:
		return model.PositionSlot{Status: model.SlotEmpty}, nil
	case model.SlotActive:
		opened, err := parseDate(sd.Date)
		if err != nil {
			return model.PositionSlot{}, err
		}
		return model.PositionSlot{
			Status:     model.SlotActive,
			EntryPrice: sd.EntryPrice,
			Quantity:   sd.Grams,
			OpenedAt:   opened,
		}, nil
	default:
		return model.PositionSlot{}, errors.Errorf("unknown status %q", sd.Status)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized date %q", s)
}
