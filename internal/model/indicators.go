package model

import (
	"math"
	"time"
)

// IndicatorSnapshot holds the indicators derived from one PriceSeries.
// Undefined values are NaN, never zero.
type IndicatorSnapshot struct {
	Momentum   float64
	ShortTrend float64
	LongTrend  float64
	LastClose  float64
	At         time.Time
}

// UndefinedSnapshot returns a snapshot with every value unavailable.
func UndefinedSnapshot() IndicatorSnapshot {
	nan := math.NaN()
	return IndicatorSnapshot{Momentum: nan, ShortTrend: nan, LongTrend: nan, LastClose: nan}
}

func (s IndicatorSnapshot) HasMomentum() bool   { return !math.IsNaN(s.Momentum) }
func (s IndicatorSnapshot) HasShortTrend() bool { return !math.IsNaN(s.ShortTrend) }
func (s IndicatorSnapshot) HasLongTrend() bool  { return !math.IsNaN(s.LongTrend) }
func (s IndicatorSnapshot) HasClose() bool      { return !math.IsNaN(s.LastClose) }
