package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is a chronological, strictly increasing sequence of bars.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars, tolerating a nil series.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes extracts the closing prices in order.
func (s *PriceSeries) Closes() []float64 {
	if s == nil {
		return nil
	}
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar.
func (s *PriceSeries) Last() (OHLCV, bool) {
	if s.Len() == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Market is everything the feed hands to the engine for one evaluation.
// A nil Series means the instrument feed failed; FXAvailable=false means
// the reference rate could not be read and FXRate must not be used.
type Market struct {
	Series      *PriceSeries
	FXRate      float64
	FXAvailable bool
	FXFallback  bool // FXRate came from configuration, not the feed
	FetchedAt   time.Time
}
