package model

// GridConfig is the spacing and money configuration for one evaluation
// cycle. It carries no defaults; those belong to the config package.
type GridConfig struct {
	// Gaps[i] is the price distance required between slot i+1 and slot i+2.
	Gaps           [SlotCount - 1]float64
	MinProfit      float64
	SpreadBuffer   float64
	BaseCapital    float64
	PriceIncrement float64

	FireThreshold float64 // momentum at or below which slot 1 may open
	DeepOversold  float64
	Overbought    float64
}

// Gap returns the configured gap for the transition into slot `to` (2..5).
func (c GridConfig) Gap(to int) (float64, bool) {
	if to < 2 || to > SlotCount {
		return 0, false
	}
	return c.Gaps[to-2], true
}
