package calculator

import (
	"math"

	"github.com/pkg/errors"
)

// CalculateEMA computes the exponential moving average of closes with
// alpha = 2/(span+1), seeded with the first close and walked forward over
// the whole history.
func CalculateEMA(closes []float64, span int) (float64, error) {
	if span <= 0 {
		return math.NaN(), errors.New("span must be positive")
	}
	if len(closes) < 2 {
		return math.NaN(), ErrInsufficientData
	}
	alpha := 2.0 / float64(span+1)
	avg := closes[0]
	for _, c := range closes[1:] {
		avg = alpha*c + (1-alpha)*avg
	}
	return avg, nil
}
