package calculator

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInsufficientData is returned with a NaN value when the series is too
// short (or too flat) to define an indicator.
var ErrInsufficientData = errors.New("insufficient data")

// CalculateMomentum computes the RSI-style momentum oscillator over closes.
//
// Gains and losses are smoothed independently with alpha = 1/period, seeded
// by the first price change. It needs at least two closes. A flat series
// has no average gain or loss and is undefined; zero average loss with a
// positive average gain saturates at 100.
func CalculateMomentum(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return math.NaN(), errors.New("period must be positive")
	}
	if len(closes) < 2 {
		return math.NaN(), ErrInsufficientData
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
			continue
		}
		avgGain = alpha*gain + (1-alpha)*avgGain
		avgLoss = alpha*loss + (1-alpha)*avgLoss
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return math.NaN(), ErrInsufficientData
		}
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}
