package calculator

import (
	"math"

	"github.com/pkg/errors"
)

// RoundToIncrement rounds price to the nearest multiple of increment.
// A non-positive increment leaves the price unchanged.
func RoundToIncrement(price, increment float64) float64 {
	if increment <= 0 {
		return price
	}
	return math.Round(price/increment) * increment
}

// LocalPrice converts a spot quote into the local traded price:
// spot * fx * factor + premium, rounded to increment.
func LocalPrice(spot, fx, factor, premium, increment float64) (float64, error) {
	if math.IsNaN(spot) || math.IsNaN(fx) || spot <= 0 || fx <= 0 {
		return math.NaN(), ErrInsufficientData
	}
	return RoundToIncrement(spot*fx*factor+premium, increment), nil
}

// SellTarget is the exit price that nets targetProfit on a position bought
// at buy with budget, after paying spread.
func SellTarget(buy, budget, targetProfit, spread, increment float64) (target, quantity float64, err error) {
	if buy <= 0 || budget <= 0 {
		return 0, 0, errors.New("buy price and budget must be positive")
	}
	quantity = budget / buy
	target = buy + targetProfit/quantity + spread
	return RoundToIncrement(target, increment), quantity, nil
}
