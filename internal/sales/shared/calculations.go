package shared

import "math"

// SumAmounts adds currency amounts and rounds the result to cents.
func SumAmounts(amounts ...float64) float64 {
	var total float64
	for _, a := range amounts {
		total += a
	}
	return RoundCents(total)
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
