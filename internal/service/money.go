package service

import "github.com/shopspring/decimal"

// round2 rounds money and percentage values to two decimal places using
// decimal arithmetic instead of raw float math.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
