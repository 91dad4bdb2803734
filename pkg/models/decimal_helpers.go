package models

import "github.com/shopspring/decimal"

// RoundScore rounds a probability to 4 decimal places, half away from zero
func RoundScore(p float64) float64 {
	return decimal.NewFromFloat(p).Round(4).InexactFloat64()
}
