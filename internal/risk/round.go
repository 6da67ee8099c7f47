package risk

import "github.com/shopspring/decimal"

// Round2 rounds to 2 decimals, half to even
func Round2(v float64) float64 {
	return Round(v, 2)
}

// Round rounds to the given number of decimals, half to even
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return f
}
