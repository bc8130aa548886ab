package handicapdomain

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundTenth rounds to one decimal place. Ties are judged on the shortest
// decimal form of x and go to the even digit, so 0.15 becomes 0.2 and 0.25
// becomes 0.2.
func RoundTenth(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).RoundBank(1).Float64()
	return f
}

// RoundWhole rounds to the nearest integer, ties to even.
func RoundWhole(x float64) int {
	return int(math.RoundToEven(x))
}
