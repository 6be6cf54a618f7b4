package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// percentage is part/whole*100 rounded to two decimals; 0 when whole is 0.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(whole))).
		Round(2).
		InexactFloat64()
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).InexactFloat64()
}

func meanInt(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}
