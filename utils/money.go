package utils

import (
	"github.com/shopspring/decimal"
)

func Round(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// FormatUSD renders an amount as "$1,234.50".
func FormatUSD(value float64) string {
	d := decimal.NewFromFloat(value).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, cents := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var grouped []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, whole[i])
	}
	return sign + "$" + string(grouped) + "." + cents
}
