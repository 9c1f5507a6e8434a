package utils

import "math"

// BytesPerGBYTE is the number of bytes in one GBYTE
const BytesPerGBYTE = 1_000_000_000

// BytesToUSD converts bytes to USD at the given GBYTE/USD rate, rounded to cents
func BytesToUSD(bytes int64, gbyteUSD float64) float64 {
	usd := float64(bytes) / BytesPerGBYTE * gbyteUSD
	return math.Round(usd*100) / 100
}
