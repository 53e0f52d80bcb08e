// Package format renders byte counts and percentages for display.
package format

import (
	"fmt"
	"math"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// Bytes renders n on a base-1024 scale with two decimals. Zero renders as
// "0 B" because log(0) is undefined.
func Bytes(n uint64) string {
	if n == 0 {
		return "0 B"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}
	return fmt.Sprintf("%.2f %s", float64(n)/math.Pow(1024, float64(i)), byteUnits[i])
}

// Percent renders a percentage rounded to the nearest integer. Values outside
// 0..100 are shown as received.
func Percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v)))
}

// Fraction converts a percentage to the 0..1 ratio progress bars expect.
func Fraction(percent float64) float64 {
	return percent / 100.0
}
