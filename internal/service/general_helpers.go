package service

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

// RoundingPrecision is the number of decimal places chart values and prices are rounded to.
const RoundingPrecision = 2

// round2 rounds a float64 value half up to two decimal places.
// The value goes through shopspring/decimal so binary representation error does not flip
// the half case: round2(80.005) is 80.01 and round2(80.004) is 80.00.
//
// NaN and ±Inf are returned unchanged.
//
// Example:
//
//	round2(123.456789)  // returns 123.46
//	round2(0.005)       // returns 0.01
//	round2(1.994)       // returns 1.99
func round2(value float64) float64 {
	if isNonFinite(value) {
		return value
	}
	rounded, _ := decimal.NewFromFloat(value).Round(RoundingPrecision).Float64()
	return rounded
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// randomBrightColor returns a #rrggbb colour with high saturation and value.
func randomBrightColor() string {
	//nolint:gosec // G404: display colours need no cryptographic randomness
	hue := rand.Float64() * 360
	//nolint:gosec // G404: see above
	saturation := 0.65 + rand.Float64()*0.35
	value := 0.85 + rand.Float64()*0.15 //nolint:gosec // G404: see above

	r, g, b := hsvToRGB(hue, saturation, value)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8(math.Round((r + m) * 255)), uint8(math.Round((g + m) * 255)), uint8(math.Round((b + m) * 255))
}
