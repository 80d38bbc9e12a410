// Package aqi provides functions for calculating Air Quality Index values
// and the matching display colors from particulate matter concentrations
// according to EPA standards.
//
// PM2.5 values are mapped through two breakpoint tables that share their
// concentration and index boundaries: WebColors for web pages and LEDColors
// for NeoPixel rings. Everything in this package is stateless and safe for
// concurrent use.
package aqi

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDivisor is returned by Dim when the divisor is not a positive number.
var ErrInvalidDivisor = errors.New("dim divisor must be greater than zero")

// RGB is an 8-bit-per-channel color. The engine does not clamp channels;
// interpolating between two in-range endpoints never leaves [0,255].
type RGB struct {
	R int `json:"red"`
	G int `json:"green"`
	B int `json:"blue"`
}

// Hex returns the color in #rrggbb notation.
func (c RGB) Hex() string {
	b := c.Bytes()
	return fmt.Sprintf("#%02x%02x%02x", b[0], b[1], b[2])
}

// Bytes returns the channels clamped to [0,255], in R, G, B order.
func (c RGB) Bytes() [3]byte {
	return [3]byte{clampByte(c.R), clampByte(c.G), clampByte(c.B)}
}

func clampByte(v int) byte {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return byte(v)
	}
}

// Result bundles every value the engine derives from one density.
type Result struct {
	Density  float64 `json:"density_ugm3"`
	Index    int32   `json:"aqi"`
	Category string  `json:"category"`
	WebColor RGB     `json:"web_color"`
	LEDColor RGB     `json:"led_color"`
}

// RowFor returns the index of the WebColors row whose segment contains the
// PM2.5 density. The sentinel rows are never returned; densities past the
// end of the table land in the last interior row.
func RowFor(density float64) int {
	return WebColors.rowFor(density)
}

func (t Table) rowFor(density float64) int {
	for i := 1; i < len(t)-1; i++ {
		if density <= t[i].RangeHi {
			return i
		}
	}
	return len(t) - 2
}

// Index calculates the AQI from a PM2.5 concentration (μg/m³). The result is
// truncated toward zero. Negative densities are treated as no reading and
// return 0. Densities beyond the table extrapolate the last segment, so
// values above 500 are possible, saturating at math.MaxInt32.
func Index(density float64) int32 {
	if density < 0 {
		return 0
	}

	i := RowFor(density)
	row := WebColors[i]
	f := WebColors.fraction(i, density)

	return int32(saturate(float64(row.ScaleLo) + f*float64(row.ScaleHi-row.ScaleLo)))
}

// WebColor returns the interpolated web page color for a PM2.5 density.
func WebColor(density float64) RGB {
	return interpolateColor(WebColors, density)
}

// LEDColor returns the interpolated NeoPixel color for a PM2.5 density.
func LEDColor(density float64) RGB {
	return interpolateColor(LEDColors, density)
}

// interpolateColor blends the colors of row i and row i+1. The segment and
// fraction always come from WebColors so both palettes stay in step.
func interpolateColor(t Table, density float64) RGB {
	if density < 0 {
		return RGB{}
	}

	i := RowFor(density)
	f := WebColors.fraction(i, density)
	from, to := t[i].Color, t[i+1].Color

	return RGB{
		R: lerp(from.R, to.R, f),
		G: lerp(from.G, to.G, f),
		B: lerp(from.B, to.B, f),
	}
}

func lerp(a, b int, f float64) int {
	return int(saturate(float64(a) + f*float64(b-a)))
}

// saturate clamps v to the int32 range so float to int conversions of
// extrapolated values stay defined.
func saturate(v float64) float64 {
	return math.Max(math.MinInt32, math.Min(v, math.MaxInt32))
}

// Dim divides each channel by divisor, truncating toward zero. Used to bring
// LED brightness down before the color is written to hardware.
func Dim(c RGB, divisor float64) (RGB, error) {
	if !(divisor > 0) || math.IsInf(divisor, 1) {
		return RGB{}, fmt.Errorf("%w: %v", ErrInvalidDivisor, divisor)
	}

	return RGB{
		R: int(float64(c.R) / divisor),
		G: int(float64(c.G) / divisor),
		B: int(float64(c.B) / divisor),
	}, nil
}

// Evaluate runs a density through every engine function.
func Evaluate(density float64) Result {
	idx := Index(density)
	return Result{
		Density:  density,
		Index:    idx,
		Category: Category(idx),
		WebColor: WebColor(density),
		LEDColor: LEDColor(density),
	}
}

// CalculatePM10 calculates the Air Quality Index from PM10 concentration (μg/m³)
// Based on EPA AQI calculation formula for 24-hour PM10 averages
func CalculatePM10(pm10 float64) int32 {
	if pm10 < 0 {
		return 0
	}

	var cLow, cHigh, iLow, iHigh float64

	switch {
	case pm10 <= 54:
		cLow, cHigh = 0, 54
		iLow, iHigh = 0, 50
	case pm10 <= 154:
		cLow, cHigh = 55, 154
		iLow, iHigh = 51, 100
	case pm10 <= 254:
		cLow, cHigh = 155, 254
		iLow, iHigh = 101, 150
	case pm10 <= 354:
		cLow, cHigh = 255, 354
		iLow, iHigh = 151, 200
	case pm10 <= 424:
		cLow, cHigh = 355, 424
		iLow, iHigh = 201, 300
	case pm10 <= 504:
		cLow, cHigh = 425, 504
		iLow, iHigh = 301, 400
	case pm10 <= 604:
		cLow, cHigh = 505, 604
		iLow, iHigh = 401, 500
	default:
		// Beyond 604, AQI is 500+
		return 500
	}

	// I = (I_high - I_low) / (C_high - C_low) * (C - C_low) + I_low
	aqi := ((iHigh-iLow)/(cHigh-cLow))*(pm10-cLow) + iLow
	return int32(math.Round(aqi))
}

// Category returns the EPA category name for a given AQI value
func Category(aqi int32) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}
