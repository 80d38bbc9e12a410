package aqi

import (
	"errors"
	"fmt"
)

// Breakpoint is one row of a breakpoint table. Density in [RangeLo, RangeHi]
// maps linearly onto the index sub-range [ScaleLo, ScaleHi]. Color is the
// color at the start of the segment; the color at the end of the segment is
// the Color of the following row.
type Breakpoint struct {
	RangeLo float64
	RangeHi float64
	ScaleLo int32
	ScaleHi int32
	Color   RGB
}

// Table is an ordered breakpoint table. The first and last rows are sentinels
// that only supply color endpoints and are never selected as a segment.
type Table []Breakpoint

// WebColors are the EPA PM2.5 breakpoints with colors tuned for web pages.
// The official EPA colors are used for the lower categories, with some added
// distinction at the high end.
var WebColors = Table{
	{RangeLo: 0.0, RangeHi: 0.0, ScaleLo: 0, ScaleHi: 0, Color: RGB{104, 223, 67}},
	{RangeLo: 0.0, RangeHi: 12.1, ScaleLo: 0, ScaleHi: 50, Color: RGB{104, 223, 67}},
	{RangeLo: 12.1, RangeHi: 35.5, ScaleLo: 51, ScaleHi: 100, Color: RGB{104, 223, 67}},
	{RangeLo: 35.5, RangeHi: 55.5, ScaleLo: 101, ScaleHi: 150, Color: RGB{255, 254, 84}},
	{RangeLo: 55.5, RangeHi: 150.5, ScaleLo: 151, ScaleHi: 200, Color: RGB{240, 132, 50}},
	{RangeLo: 150.5, RangeHi: 250.5, ScaleLo: 201, ScaleHi: 300, Color: RGB{235, 50, 35}},
	{RangeLo: 250.5, RangeHi: 350.5, ScaleLo: 301, ScaleHi: 400, Color: RGB{133, 70, 147}},
	{RangeLo: 350.5, RangeHi: 500.5, ScaleLo: 401, ScaleHi: 500, Color: RGB{115, 20, 37}},
	{RangeLo: 500.5, RangeHi: 99999.9, ScaleLo: 501, ScaleHi: 999, Color: RGB{57, 10, 18}},
	{RangeLo: 99999.9, RangeHi: 100000.0, ScaleLo: 999, ScaleHi: 1000, Color: RGB{0, 0, 0}},
}

// LEDColors share the WebColors boundaries but use colors that render well
// on WS2812 (NeoPixel) LEDs, which wash out the official palette.
var LEDColors = Table{
	{RangeLo: 0.0, RangeHi: 0.0, ScaleLo: 0, ScaleHi: 0, Color: RGB{0, 128, 0}},
	{RangeLo: 0.0, RangeHi: 12.1, ScaleLo: 0, ScaleHi: 50, Color: RGB{0, 128, 0}},
	{RangeLo: 12.1, RangeHi: 35.5, ScaleLo: 51, ScaleHi: 100, Color: RGB{64, 64, 0}},
	{RangeLo: 35.5, RangeHi: 55.5, ScaleLo: 101, ScaleHi: 150, Color: RGB{192, 64, 0}},
	{RangeLo: 55.5, RangeHi: 150.5, ScaleLo: 151, ScaleHi: 200, Color: RGB{192, 0, 0}},
	{RangeLo: 150.5, RangeHi: 250.5, ScaleLo: 201, ScaleHi: 300, Color: RGB{192, 0, 16}},
	{RangeLo: 250.5, RangeHi: 350.5, ScaleLo: 301, ScaleHi: 400, Color: RGB{24, 0, 4}},
	{RangeLo: 350.5, RangeHi: 500.5, ScaleLo: 401, ScaleHi: 500, Color: RGB{24, 0, 4}},
	{RangeLo: 500.5, RangeHi: 99999.9, ScaleLo: 501, ScaleHi: 999, Color: RGB{24, 0, 4}},
	{RangeLo: 99999.9, RangeHi: 100000.0, ScaleLo: 999, ScaleHi: 1000, Color: RGB{24, 0, 4}},
}

// errTableTooShort is returned by Validate for tables without at least one
// interior row between the two sentinels.
var errTableTooShort = errors.New("breakpoint table needs two sentinel rows and at least one interior row")

// Validate checks the structural invariants of a breakpoint table: a
// zero-width leading sentinel, contiguous rows, and non-decreasing scales.
func (t Table) Validate() error {
	if len(t) < 3 {
		return errTableTooShort
	}

	if t[0].RangeLo != t[0].RangeHi {
		return fmt.Errorf("leading sentinel must have zero width, got [%v, %v]", t[0].RangeLo, t[0].RangeHi)
	}

	for i, row := range t {
		if row.ScaleLo > row.ScaleHi {
			return fmt.Errorf("row %d: scale_lo %d > scale_hi %d", i, row.ScaleLo, row.ScaleHi)
		}
		if row.RangeLo > row.RangeHi {
			return fmt.Errorf("row %d: range_lo %v > range_hi %v", i, row.RangeLo, row.RangeHi)
		}
		if i > 0 && t[i-1].RangeHi != row.RangeLo {
			return fmt.Errorf("row %d: range_lo %v does not continue previous range_hi %v", i, row.RangeLo, t[i-1].RangeHi)
		}
	}

	// Interior segments must have a width; only the sentinels may be empty.
	for i := 1; i < len(t)-1; i++ {
		if t[i].RangeHi == t[i].RangeLo {
			return fmt.Errorf("interior row %d has zero width", i)
		}
	}

	return nil
}

// SameBoundaries reports whether two tables have identical row counts,
// ranges and scales. Only the colors may differ.
func (t Table) SameBoundaries(other Table) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		a, b := t[i], other[i]
		if a.RangeLo != b.RangeLo || a.RangeHi != b.RangeHi || a.ScaleLo != b.ScaleLo || a.ScaleHi != b.ScaleHi {
			return false
		}
	}
	return true
}

// fraction returns how far density lies into the segment at row i. A
// zero-width row yields 0.
func (t Table) fraction(i int, density float64) float64 {
	row := t[i]
	width := row.RangeHi - row.RangeLo
	if width == 0 {
		return 0
	}
	return (density - row.RangeLo) / width
}
