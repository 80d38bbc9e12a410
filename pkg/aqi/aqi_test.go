package aqi

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestTablesAreValid(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{name: "web colors", table: WebColors},
		{name: "led colors", table: LEDColors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); err != nil {
				t.Fatalf("table failed validation: %v", err)
			}
			if len(tt.table) != 10 {
				t.Errorf("expected 10 rows, got %d", len(tt.table))
			}
			last := tt.table[len(tt.table)-1]
			if last.RangeHi != 100000.0 {
				t.Errorf("trailing sentinel range_hi = %v, expected 100000.0", last.RangeHi)
			}
		})
	}

	if !WebColors.SameBoundaries(LEDColors) {
		t.Error("web and LED tables must share range and scale boundaries")
	}
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	good := func() Table {
		return Table{
			{RangeLo: 0, RangeHi: 0},
			{RangeLo: 0, RangeHi: 10, ScaleLo: 0, ScaleHi: 50},
			{RangeLo: 10, RangeHi: 20, ScaleLo: 51, ScaleHi: 100},
			{RangeLo: 20, RangeHi: 21, ScaleLo: 100, ScaleHi: 101},
		}
	}

	tests := []struct {
		name   string
		mutate func(Table) Table
	}{
		{
			name:   "too short",
			mutate: func(t Table) Table { return t[:2] },
		},
		{
			name: "gap between rows",
			mutate: func(t Table) Table {
				t[2].RangeLo = 11
				return t
			},
		},
		{
			name: "descending scale",
			mutate: func(t Table) Table {
				t[1].ScaleLo = 60
				return t
			},
		},
		{
			name: "leading sentinel with width",
			mutate: func(t Table) Table {
				t[0].RangeHi = 1
				t[1].RangeLo = 1
				return t
			},
		},
		{
			name: "zero-width interior row",
			mutate: func(t Table) Table {
				t[2].RangeHi = 10
				t[3].RangeLo = 10
				return t
			},
		},
	}

	if err := good().Validate(); err != nil {
		t.Fatalf("baseline table should validate: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mutate(good()).Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestRowFor(t *testing.T) {
	tests := []struct {
		density  float64
		expected int
	}{
		{0, 1},
		{10, 1},
		{12.1, 1},
		{12.2, 2},
		{35.5, 2},
		{55.4, 3},
		{150.5, 4},
		{300, 6},
		{500.5, 7},
		{5000, 8},
		{99999.9, 8},
		{1_000_000, 8},
		{-5, 1},
	}

	for _, tt := range tests {
		if got := RowFor(tt.density); got != tt.expected {
			t.Errorf("RowFor(%v) = %d, expected %d", tt.density, got, tt.expected)
		}
	}
}

func TestIndex(t *testing.T) {
	tests := []struct {
		name     string
		density  float64
		expected int32
	}{
		{"zero", 0, 0},
		{"inside first segment", 10, 41},
		{"good/moderate boundary", 12.1, 50},
		{"moderate/sensitive boundary", 35.5, 100},
		{"just under sensitive ceiling", 55.4, 149},
		{"sensitive/unhealthy boundary", 55.5, 150},
		{"unhealthy/very unhealthy boundary", 150.5, 200},
		{"hazardous", 300, 350},
		{"top of official scale", 500.5, 500},
		{"beyond official scale", 5000, 523},
		{"end of table", 99999.9, 999},
		{"negative is no reading", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Index(tt.density); got != tt.expected {
				t.Errorf("Index(%v) = %d, expected %d", tt.density, got, tt.expected)
			}
		})
	}
}

func TestIndexClampsHighDensityToLastSegment(t *testing.T) {
	huge := Index(1_000_000)
	if huge <= Index(99999.9) {
		t.Errorf("expected extrapolation past the end of the table, got %d", huge)
	}
	if RowFor(1_000_000) != RowFor(99999.9) {
		t.Error("densities beyond the table should share the last interior segment")
	}
}

func TestIndexSaturatesExtremeDensities(t *testing.T) {
	prev := Index(99999.9)
	for _, d := range []float64{1e9, 1e11, 1e12, 1e15, math.MaxFloat64} {
		got := Index(d)
		if got < prev {
			t.Errorf("Index(%g) = %d, below Index of a smaller density (%d)", d, got, prev)
		}
		if cat := Category(got); cat != "Hazardous" {
			t.Errorf("Category(Index(%g)) = %q, expected Hazardous", d, cat)
		}
		prev = got
	}
	if got := Index(1e12); got != math.MaxInt32 {
		t.Errorf("Index(1e12) = %d, expected %d", got, int32(math.MaxInt32))
	}
}

func TestIndexIsMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		densities := make([]float64, 200)
		for i := range densities {
			densities[i] = r.Float64() * 1000
		}
		sort.Float64s(densities)

		prev := Index(densities[0])
		for _, d := range densities[1:] {
			cur := Index(d)
			if cur < prev {
				t.Fatalf("Index decreased from %d to %d at density %v", prev, cur, d)
			}
			prev = cur
		}
	}
}

func TestWebColor(t *testing.T) {
	tests := []struct {
		name     string
		density  float64
		expected RGB
	}{
		{"zero is first interior color", 0, RGB{104, 223, 67}},
		{"inside moderate ramp", 19.12, RGB{149, 232, 72}},
		{"moderate/sensitive boundary", 35.5, RGB{255, 254, 84}},
		{"sensitive/unhealthy boundary", 55.5, RGB{240, 132, 50}},
		{"fading toward black", 5000, RGB{54, 9, 17}},
		{"negative is black", -5, RGB{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WebColor(tt.density); got != tt.expected {
				t.Errorf("WebColor(%v) = %+v, expected %+v", tt.density, got, tt.expected)
			}
		})
	}
}

func TestLEDColor(t *testing.T) {
	tests := []struct {
		name     string
		density  float64
		expected RGB
	}{
		{"zero is green", 0, RGB{0, 128, 0}},
		{"good/moderate boundary", 12.1, RGB{64, 64, 0}},
		{"inside moderate ramp", 19.12, RGB{102, 64, 0}},
		{"flat hazardous tail", 5000, RGB{24, 0, 4}},
		{"negative is off", -5, RGB{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LEDColor(tt.density); got != tt.expected {
				t.Errorf("LEDColor(%v) = %+v, expected %+v", tt.density, got, tt.expected)
			}
		})
	}
}

func TestDim(t *testing.T) {
	c := RGB{255, 254, 84}

	same, err := Dim(c, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Dim(same, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if twice != c {
		t.Errorf("Dim by 1 twice = %+v, expected %+v", twice, c)
	}

	half, err := Dim(c, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expected := (RGB{127, 127, 42}); half != expected {
		t.Errorf("Dim by 2 = %+v, expected %+v", half, expected)
	}

	for _, divisor := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Dim(c, divisor); !errors.Is(err, ErrInvalidDivisor) {
			t.Errorf("Dim(c, %v) error = %v, expected ErrInvalidDivisor", divisor, err)
		}
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	for _, d := range []float64{0, 10, 12.1, 35.5, 55.4, 150.5, 300, 500.5, 5000} {
		first := Evaluate(d)
		for i := 0; i < 5; i++ {
			if again := Evaluate(d); again != first {
				t.Fatalf("Evaluate(%v) changed between calls: %+v vs %+v", d, first, again)
			}
		}
		if first.Index != Index(d) || first.WebColor != WebColor(d) || first.LEDColor != LEDColor(d) {
			t.Errorf("Evaluate(%v) disagrees with the individual functions: %+v", d, first)
		}
	}
}

func TestRGBHexAndBytes(t *testing.T) {
	if got := (RGB{104, 223, 67}).Hex(); got != "#68df43" {
		t.Errorf("Hex() = %q, expected #68df43", got)
	}
	if got := (RGB{-20, 300, 7}).Bytes(); got != [3]byte{0, 255, 7} {
		t.Errorf("Bytes() = %v, expected [0 255 7]", got)
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		aqi      int32
		expected string
	}{
		{0, "Good"},
		{50, "Good"},
		{100, "Moderate"},
		{150, "Unhealthy for Sensitive Groups"},
		{200, "Unhealthy"},
		{300, "Very Unhealthy"},
		{999, "Hazardous"},
	}

	for _, tt := range tests {
		if got := Category(tt.aqi); got != tt.expected {
			t.Errorf("Category(%d) = %q, expected %q", tt.aqi, got, tt.expected)
		}
	}
}

func TestCalculatePM10(t *testing.T) {
	tests := []struct {
		pm10     float64
		expected int32
	}{
		{-1, 0},
		{0, 0},
		{54, 50},
		{154, 100},
		{1000, 500},
	}

	for _, tt := range tests {
		if got := CalculatePM10(tt.pm10); got != tt.expected {
			t.Errorf("CalculatePM10(%v) = %d, expected %d", tt.pm10, got, tt.expected)
		}
	}
}
