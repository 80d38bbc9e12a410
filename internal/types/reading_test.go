package types

import (
	"math"
	"testing"
)

func TestNewPressure(t *testing.T) {
	p := NewPressure(101325)

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"kPa", p.KPa, 101.325},
		{"bar", p.Bar, 1.01325},
		{"mmHg", p.MmHg, 760.0},
		{"psi", p.PSI, 14.692},
	}

	for _, tt := range tests {
		if math.Abs(tt.got-tt.expected) > 0.01 {
			t.Errorf("%s = %v, expected ~%v", tt.name, tt.got, tt.expected)
		}
	}
}

func TestNewTemperature(t *testing.T) {
	tests := []struct {
		celsius    float64
		fahrenheit float64
	}{
		{0, 32},
		{100, 212},
		{-40, -40},
		{21.5, 70.7},
	}

	for _, tt := range tests {
		if got := NewTemperature(tt.celsius).Fahrenheit; math.Abs(got-tt.fahrenheit) > 1e-9 {
			t.Errorf("NewTemperature(%v).Fahrenheit = %v, expected %v", tt.celsius, got, tt.fahrenheit)
		}
	}
}
