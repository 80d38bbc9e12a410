package sensor

import "github.com/chrissnell/aqimonitor/pkg/config"

// Waveshare converts 16-bit ADC counts from a Waveshare (Sharp GP2Y1010AU0F)
// dust sensor into a particle density in μg/m³.
type Waveshare struct {
	PowerMV      float64
	ZeroDustMV   float64
	VoltageGain  float64
	DensityPerMV float64
}

// NewWaveshare builds a converter from the sensor configuration.
func NewWaveshare(cfg config.SensorData) Waveshare {
	return Waveshare{
		PowerMV:      cfg.PowerMV,
		ZeroDustMV:   cfg.ZeroDustMV,
		VoltageGain:  cfg.VoltageGain,
		DensityPerMV: cfg.DensityPerMV,
	}
}

// Millivolts returns the sensor output voltage for an ADC reading, undoing
// the board's voltage divider.
func (w Waveshare) Millivolts(adc uint16) float64 {
	return (w.PowerMV / 65536.0) * float64(adc) * w.VoltageGain
}

// Density returns the particle density for an ADC reading. Anything at or
// below the clean-air voltage is reported as zero.
func (w Waveshare) Density(adc uint16) float64 {
	mv := w.Millivolts(adc)
	if mv <= w.ZeroDustMV {
		return 0
	}
	return (mv - w.ZeroDustMV) * w.DensityPerMV
}
