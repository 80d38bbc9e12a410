// Package types holds the data that flows between the sensor, the monitor
// loop and the controllers.
package types

import (
	"time"

	"github.com/chrissnell/aqimonitor/pkg/aqi"
)

// Reading is one processed sample: the raw and smoothed PM2.5 density, the
// AQI derived from the smoothed value, and optional environment data from a
// BMP280 on the sensor bridge.
type Reading struct {
	Timestamp       time.Time    `json:"timestamp"`
	StationName     string       `json:"station_name"`
	StationID       string       `json:"station_id"`
	RawDensity      float64      `json:"raw_ugm3"`
	SmoothedDensity float64      `json:"smoothed_ugm3"`
	AQI             int32        `json:"aqi"`
	Category        string       `json:"category"`
	WebColor        aqi.RGB      `json:"web_color"`
	LEDColor        aqi.RGB      `json:"led_color"`
	Pressure        *Pressure    `json:"pressure,omitempty"`
	Temperature     *Temperature `json:"temperature,omitempty"`
}

// Pressure is a barometric pressure in the units shown on the status page
type Pressure struct {
	Pa   float64 `json:"Pa"`
	KPa  float64 `json:"kPa"`
	Bar  float64 `json:"bar"`
	MmHg float64 `json:"mmHg"`
	PSI  float64 `json:"psi"`
}

// NewPressure converts a pressure in pascals.
func NewPressure(pa float64) Pressure {
	return Pressure{
		Pa:   pa,
		KPa:  pa / 1000.0,
		Bar:  pa / 100000.0,
		MmHg: pa / 133.3224,
		PSI:  pa * 0.000145,
	}
}

// Temperature is an air temperature in both scales
type Temperature struct {
	Celsius    float64 `json:"celsius"`
	Fahrenheit float64 `json:"fahrenheit"`
}

// NewTemperature converts a temperature in degrees Celsius.
func NewTemperature(celsius float64) Temperature {
	return Temperature{
		Celsius:    celsius,
		Fahrenheit: (celsius * 9.0 / 5.0) + 32.0,
	}
}
