// Package controllers holds the payloads shared by the controllers that
// publish readings.
package controllers

import (
	"fmt"
	"strings"

	"github.com/chrissnell/aqimonitor/internal/types"
	"github.com/chrissnell/aqimonitor/pkg/aqi"
)

// State is the JSON document served at /json and published over MQTT.
type State struct {
	Station     string             `json:"station"`
	StationID   string             `json:"station_id"`
	Timestamp   int64              `json:"ts"`
	Particles   Particles          `json:"particles"`
	Color       aqi.RGB            `json:"color"`
	Pressure    *Pressure          `json:"pressure,omitempty"`
	Temperature *types.Temperature `json:"temperature,omitempty"`
}

type Particles struct {
	AQI          int32   `json:"aqi"`
	Category     string  `json:"category"`
	RawUGM3      float64 `json:"raw_ugm3"`
	SmoothedUGM3 float64 `json:"smoothed_ugm3"`
}

type Pressure struct {
	KPa  float64 `json:"kPa"`
	Bar  float64 `json:"bar"`
	MmHg float64 `json:"mmHg"`
	PSI  float64 `json:"psi"`
}

// NewState builds the published document for r. The color is the web color.
func NewState(r types.Reading) State {
	s := State{
		Station:   r.StationName,
		StationID: r.StationID,
		Timestamp: r.Timestamp.Unix(),
		Particles: Particles{
			AQI:          r.AQI,
			Category:     r.Category,
			RawUGM3:      r.RawDensity,
			SmoothedUGM3: r.SmoothedDensity,
		},
		Color:       r.WebColor,
		Temperature: r.Temperature,
	}
	if r.Pressure != nil {
		s.Pressure = &Pressure{
			KPa:  r.Pressure.KPa,
			Bar:  r.Pressure.Bar,
			MmHg: r.Pressure.MmHg,
			PSI:  r.Pressure.PSI,
		}
	}
	return s
}

// HTMLState is the document served at /jsonhtml for the status page.
type HTMLState struct {
	AQI   int32  `json:"aqi"`
	Color string `json:"color"`
	Body  string `json:"body"`
}

// NewHTMLState renders r as a small HTML fragment.
func NewHTMLState(r types.Reading) HTMLState {
	var b strings.Builder

	fmt.Fprintf(&b, "<p>Particles: %0.1f μg/m3</p><p> &nbsp; &nbsp; (%0.1f μg/m3 with smoothing)</p>",
		r.RawDensity, r.SmoothedDensity)

	if r.Pressure != nil && r.Temperature != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "<p>Pressure: %0.3f kPa</p><p> &nbsp; &nbsp; (~%0.1f bar, ~%0.2f mmHg, ~%0.1f PSI)</p>\n",
			r.Pressure.KPa, r.Pressure.Bar, r.Pressure.MmHg, r.Pressure.PSI)
		fmt.Fprintf(&b, "<p>Temperature: %0.1f&#8451,  %0.1f&#8457</p>\n",
			r.Temperature.Celsius, r.Temperature.Fahrenheit)
	}

	return HTMLState{
		AQI:   r.AQI,
		Color: r.WebColor.Hex(),
		Body:  b.String(),
	}
}
