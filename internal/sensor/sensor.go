// Package sensor acquires raw dust-sensor samples and converts them into
// PM2.5 particle densities.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chrissnell/aqimonitor/pkg/config"
	"go.uber.org/zap"
)

// ErrNoSample is returned when a bridge frame does not carry an ADC reading.
var ErrNoSample = errors.New("frame has no adc reading")

// Sample is one acquisition from the sensor.
type Sample struct {
	Timestamp   time.Time
	ADC         uint16
	DensityUGM3 float64

	// Optional BMP280 data. Only meaningful when HasEnvironment is set.
	HasEnvironment bool
	PressurePa     float64
	TemperatureC   float64
}

// Source is a sensor backend. Started sources push samples into the channel
// they were created with until their context is cancelled.
type Source interface {
	Start() error
	Name() string
}

// NewSource creates the source named by cfg.Type.
func NewSource(ctx context.Context, wg *sync.WaitGroup, cfg config.SensorData, interval time.Duration, out chan<- Sample, logger *zap.SugaredLogger) (Source, error) {
	converter := NewWaveshare(cfg)

	switch cfg.Type {
	case "serial", "network":
		return NewBridge(ctx, wg, cfg, converter, out, logger), nil
	case "simulated":
		return NewSimulated(ctx, wg, converter, interval, out, logger), nil
	default:
		return nil, fmt.Errorf("unknown sensor type: %s", cfg.Type)
	}
}
