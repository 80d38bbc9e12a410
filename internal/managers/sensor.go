package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/aqimonitor/internal/sensor"
	"github.com/chrissnell/aqimonitor/pkg/config"
	"go.uber.org/zap"
)

// SensorManager owns the configured dust sensor source
type SensorManager struct {
	source sensor.Source
	logger *zap.SugaredLogger
}

// NewSensorManager creates the sensor source described by the configuration.
// Samples are written to out.
func NewSensorManager(ctx context.Context, wg *sync.WaitGroup, c *config.ConfigData, out chan<- sensor.Sample, logger *zap.SugaredLogger) (*SensorManager, error) {
	source, err := sensor.NewSource(ctx, wg, c.Sensor, c.Monitor.SampleIntervalDuration(), out, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating sensor source: %w", err)
	}

	return &SensorManager{
		source: source,
		logger: logger,
	}, nil
}

// StartSensor starts reading from the sensor
func (s *SensorManager) StartSensor() error {
	s.logger.Infof("Starting sensor [%v]...", s.source.Name())
	if err := s.source.Start(); err != nil {
		return fmt.Errorf("failed to start sensor [%s]: %w", s.source.Name(), err)
	}
	return nil
}
