// Package monitor turns sensor samples into readings. It smooths the raw
// density, evaluates the AQI, drives the LED ring and hands each reading to
// its subscribers.
package monitor

import (
	"context"
	"sync"

	"github.com/chrissnell/aqimonitor/internal/led"
	"github.com/chrissnell/aqimonitor/internal/sensor"
	"github.com/chrissnell/aqimonitor/internal/smoothing"
	"github.com/chrissnell/aqimonitor/internal/types"
	"github.com/chrissnell/aqimonitor/pkg/aqi"
	"github.com/chrissnell/aqimonitor/pkg/config"
	"go.uber.org/zap"
)

// Monitor owns the sample channel and the latest reading.
type Monitor struct {
	ctx     context.Context
	wg      *sync.WaitGroup
	config  config.MonitorData
	samples chan sensor.Sample
	buffer  *smoothing.Buffer
	ring    led.Ring
	logger  *zap.SugaredLogger
	warm    bool

	mu        sync.RWMutex
	latest    types.Reading
	hasLatest bool

	subMu       sync.Mutex
	subscribers []chan types.Reading
	closed      bool
}

// New creates a monitor. Sensor sources should write to Samples().
func New(ctx context.Context, wg *sync.WaitGroup, cfg config.MonitorData, ring led.Ring, logger *zap.SugaredLogger) *Monitor {
	return &Monitor{
		ctx:     ctx,
		wg:      wg,
		config:  cfg,
		samples: make(chan sensor.Sample, 20),
		buffer:  smoothing.NewBuffer(cfg.SmoothingWindow),
		ring:    ring,
		logger:  logger.Named("monitor"),
	}
}

// Samples returns the channel the sensor source feeds
func (m *Monitor) Samples() chan<- sensor.Sample {
	return m.samples
}

// Start launches the processing loop
func (m *Monitor) Start() {
	m.logger.Infow("starting monitor", "smoothing_window", m.buffer.Size(), "led_dim_divisor", m.config.LEDDimDivisor)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.closeSubscribers()

		for {
			select {
			case s := <-m.samples:
				m.process(s)
			case <-m.ctx.Done():
				m.logger.Info("cancellation request received, stopping monitor")
				return
			}
		}
	}()
}

func (m *Monitor) process(s sensor.Sample) types.Reading {
	smoothed := m.buffer.Add(s.DensityUGM3)
	if !m.warm && m.buffer.Filled() {
		m.warm = true
		m.logger.Infow("smoothing window filled", "samples", m.buffer.Size())
	}
	result := aqi.Evaluate(smoothed)

	r := types.Reading{
		Timestamp:       s.Timestamp,
		StationName:     m.config.StationName,
		StationID:       m.config.StationID,
		RawDensity:      s.DensityUGM3,
		SmoothedDensity: smoothed,
		AQI:             result.Index,
		Category:        result.Category,
		WebColor:        result.WebColor,
		LEDColor:        result.LEDColor,
	}
	if s.HasEnvironment {
		p := types.NewPressure(s.PressurePa)
		t := types.NewTemperature(s.TemperatureC)
		r.Pressure = &p
		r.Temperature = &t
	}

	m.logger.Debugw("reading",
		"adc", s.ADC,
		"raw_ugm3", r.RawDensity,
		"smoothed_ugm3", r.SmoothedDensity,
		"aqi", r.AQI,
	)

	if dimmed, err := aqi.Dim(r.LEDColor, m.config.LEDDimDivisor); err != nil {
		m.logger.Errorf("cannot dim led color: %v", err)
	} else if err := m.ring.SetColor(dimmed); err != nil {
		m.logger.Warnf("error updating led ring: %v", err)
	}

	m.mu.Lock()
	m.latest = r
	m.hasLatest = true
	m.mu.Unlock()

	m.distribute(r)

	return r
}

// Latest returns the most recent reading. The bool is false until the first
// sample has been processed.
func (m *Monitor) Latest() (types.Reading, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.hasLatest
}

// Subscribe returns a channel that receives every new reading. Readings are
// dropped for a subscriber whose buffer is full. The channel is closed when
// the monitor stops.
func (m *Monitor) Subscribe(buf int) <-chan types.Reading {
	c := make(chan types.Reading, buf)

	m.subMu.Lock()
	defer m.subMu.Unlock()

	if m.closed {
		close(c)
		return c
	}
	m.subscribers = append(m.subscribers, c)
	return c
}

func (m *Monitor) distribute(r types.Reading) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for i, c := range m.subscribers {
		select {
		case c <- r:
		default:
			m.logger.Debugf("subscriber %d is full, dropping reading", i)
		}
	}
}

func (m *Monitor) closeSubscribers() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, c := range m.subscribers {
		close(c)
	}
	m.subscribers = nil
	m.closed = true
}
