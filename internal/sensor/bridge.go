package sensor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/chrissnell/aqimonitor/pkg/config"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

const (
	serialRetryDelay  = 30 * time.Second
	networkRetryDelay = 5 * time.Second
	readTimeout       = 30 * time.Second
)

// Frame is one line of JSON sent by the sensor bridge, a microcontroller
// that triggers the dust sensor LED, reads the ADC and optionally a BMP280.
type Frame struct {
	ADC          *uint16  `json:"adc"`
	PressurePa   *float64 `json:"pressure_pa,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

// Bridge reads frames from a sensor bridge attached over serial or TCP.
type Bridge struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	config    config.SensorData
	converter Waveshare
	out       chan<- Sample
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewBridge creates a bridge source. Nothing is opened until Start.
func NewBridge(ctx context.Context, wg *sync.WaitGroup, cfg config.SensorData, converter Waveshare, out chan<- Sample, logger *zap.SugaredLogger) *Bridge {
	return &Bridge{
		ctx:       ctx,
		wg:        wg,
		config:    cfg,
		converter: converter,
		out:       out,
		logger:    logger.Named("bridge"),
		now:       time.Now,
	}
}

// Name returns the connection the bridge reads from
func (b *Bridge) Name() string {
	if b.config.SerialDevice != "" {
		return b.config.SerialDevice
	}
	return net.JoinHostPort(b.config.Hostname, b.config.Port)
}

// Start launches the read loop
func (b *Bridge) Start() error {
	if b.config.SerialDevice == "" && (b.config.Hostname == "" || b.config.Port == "") {
		return fmt.Errorf("sensor bridge must define either a serial device or hostname+port")
	}

	b.logger.Infow("starting sensor bridge", "source", b.Name())

	b.wg.Add(1)
	go b.run()

	return nil
}

func (b *Bridge) run() {
	defer b.wg.Done()

	for {
		rwc, delay, err := b.connect()
		if err != nil {
			b.logger.Errorw("could not connect to sensor bridge", "source", b.Name(), "error", err)
			if !b.sleep(delay) {
				return
			}
			continue
		}

		// Unblock the scanner when we're cancelled.
		done := make(chan struct{})
		go func() {
			select {
			case <-b.ctx.Done():
				rwc.Close()
			case <-done:
			}
		}()

		err = b.readFrames(rwc)
		close(done)
		rwc.Close()

		if b.ctx.Err() != nil {
			b.logger.Info("cancellation request received, stopping sensor bridge")
			return
		}

		b.logger.Errorw("sensor bridge read failed, reconnecting", "error", err)
		if !b.sleep(delay) {
			return
		}
	}
}

// connect opens the bridge and returns the delay to use before retrying
func (b *Bridge) connect() (io.ReadWriteCloser, time.Duration, error) {
	if b.config.SerialDevice != "" {
		b.logger.Debugf("attempting to open serial port %s at %d baud", b.config.SerialDevice, b.config.Baud)
		rwc, err := serial.OpenPort(&serial.Config{Name: b.config.SerialDevice, Baud: b.config.Baud})
		if err != nil {
			return nil, serialRetryDelay, fmt.Errorf("failed to open serial port %s: %w", b.config.SerialDevice, err)
		}
		return rwc, serialRetryDelay, nil
	}

	conn, err := net.DialTimeout("tcp", b.Name(), 10*time.Second)
	if err != nil {
		return nil, networkRetryDelay, err
	}
	return &deadlineConn{Conn: conn}, networkRetryDelay, nil
}

// sleep waits for d, returning false if the context was cancelled first
func (b *Bridge) sleep(d time.Duration) bool {
	select {
	case <-b.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// readFrames decodes newline-delimited frames until EOF or a read error.
// Malformed frames are logged and skipped.
func (b *Bridge) readFrames(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		sample, err := b.parseFrame(line)
		if err != nil {
			b.logger.Warnw("discarding bad frame", "frame", string(line), "error", err)
			continue
		}

		select {
		case b.out <- sample:
		case <-b.ctx.Done():
			return b.ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

func (b *Bridge) parseFrame(line []byte) (Sample, error) {
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		return Sample{}, fmt.Errorf("error unmarshalling JSON: %w", err)
	}
	if f.ADC == nil {
		return Sample{}, ErrNoSample
	}

	s := Sample{
		Timestamp:   b.now(),
		ADC:         *f.ADC,
		DensityUGM3: b.converter.Density(*f.ADC),
	}

	if f.PressurePa != nil && f.TemperatureC != nil {
		s.HasEnvironment = true
		s.PressurePa = *f.PressurePa
		s.TemperatureC = *f.TemperatureC - b.config.TemperatureOffset()
	}

	return s, nil
}

// deadlineConn pushes the read deadline forward on every read so a silent
// bridge is detected and the connection recycled.
type deadlineConn struct {
	net.Conn
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	c.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	return c.Conn.Read(p)
}
