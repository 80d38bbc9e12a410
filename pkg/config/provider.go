package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedBackend is returned when an unknown configuration backend is requested
var ErrUnsupportedBackend = errors.New("unsupported configuration backend")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Monitor     MonitorData      `json:"monitor"`
	Sensor      SensorData       `json:"sensor"`
	LED         LEDData          `json:"led"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// MonitorData holds settings for the sampling loop
type MonitorData struct {
	StationName     string  `json:"station_name,omitempty"`
	StationID       string  `json:"station_id,omitempty"`
	SampleInterval  string  `json:"sample_interval,omitempty"`
	SmoothingWindow int     `json:"smoothing_window,omitempty"`
	LEDDimDivisor   float64 `json:"led_dim_divisor,omitempty"`
}

// SensorData holds configuration for the dust sensor and the bridge that
// digitizes it
type SensorData struct {
	Type             string   `json:"type,omitempty"`
	SerialDevice     string   `json:"serial_device,omitempty"`
	Baud             int      `json:"baud,omitempty"`
	Hostname         string   `json:"hostname,omitempty"`
	Port             string   `json:"port,omitempty"`
	PowerMV          float64  `json:"power_mv,omitempty"`
	ZeroDustMV       float64  `json:"zero_dust_mv,omitempty"`
	VoltageGain      float64  `json:"voltage_gain,omitempty"`
	DensityPerMV     float64  `json:"density_per_mv,omitempty"`
	TemperatureFudge *float64 `json:"temperature_fudge,omitempty"`
}

// TemperatureOffset returns the number of degrees subtracted from the bridge's
// temperature reading. An explicit zero disables the correction.
func (s SensorData) TemperatureOffset() float64 {
	if s.TemperatureFudge == nil {
		return DefaultTemperatureFudge
	}
	return *s.TemperatureFudge
}

// LEDData holds configuration for the NeoPixel ring
type LEDData struct {
	Type         string `json:"type,omitempty"`
	SerialDevice string `json:"serial_device,omitempty"`
	Baud         int    `json:"baud,omitempty"`
	PixelCount   int    `json:"pixel_count,omitempty"`
}

// ControllerData holds the configuration for various controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
	MQTT       *MQTTData       `json:"mqtt,omitempty"`
}

type RESTServerData struct {
	TLSCertPath string `json:"tls_cert_path,omitempty"`
	TLSKeyPath  string `json:"tls_key_path,omitempty"`
	HTTPPort    int    `json:"http_port,omitempty"`
	ListenAddr  string `json:"listen_addr,omitempty"`
}

type MQTTData struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	TopicPrefix string `json:"topic_prefix,omitempty"`
	QoS         int    `json:"qos,omitempty"`
	Retain      bool   `json:"retain,omitempty"`
}

// Defaults taken from the reference hardware: a Waveshare GP2Y1010AU0F dust
// sensor on a 3.3 V ADC and an 8-pixel NeoPixel ring.
const (
	DefaultStationName      = "aqimonitor"
	DefaultSampleInterval   = time.Second
	DefaultSmoothingWindow  = 30
	DefaultLEDDimDivisor    = 2.0
	DefaultPixelCount       = 8
	DefaultBaud             = 115200
	DefaultPowerMV          = 3300.0
	DefaultZeroDustMV       = 400.0
	DefaultVoltageGain      = 11.0
	DefaultDensityPerMV     = 0.2
	DefaultTemperatureFudge = 3.5
	DefaultHTTPPort         = 80
	DefaultListenAddr       = "0.0.0.0"
	DefaultTopicPrefix      = "aqimonitor"
)

// ApplyDefaults fills every unset value with the reference defaults. It
// returns true if a station ID had to be generated.
func (c *ConfigData) ApplyDefaults() bool {
	generatedID := false

	m := &c.Monitor
	if m.StationName == "" {
		m.StationName = DefaultStationName
	}
	if m.StationID == "" {
		m.StationID = uuid.New().String()
		generatedID = true
	}
	if m.SampleInterval == "" {
		m.SampleInterval = DefaultSampleInterval.String()
	}
	if m.SmoothingWindow == 0 {
		m.SmoothingWindow = DefaultSmoothingWindow
	}
	if m.LEDDimDivisor == 0 {
		m.LEDDimDivisor = DefaultLEDDimDivisor
	}

	s := &c.Sensor
	if s.Type == "" {
		s.Type = "simulated"
	}
	if s.Baud == 0 {
		s.Baud = DefaultBaud
	}
	if s.PowerMV == 0 {
		s.PowerMV = DefaultPowerMV
	}
	if s.ZeroDustMV == 0 {
		s.ZeroDustMV = DefaultZeroDustMV
	}
	if s.VoltageGain == 0 {
		s.VoltageGain = DefaultVoltageGain
	}
	if s.DensityPerMV == 0 {
		s.DensityPerMV = DefaultDensityPerMV
	}
	if s.TemperatureFudge == nil {
		fudge := DefaultTemperatureFudge
		s.TemperatureFudge = &fudge
	}

	l := &c.LED
	if l.Type == "" {
		l.Type = "none"
	}
	if l.Baud == 0 {
		l.Baud = DefaultBaud
	}
	if l.PixelCount == 0 {
		l.PixelCount = DefaultPixelCount
	}

	for i := range c.Controllers {
		cc := &c.Controllers[i]
		if cc.RESTServer != nil {
			if cc.RESTServer.HTTPPort == 0 {
				cc.RESTServer.HTTPPort = DefaultHTTPPort
			}
			if cc.RESTServer.ListenAddr == "" {
				cc.RESTServer.ListenAddr = DefaultListenAddr
			}
		}
		if cc.MQTT != nil {
			if cc.MQTT.TopicPrefix == "" {
				cc.MQTT.TopicPrefix = DefaultTopicPrefix
			}
			if cc.MQTT.ClientID == "" {
				cc.MQTT.ClientID = fmt.Sprintf("%s-%s", m.StationName, m.StationID)
			}
		}
	}

	return generatedID
}

// Validate checks for settings that cannot work together
func (c *ConfigData) Validate() error {
	interval, err := time.ParseDuration(c.Monitor.SampleInterval)
	if err != nil {
		return fmt.Errorf("monitor.sample_interval %q is not a duration: %w", c.Monitor.SampleInterval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("monitor.sample_interval must be positive, got %v", interval)
	}
	if c.Monitor.SmoothingWindow < 1 {
		return fmt.Errorf("monitor.smoothing_window must be at least 1, got %d", c.Monitor.SmoothingWindow)
	}
	if c.Monitor.LEDDimDivisor <= 0 {
		return fmt.Errorf("monitor.led_dim_divisor must be positive, got %v", c.Monitor.LEDDimDivisor)
	}

	switch c.Sensor.Type {
	case "serial":
		if c.Sensor.SerialDevice == "" {
			return fmt.Errorf("sensor type serial requires serial_device")
		}
	case "network":
		if c.Sensor.Hostname == "" || c.Sensor.Port == "" {
			return fmt.Errorf("sensor type network requires hostname and port")
		}
	case "simulated":
	default:
		return fmt.Errorf("unknown sensor type: %s", c.Sensor.Type)
	}

	switch c.LED.Type {
	case "adalight":
		if c.LED.SerialDevice == "" {
			return fmt.Errorf("led type adalight requires serial_device")
		}
		if c.LED.PixelCount > 65536 {
			return fmt.Errorf("led.pixel_count %d exceeds the Adalight limit of 65536", c.LED.PixelCount)
		}
	case "none":
	default:
		return fmt.Errorf("unknown led type: %s", c.LED.Type)
	}

	for _, cc := range c.Controllers {
		switch cc.Type {
		case "rest", "restserver":
			if cc.RESTServer == nil {
				return fmt.Errorf("controller %s is missing its rest section", cc.Type)
			}
		case "mqtt":
			if cc.MQTT == nil || cc.MQTT.Broker == "" {
				return fmt.Errorf("controller mqtt requires a broker")
			}
			if cc.MQTT.QoS < 0 || cc.MQTT.QoS > 2 {
				return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", cc.MQTT.QoS)
			}
		default:
			return fmt.Errorf("unknown controller type: %s", cc.Type)
		}
	}

	return nil
}

// SampleIntervalDuration returns the parsed sample interval. Call Validate first.
func (m MonitorData) SampleIntervalDuration() time.Duration {
	d, err := time.ParseDuration(m.SampleInterval)
	if err != nil || d <= 0 {
		return DefaultSampleInterval
	}
	return d
}

// NewProvider returns the provider for the named backend
func NewProvider(backend, filename string) (ConfigProvider, error) {
	switch backend {
	case "yaml":
		return NewYAMLProvider(filename), nil
	case "sqlite":
		provider, err := NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s. Use 'yaml' or 'sqlite'", ErrUnsupportedBackend, backend)
	}
}
