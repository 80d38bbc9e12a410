package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

const sampleYAML = `
monitor:
  station-name: kitchen
  station-id: 4a2b3c
  sample-interval: 2s
  smoothing-window: 10
  led-dim-divisor: 4
sensor:
  type: serial
  serialdevice: /dev/ttyACM0
  baud: 9600
led:
  type: adalight
  serialdevice: /dev/ttyUSB0
  pixel-count: 12
controllers:
  - type: rest
    rest:
      port: 8080
  - type: mqtt
    mqtt:
      broker: tcp://broker.local:1883
      qos: 1
      retain: true
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	provider := NewYAMLProvider(writeTempFile(t, "config.yaml", sampleYAML))
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Monitor.StationName != "kitchen" || cfg.Monitor.SmoothingWindow != 10 || cfg.Monitor.LEDDimDivisor != 4 {
		t.Errorf("unexpected monitor config: %+v", cfg.Monitor)
	}
	if cfg.Sensor.Type != "serial" || cfg.Sensor.SerialDevice != "/dev/ttyACM0" || cfg.Sensor.Baud != 9600 {
		t.Errorf("unexpected sensor config: %+v", cfg.Sensor)
	}
	if cfg.LED.Type != "adalight" || cfg.LED.PixelCount != 12 {
		t.Errorf("unexpected led config: %+v", cfg.LED)
	}
	if len(cfg.Controllers) != 2 {
		t.Fatalf("expected 2 controllers, got %d", len(cfg.Controllers))
	}
	if cfg.Controllers[0].RESTServer == nil || cfg.Controllers[0].RESTServer.HTTPPort != 8080 {
		t.Errorf("unexpected rest controller: %+v", cfg.Controllers[0])
	}
	if mqtt := cfg.Controllers[1].MQTT; mqtt == nil || mqtt.Broker != "tcp://broker.local:1883" || mqtt.QoS != 1 || !mqtt.Retain {
		t.Errorf("unexpected mqtt controller: %+v", cfg.Controllers[1].MQTT)
	}
	if !provider.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	provider := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := provider.LoadConfig(); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &ConfigData{
		Controllers: []ControllerData{
			{Type: "rest", RESTServer: &RESTServerData{}},
			{Type: "mqtt", MQTT: &MQTTData{Broker: "tcp://localhost:1883"}},
		},
	}

	if generated := cfg.ApplyDefaults(); !generated {
		t.Error("expected a station ID to be generated")
	}
	if cfg.Monitor.StationID == "" {
		t.Error("station ID is still empty")
	}
	if cfg.Monitor.SampleIntervalDuration() != time.Second {
		t.Errorf("sample interval = %v, expected 1s", cfg.Monitor.SampleIntervalDuration())
	}
	if cfg.Monitor.SmoothingWindow != DefaultSmoothingWindow || cfg.Monitor.LEDDimDivisor != DefaultLEDDimDivisor {
		t.Errorf("unexpected monitor defaults: %+v", cfg.Monitor)
	}
	if cfg.Sensor.Type != "simulated" || cfg.Sensor.VoltageGain != 11 || cfg.Sensor.DensityPerMV != 0.2 {
		t.Errorf("unexpected sensor defaults: %+v", cfg.Sensor)
	}
	if cfg.LED.Type != "none" || cfg.LED.PixelCount != 8 {
		t.Errorf("unexpected led defaults: %+v", cfg.LED)
	}
	if rest := cfg.Controllers[0].RESTServer; rest.HTTPPort != 80 || rest.ListenAddr != "0.0.0.0" {
		t.Errorf("unexpected rest defaults: %+v", rest)
	}
	if mqtt := cfg.Controllers[1].MQTT; mqtt.TopicPrefix != DefaultTopicPrefix || mqtt.ClientID == "" {
		t.Errorf("unexpected mqtt defaults: %+v", mqtt)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config should validate: %v", err)
	}

	again := &ConfigData{Monitor: MonitorData{StationID: "fixed"}}
	if again.ApplyDefaults() {
		t.Error("no station ID should be generated when one is configured")
	}
}

func TestTemperatureFudge(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected float64
	}{
		{"absent uses default", "sensor:\n  type: simulated\n", DefaultTemperatureFudge},
		{"explicit zero disables", "sensor:\n  temperature-fudge: 0\n", 0},
		{"explicit value", "sensor:\n  temperature-fudge: 1.25\n", 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseYAML([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("parseYAML failed: %v", err)
			}
			cfg.ApplyDefaults()
			if got := cfg.Sensor.TemperatureOffset(); got != tt.expected {
				t.Errorf("TemperatureOffset() = %v, expected %v", got, tt.expected)
			}

			provider, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
			if err != nil {
				t.Fatalf("NewSQLiteProvider failed: %v", err)
			}
			defer provider.Close()
			if err := provider.SaveConfig(cfg); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}
			loaded, err := provider.LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if got := loaded.Sensor.TemperatureOffset(); got != tt.expected {
				t.Errorf("stored TemperatureOffset() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigData)
	}{
		{"bad interval", func(c *ConfigData) { c.Monitor.SampleInterval = "soon" }},
		{"negative interval", func(c *ConfigData) { c.Monitor.SampleInterval = "-1s" }},
		{"negative divisor", func(c *ConfigData) { c.Monitor.LEDDimDivisor = -2 }},
		{"serial sensor without device", func(c *ConfigData) { c.Sensor.Type = "serial" }},
		{"network sensor without port", func(c *ConfigData) {
			c.Sensor.Type = "network"
			c.Sensor.Hostname = "bridge.local"
		}},
		{"unknown sensor", func(c *ConfigData) { c.Sensor.Type = "laser" }},
		{"adalight without device", func(c *ConfigData) { c.LED.Type = "adalight" }},
		{"unknown controller", func(c *ConfigData) {
			c.Controllers = append(c.Controllers, ControllerData{Type: "pwsweather"})
		}},
		{"mqtt without broker", func(c *ConfigData) {
			c.Controllers = append(c.Controllers, ControllerData{Type: "mqtt", MQTT: &MQTTData{}})
		}},
		{"mqtt bad qos", func(c *ConfigData) {
			c.Controllers = append(c.Controllers, ControllerData{Type: "mqtt", MQTT: &MQTTData{Broker: "tcp://x:1883", QoS: 3}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ConfigData{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "config.db")

	provider, err := NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteProvider failed: %v", err)
	}
	defer provider.Close()

	empty, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig on empty database failed: %v", err)
	}
	if empty.Sensor.Type != "" || len(empty.Controllers) != 0 {
		t.Errorf("expected empty config, got %+v", empty)
	}

	source, err := parseYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parseYAML failed: %v", err)
	}
	if err := provider.SaveConfig(source); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Monitor != source.Monitor {
		t.Errorf("monitor mismatch: got %+v, expected %+v", loaded.Monitor, source.Monitor)
	}
	if !reflect.DeepEqual(loaded.Sensor, source.Sensor) {
		t.Errorf("sensor mismatch: got %+v, expected %+v", loaded.Sensor, source.Sensor)
	}
	if loaded.LED != source.LED {
		t.Errorf("led mismatch: got %+v, expected %+v", loaded.LED, source.LED)
	}
	if len(loaded.Controllers) != 2 || *loaded.Controllers[1].MQTT != *source.Controllers[1].MQTT {
		t.Errorf("controller mismatch: got %+v", loaded.Controllers)
	}

	// Reopening must not re-run the schema migration.
	provider.Close()
	reopened, err := NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	defer reopened.Close()
	if cfg, err := reopened.LoadConfig(); err != nil || cfg.Monitor.StationName != "kitchen" {
		t.Errorf("reopened config = %+v, err = %v", cfg, err)
	}
}

func TestNewProviderRejectsUnknownBackend(t *testing.T) {
	if _, err := NewProvider("etcd", "config"); !errors.Is(err, ErrUnsupportedBackend) {
		t.Errorf("expected ErrUnsupportedBackend, got %v", err)
	}
}
