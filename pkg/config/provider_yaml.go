package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	return parseYAML(cfgFile)
}

func parseYAML(raw []byte) (*ConfigData, error) {
	var yamlConfig ConfigYAML
	if err := yaml.Unmarshal(raw, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Monitor: MonitorData{
			StationName:     yamlConfig.Monitor.StationName,
			StationID:       yamlConfig.Monitor.StationID,
			SampleInterval:  yamlConfig.Monitor.SampleInterval,
			SmoothingWindow: yamlConfig.Monitor.SmoothingWindow,
			LEDDimDivisor:   yamlConfig.Monitor.LEDDimDivisor,
		},
		Sensor: SensorData{
			Type:             yamlConfig.Sensor.Type,
			SerialDevice:     yamlConfig.Sensor.SerialDevice,
			Baud:             yamlConfig.Sensor.Baud,
			Hostname:         yamlConfig.Sensor.Hostname,
			Port:             yamlConfig.Sensor.Port,
			PowerMV:          yamlConfig.Sensor.PowerMV,
			ZeroDustMV:       yamlConfig.Sensor.ZeroDustMV,
			VoltageGain:      yamlConfig.Sensor.VoltageGain,
			DensityPerMV:     yamlConfig.Sensor.DensityPerMV,
			TemperatureFudge: yamlConfig.Sensor.TemperatureFudge,
		},
		LED: LEDData{
			Type:         yamlConfig.LED.Type,
			SerialDevice: yamlConfig.LED.SerialDevice,
			Baud:         yamlConfig.LED.Baud,
			PixelCount:   yamlConfig.LED.PixelCount,
		},
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				TLSCertPath: controller.RESTServer.Cert,
				TLSKeyPath:  controller.RESTServer.Key,
				HTTPPort:    controller.RESTServer.Port,
				ListenAddr:  controller.RESTServer.ListenAddr,
			}
		}

		if controller.MQTT != nil {
			config.Controllers[i].MQTT = &MQTTData{
				Broker:      controller.MQTT.Broker,
				ClientID:    controller.MQTT.ClientID,
				Username:    controller.MQTT.Username,
				Password:    controller.MQTT.Password,
				TopicPrefix: controller.MQTT.TopicPrefix,
				QoS:         controller.MQTT.QoS,
				Retain:      controller.MQTT.Retain,
			}
		}
	}

	return config, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with the dashed key names used in config files
type ConfigYAML struct {
	Monitor     MonitorYAML      `yaml:"monitor"`
	Sensor      SensorYAML       `yaml:"sensor"`
	LED         LEDYAML          `yaml:"led"`
	Controllers []ControllerYAML `yaml:"controllers,omitempty"`
}

type MonitorYAML struct {
	StationName     string  `yaml:"station-name,omitempty"`
	StationID       string  `yaml:"station-id,omitempty"`
	SampleInterval  string  `yaml:"sample-interval,omitempty"`
	SmoothingWindow int     `yaml:"smoothing-window,omitempty"`
	LEDDimDivisor   float64 `yaml:"led-dim-divisor,omitempty"`
}

type SensorYAML struct {
	Type             string   `yaml:"type,omitempty"`
	SerialDevice     string   `yaml:"serialdevice,omitempty"`
	Baud             int      `yaml:"baud,omitempty"`
	Hostname         string   `yaml:"hostname,omitempty"`
	Port             string   `yaml:"port,omitempty"`
	PowerMV          float64  `yaml:"power-mv,omitempty"`
	ZeroDustMV       float64  `yaml:"zero-dust-mv,omitempty"`
	VoltageGain      float64  `yaml:"voltage-gain,omitempty"`
	DensityPerMV     float64  `yaml:"density-per-mv,omitempty"`
	TemperatureFudge *float64 `yaml:"temperature-fudge,omitempty"`
}

type LEDYAML struct {
	Type         string `yaml:"type,omitempty"`
	SerialDevice string `yaml:"serialdevice,omitempty"`
	Baud         int    `yaml:"baud,omitempty"`
	PixelCount   int    `yaml:"pixel-count,omitempty"`
}

type ControllerYAML struct {
	Type       string          `yaml:"type,omitempty"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
	MQTT       *MQTTYAML       `yaml:"mqtt,omitempty"`
}

type RESTServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
}

type MQTTYAML struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client-id,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic-prefix,omitempty"`
	QoS         int    `yaml:"qos,omitempty"`
	Retain      bool   `yaml:"retain,omitempty"`
}
