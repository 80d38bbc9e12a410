package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/chrissnell/aqimonitor/pkg/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationTable tracks the applied configuration schema version
const MigrationTable = "schema_migrations"

// NewSchemaMigrator returns a migrator for the configuration schema
func NewSchemaMigrator(db *sql.DB) *migrate.Migrator {
	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic("failed to create migrations sub-filesystem: " + err.Error())
	}
	return migrate.NewMigrator(db, migrations, MigrationTable)
}

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens (or creates) a SQLite configuration database and
// brings its schema up to date
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := NewSchemaMigrator(db).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	if err := s.loadMonitor(&config.Monitor); err != nil {
		return nil, fmt.Errorf("failed to load monitor config: %w", err)
	}
	if err := s.loadSensor(&config.Sensor); err != nil {
		return nil, fmt.Errorf("failed to load sensor config: %w", err)
	}
	if err := s.loadLED(&config.LED); err != nil {
		return nil, fmt.Errorf("failed to load led config: %w", err)
	}

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	return config, nil
}

func (s *SQLiteProvider) loadMonitor(m *MonitorData) error {
	var name, id, interval sql.NullString
	var window sql.NullInt64
	var divisor sql.NullFloat64

	err := s.db.QueryRow(`
		SELECT station_name, station_id, sample_interval, smoothing_window, led_dim_divisor
		FROM monitor_config WHERE id = 1
	`).Scan(&name, &id, &interval, &window, &divisor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	m.StationName = name.String
	m.StationID = id.String
	m.SampleInterval = interval.String
	m.SmoothingWindow = int(window.Int64)
	m.LEDDimDivisor = divisor.Float64
	return nil
}

func (s *SQLiteProvider) loadSensor(sd *SensorData) error {
	var sensorType, serialDevice, hostname, port sql.NullString
	var baud sql.NullInt64
	var powerMV, zeroDustMV, gain, densityPerMV, fudge sql.NullFloat64

	err := s.db.QueryRow(`
		SELECT type, serial_device, baud, hostname, port,
		       power_mv, zero_dust_mv, voltage_gain, density_per_mv, temperature_fudge
		FROM sensor_config WHERE id = 1
	`).Scan(&sensorType, &serialDevice, &baud, &hostname, &port,
		&powerMV, &zeroDustMV, &gain, &densityPerMV, &fudge)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	sd.Type = sensorType.String
	sd.SerialDevice = serialDevice.String
	sd.Baud = int(baud.Int64)
	sd.Hostname = hostname.String
	sd.Port = port.String
	sd.PowerMV = powerMV.Float64
	sd.ZeroDustMV = zeroDustMV.Float64
	sd.VoltageGain = gain.Float64
	sd.DensityPerMV = densityPerMV.Float64
	if fudge.Valid {
		sd.TemperatureFudge = &fudge.Float64
	}
	return nil
}

func (s *SQLiteProvider) loadLED(l *LEDData) error {
	var ledType, serialDevice sql.NullString
	var baud, pixels sql.NullInt64

	err := s.db.QueryRow(`
		SELECT type, serial_device, baud, pixel_count FROM led_config WHERE id = 1
	`).Scan(&ledType, &serialDevice, &baud, &pixels)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	l.Type = ledType.String
	l.SerialDevice = serialDevice.String
	l.Baud = int(baud.Int64)
	l.PixelCount = int(pixels.Int64)
	return nil
}

// GetControllers returns the enabled controller configurations
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	rows, err := s.db.Query(`
		SELECT controller_type,
		       rest_cert, rest_key, rest_port, rest_listen_addr,
		       mqtt_broker, mqtt_client_id, mqtt_username, mqtt_password,
		       mqtt_topic_prefix, mqtt_qos, mqtt_retain
		FROM controller_configs
		WHERE enabled = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var controller ControllerData
		var restCert, restKey, restListenAddr sql.NullString
		var restPort sql.NullInt64
		var broker, clientID, username, password, prefix sql.NullString
		var qos sql.NullInt64
		var retain sql.NullBool

		err := rows.Scan(&controller.Type,
			&restCert, &restKey, &restPort, &restListenAddr,
			&broker, &clientID, &username, &password,
			&prefix, &qos, &retain,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		switch controller.Type {
		case "rest", "restserver":
			controller.RESTServer = &RESTServerData{
				TLSCertPath: restCert.String,
				TLSKeyPath:  restKey.String,
				HTTPPort:    int(restPort.Int64),
				ListenAddr:  restListenAddr.String,
			}
		case "mqtt":
			controller.MQTT = &MQTTData{
				Broker:      broker.String,
				ClientID:    clientID.String,
				Username:    username.String,
				Password:    password.String,
				TopicPrefix: prefix.String,
				QoS:         int(qos.Int64),
				Retain:      retain.Bool,
			}
		}

		controllers = append(controllers, controller)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m := configData.Monitor
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO monitor_config (
			id, station_name, station_id, sample_interval, smoothing_window, led_dim_divisor
		) VALUES (1, ?, ?, ?, ?, ?)
	`, nullString(m.StationName), nullString(m.StationID), nullString(m.SampleInterval),
		m.SmoothingWindow, m.LEDDimDivisor)
	if err != nil {
		return fmt.Errorf("failed to save monitor config: %w", err)
	}

	sd := configData.Sensor
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO sensor_config (
			id, type, serial_device, baud, hostname, port,
			power_mv, zero_dust_mv, voltage_gain, density_per_mv, temperature_fudge
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, nullString(sd.Type), nullString(sd.SerialDevice), sd.Baud, nullString(sd.Hostname), nullString(sd.Port),
		sd.PowerMV, sd.ZeroDustMV, sd.VoltageGain, sd.DensityPerMV, nullFloat(sd.TemperatureFudge))
	if err != nil {
		return fmt.Errorf("failed to save sensor config: %w", err)
	}

	l := configData.LED
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO led_config (id, type, serial_device, baud, pixel_count)
		VALUES (1, ?, ?, ?, ?)
	`, nullString(l.Type), nullString(l.SerialDevice), l.Baud, l.PixelCount)
	if err != nil {
		return fmt.Errorf("failed to save led config: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM controller_configs"); err != nil {
		return fmt.Errorf("failed to clear existing controllers: %w", err)
	}
	for _, controller := range configData.Controllers {
		if err := insertController(tx, &controller); err != nil {
			return fmt.Errorf("failed to insert controller %s: %w", controller.Type, err)
		}
	}

	return tx.Commit()
}

func insertController(tx *sql.Tx, controller *ControllerData) error {
	var restCert, restKey, restListenAddr sql.NullString
	var restPort sql.NullInt64
	var broker, clientID, username, password, prefix sql.NullString
	var qos sql.NullInt64
	var retain sql.NullBool

	if controller.RESTServer != nil {
		restCert = nullString(controller.RESTServer.TLSCertPath)
		restKey = nullString(controller.RESTServer.TLSKeyPath)
		restPort = sql.NullInt64{Int64: int64(controller.RESTServer.HTTPPort), Valid: controller.RESTServer.HTTPPort != 0}
		restListenAddr = nullString(controller.RESTServer.ListenAddr)
	}

	if controller.MQTT != nil {
		broker = nullString(controller.MQTT.Broker)
		clientID = nullString(controller.MQTT.ClientID)
		username = nullString(controller.MQTT.Username)
		password = nullString(controller.MQTT.Password)
		prefix = nullString(controller.MQTT.TopicPrefix)
		qos = sql.NullInt64{Int64: int64(controller.MQTT.QoS), Valid: true}
		retain = sql.NullBool{Bool: controller.MQTT.Retain, Valid: true}
	}

	_, err := tx.Exec(`
		INSERT INTO controller_configs (
			controller_type, enabled,
			rest_cert, rest_key, rest_port, rest_listen_addr,
			mqtt_broker, mqtt_client_id, mqtt_username, mqtt_password,
			mqtt_topic_prefix, mqtt_qos, mqtt_retain
		) VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, controller.Type,
		restCert, restKey, restPort, restListenAddr,
		broker, clientID, username, password, prefix, qos, retain,
	)
	return err
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
