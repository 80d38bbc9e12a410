package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/aqimonitor/internal/led"
	"github.com/chrissnell/aqimonitor/internal/managers"
	"github.com/chrissnell/aqimonitor/internal/monitor"
	"github.com/chrissnell/aqimonitor/pkg/aqi"
	"github.com/chrissnell/aqimonitor/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger

	// newRing is replaced in tests
	newRing func(config.LEDData, *zap.SugaredLogger) (led.Ring, error)
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config:  cfg,
		logger:  logger,
		newRing: led.NewRing,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	if a.config.ApplyDefaults() {
		a.logger.Warnf("monitor.station-id not set; generated %s for this run", a.config.Monitor.StationID)
	}
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ring, err := a.newRing(a.config.LED, a.logger)
	if err != nil {
		return err
	}
	defer ring.Close()
	a.setStatus(ring, led.StartupColor)

	mon := monitor.New(ctx, &wg, a.config.Monitor, ring, a.logger)

	sm, err := managers.NewSensorManager(ctx, &wg, a.config, mon.Samples(), a.logger)
	if err != nil {
		return err
	}

	cm, err := managers.NewControllerManager(ctx, &wg, a.config, mon, a.logger)
	if err != nil {
		return err
	}

	mon.Start()
	if err := cm.StartControllers(); err != nil {
		cancel()
		wg.Wait()
		return err
	}
	if err := sm.StartSensor(); err != nil {
		cancel()
		wg.Wait()
		return err
	}
	a.setStatus(ring, led.ReadyColor)

	a.logger.Infow("Application started successfully", "station", a.config.Monitor.StationName, "station_id", a.config.Monitor.StationID)

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()

	a.setStatus(ring, led.OffColor)
	a.logger.Info("shutdown complete")

	return nil
}

func (a *App) setStatus(ring led.Ring, c aqi.RGB) {
	if err := ring.SetColor(c); err != nil {
		a.logger.Warnf("error setting led status color: %v", err)
	}
}
