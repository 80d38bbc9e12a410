package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/aqimonitor/internal/controllers/mqtt"
	"github.com/chrissnell/aqimonitor/internal/controllers/restserver"
	"github.com/chrissnell/aqimonitor/internal/types"
	"github.com/chrissnell/aqimonitor/pkg/config"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// ReadingProvider is what controllers read from. The monitor implements it.
type ReadingProvider interface {
	Latest() (types.Reading, bool)
	Subscribe(buf int) <-chan types.Reading
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, c *config.ConfigData, readings ReadingProvider, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		config:      c,
		readings:    readings,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	// Create controllers based on configuration
	for _, con := range c.Controllers {
		controller, err := cm.createController(con)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	config      *config.ConfigData
	readings    ReadingProvider
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// createController creates a controller based on the controller configuration
func (cm *controllerManager) createController(cc config.ControllerData) (Controller, error) {
	switch cc.Type {
	case "restserver", "rest":
		if cc.RESTServer == nil {
			return nil, fmt.Errorf("controller %s is missing its rest section", cc.Type)
		}
		return restserver.NewController(cm.ctx, cm.wg, cm.config, *cc.RESTServer, cm.readings, cm.logger)
	case "mqtt":
		if cc.MQTT == nil {
			return nil, fmt.Errorf("controller mqtt is missing its mqtt section")
		}
		return mqtt.NewController(cm.ctx, cm.wg, cm.config, *cc.MQTT, cm.readings, cm.logger)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}
