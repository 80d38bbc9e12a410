// Package led drives the NeoPixel ring that shows the current air quality.
package led

import (
	"fmt"

	"github.com/chrissnell/aqimonitor/pkg/aqi"
	"github.com/chrissnell/aqimonitor/pkg/config"
	"go.uber.org/zap"
)

// Status colors shown while the monitor is not displaying a reading.
var (
	StartupColor = aqi.RGB{R: 0, G: 0, B: 32}
	ReadyColor   = aqi.RGB{R: 0, G: 0, B: 255}
	OffColor     = aqi.RGB{R: 0, G: 0, B: 0}
)

// Ring sets every pixel of an LED ring to a single color.
type Ring interface {
	SetColor(c aqi.RGB) error
	Close() error
}

// NewRing creates the ring named by cfg.Type.
func NewRing(cfg config.LEDData, logger *zap.SugaredLogger) (Ring, error) {
	switch cfg.Type {
	case "adalight":
		return OpenAdalight(cfg.SerialDevice, cfg.Baud, cfg.PixelCount, logger)
	case "none", "":
		return NewDiscard(logger), nil
	default:
		return nil, fmt.Errorf("unknown led type: %s", cfg.Type)
	}
}

// Discard is a Ring for hosts without LEDs.
type Discard struct {
	logger *zap.SugaredLogger
}

func NewDiscard(logger *zap.SugaredLogger) *Discard {
	return &Discard{logger: logger.Named("led")}
}

func (d *Discard) SetColor(c aqi.RGB) error {
	d.logger.Debugf("led color %s", c.Hex())
	return nil
}

func (d *Discard) Close() error {
	return nil
}
