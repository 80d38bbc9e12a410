package sensor

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Simulated produces a slow random walk of ADC readings so the rest of the
// monitor can be exercised without hardware.
type Simulated struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	converter Waveshare
	interval  time.Duration
	out       chan<- Sample
	logger    *zap.SugaredLogger
	rng       *rand.Rand
	adc       float64
}

// NewSimulated creates a simulated source that emits one sample per interval.
func NewSimulated(ctx context.Context, wg *sync.WaitGroup, converter Waveshare, interval time.Duration, out chan<- Sample, logger *zap.SugaredLogger) *Simulated {
	return &Simulated{
		ctx:       ctx,
		wg:        wg,
		converter: converter,
		interval:  interval,
		out:       out,
		logger:    logger.Named("simulated"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		adc:       900,
	}
}

// Name returns the source name
func (s *Simulated) Name() string {
	return "simulated"
}

// Start launches the generator
func (s *Simulated) Start() error {
	s.logger.Infow("starting simulated dust sensor", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("simulated sensor stopped")
				return
			case t := <-ticker.C:
				select {
				case s.out <- s.next(t):
				case <-s.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// next advances the walk and builds a sample
func (s *Simulated) next(t time.Time) Sample {
	s.adc += s.rng.NormFloat64() * 25
	if s.adc < 0 {
		s.adc = 0
	}
	if s.adc > 4000 {
		s.adc = 4000
	}

	adc := uint16(s.adc)
	return Sample{
		Timestamp:      t,
		ADC:            adc,
		DensityUGM3:    s.converter.Density(adc),
		HasEnvironment: true,
		PressurePa:     101325 + s.rng.NormFloat64()*50,
		TemperatureC:   21 + s.rng.NormFloat64()*0.2,
	}
}
