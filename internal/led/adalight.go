package led

import (
	"fmt"
	"io"
	"sync"

	"github.com/chrissnell/aqimonitor/pkg/aqi"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

// MaxPixels is the largest ring an Adalight header can address.
const MaxPixels = 65536

// Adalight writes frames in the Adalight serial protocol understood by most
// NeoPixel bridge firmware.
type Adalight struct {
	mu     sync.Mutex
	w      io.WriteCloser
	pixels int
	frame  []byte
	logger *zap.SugaredLogger
}

// OpenAdalight opens the serial device and returns a ring of n pixels.
func OpenAdalight(device string, baud, n int, logger *zap.SugaredLogger) (*Adalight, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open led serial port %s: %w", device, err)
	}

	a, err := NewAdalight(port, n, logger)
	if err != nil {
		port.Close()
		return nil, err
	}

	a.logger.Infow("opened led ring", "device", device, "pixels", n)
	return a, nil
}

// NewAdalight wraps an already open writer.
func NewAdalight(w io.WriteCloser, n int, logger *zap.SugaredLogger) (*Adalight, error) {
	if n < 1 || n > MaxPixels {
		return nil, fmt.Errorf("pixel count must be between 1 and %d, got %d", MaxPixels, n)
	}

	return &Adalight{
		w:      w,
		pixels: n,
		frame:  make([]byte, 6+n*3),
		logger: logger.Named("led"),
	}, nil
}

// SetColor fills the ring with c
func (a *Adalight) SetColor(c aqi.RGB) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	encodeFrame(a.frame, a.pixels, c)
	if _, err := a.w.Write(a.frame); err != nil {
		return fmt.Errorf("error writing led frame: %w", err)
	}
	return nil
}

func (a *Adalight) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.w.Close()
}

// encodeFrame writes the header and n copies of c into buf, which must hold
// 6+3n bytes. The header carries n-1 big-endian with a checksum byte.
func encodeFrame(buf []byte, n int, c aqi.RGB) {
	hi := byte((n - 1) >> 8)
	lo := byte((n - 1) & 0xff)

	buf[0], buf[1], buf[2] = 'A', 'd', 'a'
	buf[3], buf[4], buf[5] = hi, lo, hi^lo^0x55

	rgb := c.Bytes()
	for i := 0; i < n; i++ {
		copy(buf[6+i*3:], rgb[:])
	}
}
