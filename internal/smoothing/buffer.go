// Package smoothing averages noisy sensor samples over a fixed-size window.
package smoothing

import (
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Buffer is a circular buffer of the most recent samples. It starts out
// filled with zeros, so the mean ramps up from zero until the window has
// seen len(window) samples.
type Buffer struct {
	mu     sync.Mutex
	window []float64
	next   int
	count  int
}

// NewBuffer creates a Buffer holding size samples. Sizes below 1 are raised to 1.
func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{window: make([]float64, size)}
}

// Add replaces the oldest sample with v and returns the arithmetic mean of
// the whole window.
func (b *Buffer) Add(v float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.window[b.next] = v
	b.next = (b.next + 1) % len(b.window)
	if b.count < len(b.window) {
		b.count++
	}

	return stat.Mean(b.window, nil)
}

// Size returns the window length.
func (b *Buffer) Size() int {
	return len(b.window)
}

// Filled reports whether every slot holds a real sample.
func (b *Buffer) Filled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count == len(b.window)
}
