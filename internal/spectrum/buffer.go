package spectrum

import (
	"fmt"
	"sync"
)

// NoSignalFloor is the power level max-hold bins are reset to, low enough
// that any real reading replaces it on the first update.
const NoSignalFloor = -150.0

// TraceBuffer accumulates a running element-wise maximum (max-hold) across
// traces of a fixed length. The first update after a clear assigns the trace
// directly; subsequent updates keep the higher of the held and new value per
// bin. It is safe for concurrent use, although the analysis engine mutates it
// from a single goroutine and hands read-only snapshots to consumers.
type TraceBuffer struct {
	mu      sync.Mutex
	length  int
	maxHold []float64
	primed  bool
}

// NewTraceBuffer creates a max-hold buffer for traces of the given length.
func NewTraceBuffer(length int) (*TraceBuffer, error) {
	if length < TraceLengthMin || length > TraceLengthMax {
		return nil, fmt.Errorf("invalid trace length: %d", length)
	}
	return &TraceBuffer{
		length:  length,
		maxHold: make([]float64, length),
	}, nil
}

// Update folds a new trace into the max-hold accumulation. The trace length
// must match the configured length.
func (b *TraceBuffer) Update(t *Trace) error {
	if t == nil {
		return fmt.Errorf("cannot update from nil trace")
	}
	if len(t.Points) != b.length {
		return fmt.Errorf("trace length %d does not match buffer length %d", len(t.Points), b.length)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.primed {
		copy(b.maxHold, t.Points)
		b.primed = true
		return nil
	}
	for i, p := range t.Points {
		if p > b.maxHold[i] {
			b.maxHold[i] = p
		}
	}
	return nil
}

// Snapshot returns a copy of the current max-hold values. Before the first
// update all bins read NoSignalFloor.
func (b *TraceBuffer) Snapshot() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]float64, b.length)
	if !b.primed {
		for i := range out {
			out[i] = NoSignalFloor
		}
		return out
	}
	copy(out, b.maxHold)
	return out
}

// Primed reports whether at least one trace has been folded in since the
// last clear.
func (b *TraceBuffer) Primed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.primed
}

// Clear resets the accumulation. The next update assigns directly.
func (b *TraceBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.primed = false
	clear(b.maxHold)
}

// Length returns the configured trace length.
func (b *TraceBuffer) Length() int {
	return b.length
}
