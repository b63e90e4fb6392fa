package spectrum

import (
	"fmt"
	"math"
	"time"
)

const (
	// TraceLengthMin and TraceLengthMax bound the number of trace points
	// the RSA306B spectrum path can produce.
	TraceLengthMin = 101
	TraceLengthMax = 801
)

// Trace is a single acquisition's power-vs-frequency sample sequence.
// Points are evenly spaced between StartFrequency and StopFrequency.
// A trace is immutable once produced; the next acquisition cycle
// supersedes it with a fresh one.
type Trace struct {
	Timestamp      time.Time // When the trace was acquired
	StartFrequency float64   // Hz
	StopFrequency  float64   // Hz
	Points         []float64 // Power per bin, dBm
}

// NewTrace creates a trace over [startFreq, stopFreq] with the given samples.
func NewTrace(startFreq, stopFreq float64, points []float64) *Trace {
	return &Trace{
		Timestamp:      time.Now(),
		StartFrequency: startFreq,
		StopFrequency:  stopFreq,
		Points:         points,
	}
}

// Len returns the number of trace points.
func (t *Trace) Len() int {
	return len(t.Points)
}

// BinWidth returns the frequency spacing between adjacent points in Hz.
func (t *Trace) BinWidth() float64 {
	if len(t.Points) < 2 {
		return 0
	}
	return (t.StopFrequency - t.StartFrequency) / float64(len(t.Points)-1)
}

// FrequencyAt returns the center frequency of bin i in Hz.
func (t *Trace) FrequencyAt(i int) float64 {
	return t.StartFrequency + float64(i)*t.BinWidth()
}

// Validate checks the trace against the acquisition contract: point count
// within [TraceLengthMin, TraceLengthMax] and odd, monotonically increasing
// frequency range and finite power values.
func (t *Trace) Validate() error {
	n := len(t.Points)
	if n < TraceLengthMin || n > TraceLengthMax {
		return fmt.Errorf("trace length %d outside [%d, %d]", n, TraceLengthMin, TraceLengthMax)
	}
	if n%2 == 0 {
		return fmt.Errorf("trace length %d must be odd", n)
	}
	if t.StartFrequency >= t.StopFrequency {
		return fmt.Errorf("invalid frequency range: start=%f, stop=%f", t.StartFrequency, t.StopFrequency)
	}
	for i, p := range t.Points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("non-finite power %f at bin %d", p, i)
		}
	}
	return nil
}
