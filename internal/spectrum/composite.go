package spectrum

import (
	"fmt"
	"math"
	"sync"
)

// Segment is one step of a band sweep plan: a single acquisition window
// centered on CenterFrequency with the plan's span.
type Segment struct {
	CenterFrequency float64 // Hz
	Label           string
}

// SweepPlan describes how a wide frequency range is covered by a sequence of
// overlapping acquisition segments. The RSA306B captures at most 40 MHz per
// acquisition, so surveying the full 2.4-5.6 GHz Wi-Fi range takes a rotation
// of narrower sweeps with a step smaller than the span to avoid gaps.
type SweepPlan struct {
	StartFrequency float64 // Hz, first segment center
	StopFrequency  float64 // Hz, exclusive upper bound for segment centers
	Span           float64 // Hz per segment
	Step           float64 // Hz between segment centers, must not exceed Span
}

// Segments expands the plan into its acquisition segments in frequency order.
func (p SweepPlan) Segments() ([]Segment, error) {
	if p.Span <= 0 || p.Step <= 0 {
		return nil, fmt.Errorf("invalid sweep plan: span=%f, step=%f", p.Span, p.Step)
	}
	if p.Step > p.Span {
		return nil, fmt.Errorf("sweep plan step %f exceeds span %f, coverage would have gaps", p.Step, p.Span)
	}
	if p.StartFrequency >= p.StopFrequency {
		return nil, fmt.Errorf("invalid sweep range: start=%f, stop=%f", p.StartFrequency, p.StopFrequency)
	}

	var segments []Segment
	for cf := p.StartFrequency; cf < p.StopFrequency; cf += p.Step {
		segments = append(segments, Segment{
			CenterFrequency: cf,
			Label:           fmt.Sprintf("%.3f GHz", cf/1e9),
		})
	}
	return segments, nil
}

// CompositeBuffer merges per-segment traces into a single full-range live
// trace with an accompanying max-hold, mapping each segment bin onto the
// nearest composite bin. Segments may arrive in any rotation order.
type CompositeBuffer struct {
	mu             sync.Mutex
	startFrequency float64
	stopFrequency  float64
	binWidth       float64
	live           []float64
	maxHold        []float64
}

// NewCompositeBuffer allocates a composite buffer with binCount bins covering
// the plan's full range, span margins included. All bins start at
// NoSignalFloor.
func NewCompositeBuffer(plan SweepPlan, binCount int) (*CompositeBuffer, error) {
	if binCount < 2 {
		return nil, fmt.Errorf("invalid composite bin count: %d", binCount)
	}
	if _, err := plan.Segments(); err != nil {
		return nil, err
	}

	start := plan.StartFrequency - plan.Span/2
	stop := plan.StopFrequency + plan.Span/2

	c := CompositeBuffer{
		startFrequency: start,
		stopFrequency:  stop,
		binWidth:       (stop - start) / float64(binCount-1),
		live:           make([]float64, binCount),
		maxHold:        make([]float64, binCount),
	}
	for i := range c.live {
		c.live[i] = NoSignalFloor
		c.maxHold[i] = NoSignalFloor
	}
	return &c, nil
}

// Merge folds a segment trace into the composite live and max-hold arrays.
// holdEnabled controls whether max-hold accumulation still applies; the live
// trace is always updated.
func (c *CompositeBuffer) Merge(t *Trace, holdEnabled bool) error {
	if t == nil {
		return fmt.Errorf("cannot merge nil trace")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, p := range t.Points {
		idx := c.binIndex(t.FrequencyAt(i))
		if idx < 0 || idx >= len(c.live) {
			continue // segment margin outside the composite range
		}
		c.live[idx] = p
		if holdEnabled && p > c.maxHold[idx] {
			c.maxHold[idx] = p
		}
	}
	return nil
}

// Snapshot returns copies of the composite live and max-hold arrays.
func (c *CompositeBuffer) Snapshot() (live, maxHold []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	live = make([]float64, len(c.live))
	maxHold = make([]float64, len(c.maxHold))
	copy(live, c.live)
	copy(maxHold, c.maxHold)
	return live, maxHold
}

// FrequencyAt returns the center frequency of composite bin i in Hz.
func (c *CompositeBuffer) FrequencyAt(i int) float64 {
	return c.startFrequency + float64(i)*c.binWidth
}

// Clear resets both arrays to NoSignalFloor.
func (c *CompositeBuffer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.live {
		c.live[i] = NoSignalFloor
		c.maxHold[i] = NoSignalFloor
	}
}

func (c *CompositeBuffer) binIndex(freq float64) int {
	return int(math.Round((freq - c.startFrequency) / c.binWidth))
}
