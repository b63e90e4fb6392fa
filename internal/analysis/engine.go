package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
	"github.com/YehoshuaShamir/RSA-API/internal/wifi"
)

var (
	// ErrTraceShapeMismatch is returned when a trace's point count does not
	// match the engine's configured trace length. The engine does not
	// resample; the previous result is retained unchanged.
	ErrTraceShapeMismatch = errors.New("trace shape mismatch")

	// ErrAnalysisFailed is returned for traces the engine must reject
	// rather than propagate, such as non-finite power values.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// ChannelPeak is the peak power observed within one channel's bounds during
// a cycle.
type ChannelPeak struct {
	Channel wifi.Channel
	Power   float64 // dBm
}

// Result is the record produced by one analysis cycle. It is handed to the
// display layer as a read-only snapshot.
type Result struct {
	Timestamp    time.Time
	Trace        *spectrum.Trace
	MaxHold      []float64 // Snapshot of the max-hold accumulation
	Peaks        []Peak    // Frequency ascending
	Violations   []Violation
	ChannelPeaks []ChannelPeak // Per-channel peak power, frequency ascending
}

// WithBand sets the band used for per-channel peak summaries.
func WithBand(band wifi.Band) func(*Engine) {
	return func(e *Engine) {
		e.band = band
	}
}

// WithPeakDetector overrides the engine's peak detector.
func WithPeakDetector(d *PeakDetector) func(*Engine) {
	return func(e *Engine) {
		e.detector = d
	}
}

// WithMaskEvaluator overrides the engine's mask evaluator.
func WithMaskEvaluator(m *MaskEvaluator) func(*Engine) {
	return func(e *Engine) {
		e.evaluator = m
	}
}

// WithHistoryCapacity overrides the peak history capacity.
func WithHistoryCapacity(capacity int) func(*Engine) {
	return func(e *Engine) {
		e.history = newPeakHistory(capacity)
	}
}

// Engine orchestrates peak detection and mask evaluation per acquisition
// cycle, maintains the max-hold accumulation and a bounded history of
// detected peaks. All engine state is owned by the instance; callers hold a
// reference rather than sharing process-wide globals. The engine is mutated
// from a single logical thread (the acquisition loop); consumers read the
// snapshots it hands out.
type Engine struct {
	traceLength int
	band        wifi.Band
	table       *wifi.Table
	detector    *PeakDetector
	evaluator   *MaskEvaluator

	mu         sync.Mutex
	maxHold    *spectrum.TraceBuffer
	history    *peakHistory
	lastResult *Result
}

// NewEngine creates an engine for traces of the given length.
func NewEngine(traceLength int, options ...func(*Engine)) (*Engine, error) {
	maxHold, err := spectrum.NewTraceBuffer(traceLength)
	if err != nil {
		return nil, fmt.Errorf("creating max-hold buffer: %w", err)
	}

	e := Engine{
		traceLength: traceLength,
		band:        wifi.Band24GHz,
		table:       wifi.NewTable(),
		detector:    NewPeakDetector(),
		evaluator:   NewMaskEvaluator(),
		maxHold:     maxHold,
		history:     newPeakHistory(HistoryCapacity),
	}
	for _, option := range options {
		option(&e)
	}
	return &e, nil
}

// Analyze runs one acquisition cycle over a trace: max-hold update, peak
// detection, mask evaluation per distinct assigned channel, history append.
// On failure no engine state changes and the previous result stays current.
func (e *Engine) Analyze(t *spectrum.Trace) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil trace", ErrAnalysisFailed)
	}
	if len(t.Points) != e.traceLength {
		return nil, fmt.Errorf("%w: got %d points, configured %d", ErrTraceShapeMismatch, len(t.Points), e.traceLength)
	}
	for i, p := range t.Points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: non-finite power %f at bin %d", ErrAnalysisFailed, p, i)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.maxHold.Update(t); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, err)
	}

	peaks := e.detector.DetectPeaks(t)

	// One mask evaluation per distinct assigned channel; unassigned peaks
	// contribute none.
	var violations []Violation
	seen := make(map[int]bool)
	for _, p := range peaks {
		if !p.Channel.Valid() || seen[p.Channel.Number] {
			continue
		}
		seen[p.Channel.Number] = true

		v, err := e.evaluator.EvaluateMask(t, p.Channel)
		if err != nil {
			return nil, fmt.Errorf("evaluating mask for %s: %w", p.Channel, err)
		}
		violations = append(violations, v...)
	}
	sort.Slice(violations, func(a, b int) bool {
		return violations[a].Frequency < violations[b].Frequency
	})

	e.history.Append(peaks...)

	result := Result{
		Timestamp:    t.Timestamp,
		Trace:        t,
		MaxHold:      e.maxHold.Snapshot(),
		Peaks:        peaks,
		Violations:   violations,
		ChannelPeaks: e.channelPeaks(t),
	}
	e.lastResult = &result
	return &result, nil
}

// channelPeaks computes the peak power within each channel of the active
// band. Channels with no bins inside the trace span are omitted.
func (e *Engine) channelPeaks(t *spectrum.Trace) []ChannelPeak {
	var out []ChannelPeak
	for _, ch := range e.table.Channels(e.band) {
		lo := ch.CenterFrequency - ch.Bandwidth/2
		hi := ch.CenterFrequency + ch.Bandwidth/2

		peak := math.Inf(-1)
		found := false
		for i, p := range t.Points {
			if f := t.FrequencyAt(i); f >= lo && f <= hi {
				found = true
				if p > peak {
					peak = p
				}
			}
		}
		if found {
			out = append(out, ChannelPeak{Channel: ch, Power: peak})
		}
	}
	return out
}

// History returns the retained peaks, oldest first.
func (e *Engine) History() []Peak {
	return e.history.Snapshot()
}

// LastResult returns the most recent successful analysis result, nil before
// the first one.
func (e *Engine) LastResult() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastResult
}

// Band returns the band the engine summarizes channels for.
func (e *Engine) Band() wifi.Band {
	return e.band
}

// TraceLength returns the configured trace length.
func (e *Engine) TraceLength() int {
	return e.traceLength
}

// ResetMaxHold restarts the max-hold accumulation without touching the
// peak history. Used when a bounded hold window expires.
func (e *Engine) ResetMaxHold() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxHold.Clear()
}

// Clear resets the max-hold accumulation and peak history. Configuration
// and the channel table are unaffected.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxHold.Clear()
	e.history.Clear()
}
