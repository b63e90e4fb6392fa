package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
	"github.com/YehoshuaShamir/RSA-API/internal/wifi"
)

// Strength categorizes a peak by its power level.
type Strength string

const (
	StrengthStrong Strength = "strong" // power >= -40 dBm
	StrengthMedium Strength = "medium" // -60 dBm <= power < -40 dBm
	StrengthWeak   Strength = "weak"   // power < -60 dBm

	strongFloor = -40.0
	mediumFloor = -60.0
)

const (
	// DefaultPeakThreshold is the minimum power for a bin to qualify as a
	// peak candidate.
	DefaultPeakThreshold = -100.0 // dBm

	// DefaultMinPeakSpacing merges candidates closer than this, so a single
	// emission spread across subcarrier-resolution bins is reported once.
	DefaultMinPeakSpacing = 2e6 // Hz
)

// Peak is a detected local maximum in a trace. Peaks are immutable once
// created.
type Peak struct {
	Frequency float64      // Hz
	Power     float64      // dBm
	Timestamp time.Time    // When the trace containing the peak was acquired
	Strength  Strength     // Signal strength category
	Channel   wifi.Channel // Zero value when no channel matched within tolerance
}

// ClassifyStrength maps a power level to its strength category. Boundaries
// are inclusive on the stronger category: exactly -40 dBm is strong, exactly
// -60 dBm is medium.
func ClassifyStrength(power float64) Strength {
	switch {
	case power >= strongFloor:
		return StrengthStrong
	case power >= mediumFloor:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

// WithThreshold sets the peak candidate threshold in dBm.
func WithThreshold(dbm float64) func(*PeakDetector) {
	return func(d *PeakDetector) {
		d.threshold = dbm
	}
}

// WithAdaptiveThreshold raises the candidate threshold of each detection pass
// to the trace's estimated noise floor whenever that is higher than the
// configured absolute threshold.
func WithAdaptiveThreshold() func(*PeakDetector) {
	return func(d *PeakDetector) {
		d.adaptive = true
	}
}

// WithSmoothingWindow enables a video-bandwidth-equivalent moving average of
// the given width in bins before scanning for maxima. Zero disables
// smoothing; even widths are extended to the next odd width so the window is
// centered.
func WithSmoothingWindow(bins int) func(*PeakDetector) {
	return func(d *PeakDetector) {
		d.smoothingBins = bins
	}
}

// WithMinPeakSpacing sets the merge distance for nearby candidates in Hz.
func WithMinPeakSpacing(hz float64) func(*PeakDetector) {
	return func(d *PeakDetector) {
		d.minSpacing = hz
	}
}

// WithChannelTable sets the channel table used to assign channels to peaks.
func WithChannelTable(table *wifi.Table) func(*PeakDetector) {
	return func(d *PeakDetector) {
		d.table = table
	}
}

// PeakDetector scans traces for local maxima above a threshold, merges
// nearby candidates and classifies the survivors.
type PeakDetector struct {
	threshold     float64
	adaptive      bool
	smoothingBins int
	minSpacing    float64
	table         *wifi.Table
}

// NewPeakDetector creates a detector with the default tuning.
func NewPeakDetector(options ...func(*PeakDetector)) *PeakDetector {
	d := PeakDetector{
		threshold:  DefaultPeakThreshold,
		minSpacing: DefaultMinPeakSpacing,
		table:      wifi.NewTable(),
	}
	for _, option := range options {
		option(&d)
	}
	return &d
}

// DetectPeaks returns the peaks of a trace ordered by frequency ascending.
// Traces with fewer than three points have no interior bins to compare and
// yield an empty result.
func (d *PeakDetector) DetectPeaks(t *spectrum.Trace) []Peak {
	if t == nil || len(t.Points) < 3 {
		return nil
	}

	samples := t.Points
	if d.smoothingBins > 1 {
		samples = movingAverage(t.Points, d.smoothingBins)
	}

	threshold := d.threshold
	if d.adaptive {
		if floor := NoiseFloor(t); floor > threshold {
			threshold = floor
		}
	}

	// Interior bins strictly above both neighbors and the threshold.
	var candidates []int
	for i := 1; i < len(samples)-1; i++ {
		if samples[i] > samples[i-1] && samples[i] > samples[i+1] && samples[i] > threshold {
			candidates = append(candidates, i)
		}
	}
	candidates = d.mergeCandidates(t, samples, candidates)

	peaks := make([]Peak, 0, len(candidates))
	for _, i := range candidates {
		freq := t.FrequencyAt(i)
		power := samples[i]

		p := Peak{
			Frequency: freq,
			Power:     power,
			Timestamp: t.Timestamp,
			Strength:  ClassifyStrength(power),
		}
		if ch, ok := d.table.IdentifyChannel(freq); ok {
			p.Channel = ch
		}
		peaks = append(peaks, p)
	}
	return peaks
}

// mergeCandidates collapses candidate groups closer than the minimum peak
// spacing, keeping the higher-power bin. Ties break toward the lower
// frequency.
func (d *PeakDetector) mergeCandidates(t *spectrum.Trace, samples []float64, candidates []int) []int {
	if len(candidates) < 2 || d.minSpacing <= 0 {
		return candidates
	}

	// Strongest first so each winner absorbs its weaker neighbors.
	byPower := make([]int, len(candidates))
	copy(byPower, candidates)
	sort.SliceStable(byPower, func(a, b int) bool {
		if samples[byPower[a]] == samples[byPower[b]] {
			return byPower[a] < byPower[b]
		}
		return samples[byPower[a]] > samples[byPower[b]]
	})

	suppressed := make(map[int]bool, len(candidates))
	var kept []int
	for _, i := range byPower {
		if suppressed[i] {
			continue
		}
		kept = append(kept, i)
		for _, j := range candidates {
			if j == i || suppressed[j] {
				continue
			}
			if absFloat(t.FrequencyAt(i)-t.FrequencyAt(j)) < d.minSpacing {
				suppressed[j] = true
			}
		}
	}

	sort.Ints(kept)
	return kept
}

// NoiseFloor estimates the trace noise floor as mean plus one standard
// deviation of the sample powers. Useful as a relative detection threshold
// when the absolute default is too permissive.
func NoiseFloor(t *spectrum.Trace) float64 {
	if t == nil || len(t.Points) == 0 {
		return DefaultPeakThreshold
	}
	mean, std := stat.MeanStdDev(t.Points, nil)
	return mean + std
}

// movingAverage smooths samples with a centered window of the given width.
// Edge bins average over the part of the window that fits.
func movingAverage(samples []float64, width int) []float64 {
	if width%2 == 0 {
		width++
	}
	half := width / 2

	out := make([]float64, len(samples))
	for i := range samples {
		lo := max(0, i-half)
		hi := min(len(samples)-1, i+half)

		var sum float64
		for j := lo; j <= hi; j++ {
			sum += samples[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
