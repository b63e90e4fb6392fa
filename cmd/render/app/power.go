package app

import "math"

const (
	defaultMinPower = -120.0 // dBm
	defaultMaxPower = -20.0  // dBm

	// Below this count the percentile estimate is meaningless; fall back
	// to the default bounds.
	minimumSampleCount = 20

	minBoundsRange = 30 // dB
)

// PowerBounds is the power range mapped onto the color gradient.
type PowerBounds struct {
	Min  float64 // 5th percentile, dBm
	Max  float64 // 95th percentile, dBm
	Mean float64 // dBm
}

func defaultPowerBounds() PowerBounds {
	return PowerBounds{
		Min:  defaultMinPower,
		Max:  defaultMaxPower,
		Mean: (defaultMinPower + defaultMaxPower) / 2,
	}
}

// PowerHistogram accumulates power readings in 1 dBm bins so percentile
// bounds can be estimated without retaining every sample.
type PowerHistogram struct {
	bins       map[int]uint32
	totalCount uint64
	minBin     int
	maxBin     int
}

func NewPowerHistogram() *PowerHistogram {
	return &PowerHistogram{
		bins:   make(map[int]uint32),
		minBin: math.MaxInt32,
		maxBin: math.MinInt32,
	}
}

// Update adds a reading. Nil readings (no data) are skipped.
func (h *PowerHistogram) Update(power *float64) {
	if power == nil {
		return
	}

	bin := int(math.Floor(*power))
	if h.bins[bin] == math.MaxUint32 || h.totalCount == math.MaxUint64 {
		h.scaleDown()
	}

	h.bins[bin]++
	h.totalCount++

	if bin < h.minBin {
		h.minBin = bin
	}
	if bin > h.maxBin {
		h.maxBin = bin
	}
}

// scaleDown halves all counts to avoid overflow; relative frequencies and
// therefore the percentiles are preserved.
func (h *PowerHistogram) scaleDown() {
	h.minBin = math.MaxInt32
	h.maxBin = math.MinInt32

	for bin := range h.bins {
		h.bins[bin] /= 2
		if h.bins[bin] == 0 {
			delete(h.bins, bin)
			continue
		}
		if bin < h.minBin {
			h.minBin = bin
		}
		if bin > h.maxBin {
			h.maxBin = bin
		}
	}
	h.totalCount /= 2
}

// PercentileBounds estimates the 5th and 95th percentile power levels,
// widened to at least minBoundsRange with a 10% margin.
func (h *PowerHistogram) PercentileBounds() PowerBounds {
	if h.totalCount < minimumSampleCount {
		return defaultPowerBounds()
	}

	target := h.totalCount * 5 / 100

	var count uint64
	var lower, upper int
	for bin := h.minBin; bin <= h.maxBin; bin++ {
		count += uint64(h.bins[bin])
		if count >= target {
			lower = bin
			break
		}
	}
	count = 0
	for bin := h.maxBin; bin >= h.minBin; bin-- {
		count += uint64(h.bins[bin])
		if count >= target {
			upper = bin
			break
		}
	}

	var sumProduct float64
	for bin := h.minBin; bin <= h.maxBin; bin++ {
		sumProduct += float64(bin) * float64(h.bins[bin])
	}
	mean := sumProduct / float64(h.totalCount)

	if upper-lower < minBoundsRange {
		center := (upper + lower) / 2
		lower = center - minBoundsRange/2
		upper = center + minBoundsRange/2
	}

	margin := (upper - lower) / 10
	return PowerBounds{
		Min:  float64(lower - margin),
		Max:  float64(upper + margin),
		Mean: mean,
	}
}

// SmoothBounds exponentially smooths the histogram bounds so the gradient
// does not jump between renders of overlapping data.
type SmoothBounds struct {
	hist    *PowerHistogram
	alpha   float64
	current PowerBounds
}

func NewSmoothBounds(alpha float64) *SmoothBounds {
	return &SmoothBounds{
		hist:    NewPowerHistogram(),
		alpha:   alpha,
		current: defaultPowerBounds(),
	}
}

// Update adds a reading and returns the smoothed bounds.
func (s *SmoothBounds) Update(power *float64) PowerBounds {
	if power == nil {
		return s.current
	}

	s.hist.Update(power)
	bounds := s.hist.PercentileBounds()

	s.current.Min = s.current.Min*(1-s.alpha) + bounds.Min*s.alpha
	s.current.Max = s.current.Max*(1-s.alpha) + bounds.Max*s.alpha
	s.current.Mean = bounds.Mean

	return s.current
}

// Current returns the current smoothed power bounds.
func (s *SmoothBounds) Current() PowerBounds {
	return s.current
}
