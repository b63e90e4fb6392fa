package app

import (
	"math"
	"testing"
)

func TestPowerHistogramDefaultBounds(t *testing.T) {
	h := NewPowerHistogram()

	// Too few samples: the default bounds apply.
	p := -50.0
	h.Update(&p)
	h.Update(nil)

	bounds := h.PercentileBounds()
	if bounds.Min != defaultMinPower || bounds.Max != defaultMaxPower {
		t.Errorf("PercentileBounds() = [%v, %v], want defaults [%v, %v]",
			bounds.Min, bounds.Max, defaultMinPower, defaultMaxPower)
	}
}

func TestPowerHistogramPercentiles(t *testing.T) {
	h := NewPowerHistogram()
	for i := 0; i < 100; i++ {
		p := -100.0 + float64(i) // -100 .. -1 dBm, uniform
		h.Update(&p)
	}

	bounds := h.PercentileBounds()
	if bounds.Min >= bounds.Max {
		t.Fatalf("PercentileBounds() Min %v >= Max %v", bounds.Min, bounds.Max)
	}
	if bounds.Max-bounds.Min < minBoundsRange {
		t.Errorf("PercentileBounds() range %v below minimum %v", bounds.Max-bounds.Min, minBoundsRange)
	}
	if math.Abs(bounds.Mean-(-50.5)) > 1 {
		t.Errorf("PercentileBounds() Mean = %v, want near -50.5", bounds.Mean)
	}
}

func TestSmoothBoundsConverges(t *testing.T) {
	s := NewSmoothBounds(0.3)

	var bounds PowerBounds
	for i := 0; i < 500; i++ {
		p := -70.0 + float64(i%40) // -70 .. -31 dBm
		bounds = s.Update(&p)
	}

	if bounds.Min > -70 || bounds.Max < -31 {
		t.Errorf("smoothed bounds [%v, %v] do not cover the observed range", bounds.Min, bounds.Max)
	}
	if got := s.Current(); got != bounds {
		t.Errorf("Current() = %+v, want %+v", got, bounds)
	}
}
