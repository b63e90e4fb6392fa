package spectrum

import (
	"math"
	"testing"
)

func TestTrace_BinWidth(t *testing.T) {
	trace := flatTrace(2.4e9, 2.4835e9, 801, -100)

	want := (2.4835e9 - 2.4e9) / 800
	if got := trace.BinWidth(); math.Abs(got-want) > 1e-6 {
		t.Errorf("BinWidth: expected %.3f, got %.3f", want, got)
	}

	if got := trace.FrequencyAt(0); got != 2.4e9 {
		t.Errorf("FrequencyAt(0): expected 2.4 GHz, got %.1f", got)
	}
	if got := trace.FrequencyAt(800); math.Abs(got-2.4835e9) > 1e-3 {
		t.Errorf("FrequencyAt(800): expected 2.4835 GHz, got %.1f", got)
	}
}

func TestTrace_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Trace)
		wantErr bool
	}{
		{"valid", func(*Trace) {}, false},
		{"even length", func(tr *Trace) { tr.Points = tr.Points[:800] }, true},
		{"too short", func(tr *Trace) { tr.Points = tr.Points[:99] }, true},
		{"NaN power", func(tr *Trace) { tr.Points[13] = math.NaN() }, true},
		{"infinite power", func(tr *Trace) { tr.Points[13] = math.Inf(1) }, true},
		{"inverted range", func(tr *Trace) { tr.StartFrequency, tr.StopFrequency = tr.StopFrequency, tr.StartFrequency }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trace := flatTrace(2.4e9, 2.4835e9, 801, -100)
			tc.mutate(trace)

			err := trace.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}
