package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/YehoshuaShamir/RSA-API/internal/wifi"
)

func TestEngine_Analyze(t *testing.T) {
	engine, err := NewEngine(801, WithBand(wifi.Band24GHz))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	trace := testTrace(2.4e9, 2.4835e9, 801, -110)
	idx := int(math.Round((2437e6 - 2.4e9) / trace.BinWidth()))
	trace.Points[idx] = -35 // hot carrier on channel 6, violates the center mask

	result, err := engine.Analyze(trace)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Peaks) != 1 {
		t.Fatalf("Expected 1 peak, got %d", len(result.Peaks))
	}
	if result.Peaks[0].Channel.Number != 6 {
		t.Errorf("Expected peak on channel 6, got %+v", result.Peaks[0].Channel)
	}
	if result.Peaks[0].Strength != StrengthStrong {
		t.Errorf("Expected strong peak, got %s", result.Peaks[0].Strength)
	}

	if len(result.Violations) == 0 {
		t.Error("Expected center-zone mask violations for a -35 dBm carrier")
	}
	for _, v := range result.Violations {
		if v.Channel.Number != 6 {
			t.Errorf("Violation attributed to channel %d, expected 6", v.Channel.Number)
		}
	}

	if result.MaxHold[idx] != -35 {
		t.Errorf("Max-hold snapshot: expected -35 at peak bin, got %.1f", result.MaxHold[idx])
	}

	if len(result.ChannelPeaks) != 13 {
		t.Errorf("Expected 13 per-channel peaks for the 2.4GHz band, got %d", len(result.ChannelPeaks))
	}
	for _, cp := range result.ChannelPeaks {
		if cp.Channel.Number == 6 && cp.Power != -35 {
			t.Errorf("Channel 6 peak: expected -35, got %.1f", cp.Power)
		}
	}
}

func TestEngine_TraceShapeMismatch(t *testing.T) {
	engine, err := NewEngine(801)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	good := testTrace(2.4e9, 2.4835e9, 801, -110)
	good.Points[400] = -50

	prev, err := engine.Analyze(good)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	bad := testTrace(2.4e9, 2.4835e9, 401, -110)
	if _, err := engine.Analyze(bad); !errors.Is(err, ErrTraceShapeMismatch) {
		t.Fatalf("Expected ErrTraceShapeMismatch, got %v", err)
	}

	// No partial update: the retained result and history are unchanged.
	if engine.LastResult() != prev {
		t.Error("Previous result was replaced after a rejected trace")
	}
	if got := len(engine.History()); got != 1 {
		t.Errorf("History length changed after a rejected trace: %d", got)
	}
}

func TestEngine_RejectsNonFinitePower(t *testing.T) {
	engine, err := NewEngine(101)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	trace := testTrace(2.4e9, 2.4835e9, 101, -110)
	trace.Points[50] = math.NaN()

	if _, err := engine.Analyze(trace); !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("Expected ErrAnalysisFailed for NaN power, got %v", err)
	}
	if engine.LastResult() != nil {
		t.Error("Rejected trace must not produce a result")
	}
}

func TestEngine_HistoryEviction(t *testing.T) {
	engine, err := NewEngine(101)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	base := time.Now()
	for cycle := 0; cycle < 25; cycle++ {
		trace := testTrace(2.4e9, 2.4835e9, 101, -110)
		trace.Timestamp = base.Add(time.Duration(cycle) * 100 * time.Millisecond)
		trace.Points[1+cycle*2] = -50 // one distinct peak per cycle

		if _, err := engine.Analyze(trace); err != nil {
			t.Fatalf("Cycle %d: Analyze failed: %v", cycle, err)
		}
	}

	history := engine.History()
	if len(history) != HistoryCapacity {
		t.Fatalf("Expected history length %d, got %d", HistoryCapacity, len(history))
	}

	// The 20 most recent peaks, oldest first.
	for i, p := range history {
		wantCycle := 25 - HistoryCapacity + i
		want := base.Add(time.Duration(wantCycle) * 100 * time.Millisecond)
		if !p.Timestamp.Equal(want) {
			t.Fatalf("History[%d]: expected peak from cycle %d, got timestamp %v", i, wantCycle, p.Timestamp)
		}
	}
}

func TestEngine_Clear(t *testing.T) {
	engine, err := NewEngine(101)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	trace := testTrace(2.4e9, 2.4835e9, 101, -110)
	trace.Points[50] = -50

	if _, err := engine.Analyze(trace); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(engine.History()) == 0 {
		t.Fatal("Expected history entries before Clear")
	}

	engine.Clear()

	if got := len(engine.History()); got != 0 {
		t.Errorf("Expected empty history after Clear, got %d", got)
	}

	// Max-hold starts over: the next trace assigns directly.
	quiet := testTrace(2.4e9, 2.4835e9, 101, -120)
	result, err := engine.Analyze(quiet)
	if err != nil {
		t.Fatalf("Analyze after Clear failed: %v", err)
	}
	if result.MaxHold[50] != -120 {
		t.Errorf("Max-hold not reset by Clear: bin 50 reads %.1f", result.MaxHold[50])
	}
}

func TestEngine_MaxHoldAccumulates(t *testing.T) {
	engine, err := NewEngine(101)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	first := testTrace(2.4e9, 2.4835e9, 101, -110)
	first.Points[30] = -45
	if _, err := engine.Analyze(first); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	second := testTrace(2.4e9, 2.4835e9, 101, -110)
	second.Points[70] = -55
	result, err := engine.Analyze(second)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.MaxHold[30] != -45 {
		t.Errorf("Max-hold lost the earlier peak: bin 30 reads %.1f", result.MaxHold[30])
	}
	if result.MaxHold[70] != -55 {
		t.Errorf("Max-hold missing the new peak: bin 70 reads %.1f", result.MaxHold[70])
	}
}
