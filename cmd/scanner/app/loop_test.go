package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/YehoshuaShamir/RSA-API/internal/analysis"
	"github.com/YehoshuaShamir/RSA-API/internal/rsa"
	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
	"github.com/YehoshuaShamir/RSA-API/internal/wifi"
)

// stubDevice returns a flat trace at the configured power for whatever
// frequency window the loop last requested.
type stubDevice struct {
	settings rsa.Settings
	power    float64
}

func (d *stubDevice) Configure(settings rsa.Settings) error {
	d.settings = settings
	return nil
}

func (d *stubDevice) AcquireTrace(_ context.Context) (*spectrum.Trace, error) {
	points := make([]float64, d.settings.TraceLength)
	for i := range points {
		points[i] = d.power
	}
	return spectrum.NewTrace(d.settings.StartFrequency(), d.settings.StopFrequency(), points), nil
}

func (d *stubDevice) Close() error { return nil }

type captureSink struct {
	last *analysis.Result
}

func (s *captureSink) Publish(result *analysis.Result) { s.last = result }

func TestLoop_SurveyMaxHoldPerSegment(t *testing.T) {
	config := DefaultConfig()
	config.Scan.Survey = true
	config.Device.TraceLength = 101
	config.Analysis.MaxHoldWindow = 0
	if err := config.Validate(); err != nil {
		t.Fatalf("Config validation failed: %v", err)
	}

	device := &stubDevice{power: -30}
	engine, err := analysis.NewEngine(config.Device.TraceLength, analysis.WithBand(wifi.Band24GHz))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	sink := &captureSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loop, err := NewLoop(config, device, engine, sink, logger)
	if err != nil {
		t.Fatalf("NewLoop failed: %v", err)
	}
	if len(loop.settings) < 2 {
		t.Fatalf("Expected multiple survey segments, got %d", len(loop.settings))
	}

	ctx := context.Background()
	loop.cycle(ctx)
	firstCenter := device.settings.CenterFrequency

	for i, p := range sink.last.MaxHold {
		if p != -30 {
			t.Fatalf("Bin %d: expected -30 after first segment, got %.1f", i, p)
		}
	}

	// The next segment covers different frequencies, so its hold must not
	// inherit the previous segment's powers.
	device.power = -80
	loop.cycle(ctx)

	if device.settings.CenterFrequency == firstCenter {
		t.Fatal("Expected the loop to rotate to the next segment")
	}
	for i, p := range sink.last.MaxHold {
		if p != -80 {
			t.Fatalf("Bin %d: expected -80 after segment change, got %.1f", i, p)
		}
	}
}
