package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/YehoshuaShamir/RSA-API/internal/analysis"
	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
	"github.com/YehoshuaShamir/RSA-API/internal/wifi"
)

type stubCloser struct{ err error }

func (c stubCloser) Close() error { return c.err }

func TestCloseWithError(t *testing.T) {
	closeErr := errors.New("close failed")

	var err error
	closeWithError(stubCloser{err: closeErr}, &err)
	if !errors.Is(err, closeErr) {
		t.Errorf("Expected close error to propagate, got %v", err)
	}

	err = errors.New("earlier failure")
	closeWithError(stubCloser{err: closeErr}, &err)
	if err.Error() != "earlier failure" {
		t.Errorf("Close error must not mask an earlier one, got %v", err)
	}

	err = nil
	closeWithError(stubCloser{}, &err)
	if err != nil {
		t.Errorf("Expected nil after clean close, got %v", err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "test.sqlite"))
	defer store.Close()

	ctx := context.Background()
	sessionID, err := store.CreateSession(ctx, string(wifi.Band24GHz), "test-device", nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	ch, err := wifi.NewTable().LookupChannel(wifi.Band24GHz, 6)
	if err != nil {
		t.Fatalf("LookupChannel failed: %v", err)
	}

	trace := spectrum.NewTrace(2.43e9, 2.444e9, []float64{-100, -35, -100})
	result := &analysis.Result{
		Timestamp: trace.Timestamp,
		Trace:     trace,
		Peaks: []analysis.Peak{{
			Frequency: 2437e6,
			Power:     -35,
			Timestamp: trace.Timestamp,
			Strength:  analysis.StrengthStrong,
			Channel:   ch,
		}},
		Violations: []analysis.Violation{{
			Frequency: 2437e6,
			Power:     -35,
			Threshold: -40,
			Zone:      wifi.ZoneCenter,
			Channel:   ch,
		}},
	}
	if err = store.StoreResult(ctx, sessionID, result); err != nil {
		t.Fatalf("StoreResult failed: %v", err)
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != sessionID {
		t.Fatalf("Expected the created session back, got %+v", sessions)
	}

	peaks, err := store.Peaks(ctx, sessionID)
	if err != nil {
		t.Fatalf("Peaks failed: %v", err)
	}
	if len(peaks) != 1 {
		t.Fatalf("Expected 1 peak, got %d", len(peaks))
	}
	if peaks[0].Power != -35 || peaks[0].Strength != string(analysis.StrengthStrong) {
		t.Errorf("Unexpected peak record: %+v", peaks[0])
	}
	if peaks[0].Channel == nil || *peaks[0].Channel != 6 {
		t.Errorf("Expected peak on channel 6, got %v", peaks[0].Channel)
	}

	violations, err := store.Violations(ctx, sessionID)
	if err != nil {
		t.Fatalf("Violations failed: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Threshold != -40 || violations[0].Zone != string(wifi.ZoneCenter) {
		t.Errorf("Unexpected violation record: %+v", violations[0])
	}
	if violations[0].Channel == nil || *violations[0].Channel != 6 {
		t.Errorf("Expected violation on channel 6, got %v", violations[0].Channel)
	}
}
