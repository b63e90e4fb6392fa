package app

import (
	"testing"
	"time"
)

func TestRowsPerTimeStep(t *testing.T) {
	// 400 rows recorded at 4 rows per second: a 10 s label interval lands
	// every 40 rows, not every 10.
	got := rowsPerTimeStep(400, 100*time.Second, 10*time.Second)
	if got != 40 {
		t.Errorf("Expected 40 rows per label, got %.1f", got)
	}

	// One row per second degenerates to the step itself.
	got = rowsPerTimeStep(120, 120*time.Second, 30*time.Second)
	if got != 30 {
		t.Errorf("Expected 30 rows per label, got %.1f", got)
	}

	// An empty session keeps a single label at the top.
	if got = rowsPerTimeStep(50, 0, 10*time.Second); got != 50 {
		t.Errorf("Expected full height for zero duration, got %.1f", got)
	}
}

func TestNiceTimeStep(t *testing.T) {
	testCases := []struct {
		duration time.Duration
		want     time.Duration
	}{
		{8 * time.Second, time.Second},
		{80 * time.Second, 10 * time.Second},
		{40 * time.Minute, 5 * time.Minute},
		{24 * time.Hour, 2 * time.Hour},
	}

	for _, tc := range testCases {
		if got := niceTimeStep(tc.duration); got != tc.want {
			t.Errorf("niceTimeStep(%s): expected %s, got %s", tc.duration, tc.want, got)
		}
	}
}
