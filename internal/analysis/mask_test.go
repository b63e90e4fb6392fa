package analysis

import (
	"errors"
	"testing"

	"github.com/YehoshuaShamir/RSA-API/internal/wifi"
)

func TestEvaluateMask_Zones(t *testing.T) {
	table := wifi.NewTable()
	ch, err := table.LookupChannel(wifi.Band5GHz, 36) // 5180 MHz, 20 MHz wide
	if err != nil {
		t.Fatalf("LookupChannel failed: %v", err)
	}

	// 101 bins at 1 MHz spacing, 5130-5230 MHz, all at -45 dBm:
	// center zone (within ±10 MHz) has threshold -40 and stays clean,
	// adjacent (-50) and far (-60) zones are violated everywhere.
	trace := testTrace(5130e6, 5230e6, 101, -45)

	e := NewMaskEvaluator()
	violations, err := e.EvaluateMask(trace, ch)
	if err != nil {
		t.Fatalf("EvaluateMask failed: %v", err)
	}

	var center, adjacent, far int
	for i, v := range violations {
		if i > 0 && violations[i-1].Frequency >= v.Frequency {
			t.Fatalf("Violations not in ascending frequency order at index %d", i)
		}

		switch v.Zone {
		case wifi.ZoneCenter:
			center++
		case wifi.ZoneAdjacent:
			adjacent++
			if v.Threshold != -50 {
				t.Errorf("Adjacent violation at %.0f MHz: expected threshold -50, got %.1f", v.Frequency/1e6, v.Threshold)
			}
		case wifi.ZoneFar:
			far++
			if v.Threshold != -60 {
				t.Errorf("Far violation at %.0f MHz: expected threshold -60, got %.1f", v.Frequency/1e6, v.Threshold)
			}
		}
	}

	if center != 0 {
		t.Errorf("Center zone: -45 dBm does not exceed -40, expected 0 violations, got %d", center)
	}
	if adjacent != 20 {
		t.Errorf("Adjacent zone: expected 20 violations, got %d", adjacent)
	}
	if far != 60 {
		t.Errorf("Far zone: expected 60 violations, got %d", far)
	}
}

func TestEvaluateMask_CleanTrace(t *testing.T) {
	table := wifi.NewTable()
	ch, err := table.LookupChannel(wifi.Band24GHz, 6)
	if err != nil {
		t.Fatalf("LookupChannel failed: %v", err)
	}

	trace := testTrace(2.4e9, 2.4835e9, 101, -80)

	e := NewMaskEvaluator()
	violations, err := e.EvaluateMask(trace, ch)
	if err != nil {
		t.Fatalf("EvaluateMask failed: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("Expected no violations at -80 dBm, got %d", len(violations))
	}
}

func TestEvaluateMask_NoChannel(t *testing.T) {
	trace := testTrace(2.4e9, 2.4835e9, 101, -45)

	e := NewMaskEvaluator()
	_, err := e.EvaluateMask(trace, wifi.Channel{})
	if !errors.Is(err, ErrNoChannelAssigned) {
		t.Errorf("Expected ErrNoChannelAssigned, got %v", err)
	}
}

func TestEvaluateMask_CustomMask(t *testing.T) {
	table := wifi.NewTable()
	ch, err := table.LookupChannel(wifi.Band24GHz, 6)
	if err != nil {
		t.Fatalf("LookupChannel failed: %v", err)
	}

	trace := testTrace(2427e6, 2447e6, 101, -45)

	e := NewMaskEvaluator(WithMask(wifi.Mask{Center: -30, Adjacent: -30, Far: -30}))
	violations, err := e.EvaluateMask(trace, ch)
	if err != nil {
		t.Fatalf("EvaluateMask failed: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("Relaxed mask: expected no violations, got %d", len(violations))
	}
}
