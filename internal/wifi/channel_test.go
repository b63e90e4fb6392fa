package wifi

import (
	"errors"
	"testing"
)

func TestLookupChannel_24GHz(t *testing.T) {
	table := NewTable()

	testCases := []struct {
		number     int
		wantCenter float64
	}{
		{1, 2412e6},
		{6, 2437e6},
		{11, 2462e6},
		{13, 2472e6},
	}

	for _, tc := range testCases {
		ch, err := table.LookupChannel(Band24GHz, tc.number)
		if err != nil {
			t.Fatalf("LookupChannel(%d) failed: %v", tc.number, err)
		}
		if ch.CenterFrequency != tc.wantCenter {
			t.Errorf("Channel %d: expected center %.0f MHz, got %.0f MHz",
				tc.number, tc.wantCenter/1e6, ch.CenterFrequency/1e6)
		}
		if ch.Bandwidth != 22e6 {
			t.Errorf("Channel %d: expected 22 MHz bandwidth, got %.0f MHz", tc.number, ch.Bandwidth/1e6)
		}
	}
}

func TestLookupChannel_5GHz(t *testing.T) {
	table := NewTable()

	testCases := []struct {
		number     int
		wantCenter float64
	}{
		{36, 5180e6},
		{40, 5200e6},
		{64, 5320e6},
		{100, 5500e6},
		{140, 5700e6},
	}

	for _, tc := range testCases {
		ch, err := table.LookupChannel(Band5GHz, tc.number)
		if err != nil {
			t.Fatalf("LookupChannel(%d) failed: %v", tc.number, err)
		}
		if ch.CenterFrequency != tc.wantCenter {
			t.Errorf("Channel %d: expected center %.0f MHz, got %.0f MHz",
				tc.number, tc.wantCenter/1e6, ch.CenterFrequency/1e6)
		}
		if ch.Bandwidth != 20e6 {
			t.Errorf("Channel %d: expected 20 MHz bandwidth, got %.0f MHz", tc.number, ch.Bandwidth/1e6)
		}
	}
}

func TestLookupChannel_Invalid(t *testing.T) {
	table := NewTable()

	testCases := []struct {
		name   string
		band   Band
		number int
	}{
		{"2.4GHz channel 0", Band24GHz, 0},
		{"2.4GHz channel 14", Band24GHz, 14},
		{"5GHz channel 35", Band5GHz, 35},
		{"5GHz channel 141", Band5GHz, 141},
		{"5GHz off-plan channel 37", Band5GHz, 37},
		{"unknown band", Band("6GHz"), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := table.LookupChannel(tc.band, tc.number)
			if !errors.Is(err, ErrInvalidChannel) {
				t.Errorf("Expected ErrInvalidChannel, got %v", err)
			}
		})
	}
}

func TestIdentifyChannel(t *testing.T) {
	table := NewTable()

	testCases := []struct {
		name       string
		freq       float64
		wantNumber int
		wantMatch  bool
	}{
		{"channel 6 center", 2437e6, 6, true},
		{"channel 1 center", 2412e6, 1, true},
		{"between channels", 2450e6, 0, false},
		{"within tolerance of channel 6", 2437.5e6, 6, true},
		{"below band", 2300e6, 0, false},
		{"5GHz channel 36", 5180e6, 36, true},
		{"5GHz channel 140", 5700e6, 140, true},
		{"5GHz gap", 5190e6, 0, false},
		{"beyond linear 5GHz plan", 5820e6, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ch, ok := table.IdentifyChannel(tc.freq)
			if ok != tc.wantMatch {
				t.Fatalf("IdentifyChannel(%.1f MHz): expected match=%v, got %v", tc.freq/1e6, tc.wantMatch, ok)
			}
			if ok && ch.Number != tc.wantNumber {
				t.Errorf("IdentifyChannel(%.1f MHz): expected channel %d, got %d", tc.freq/1e6, tc.wantNumber, ch.Number)
			}
		})
	}
}

func TestIdentifyChannel_CustomTolerance(t *testing.T) {
	table := NewTable(WithMatchTolerance(2.6e6))

	// 2450 MHz is 2 MHz from channel 9 (2452 MHz); a widened tolerance
	// makes it resolve where the default does not.
	ch, ok := table.IdentifyChannel(2450e6)
	if !ok {
		t.Fatal("Expected a match with widened tolerance")
	}
	if ch.Number != 9 {
		t.Errorf("Expected channel 9, got %d", ch.Number)
	}
}

func TestChannels(t *testing.T) {
	table := NewTable()

	if got := len(table.Channels(Band24GHz)); got != 13 {
		t.Errorf("2.4GHz: expected 13 channels, got %d", got)
	}
	if got := len(table.Channels(Band5GHz)); got != 27 {
		t.Errorf("5GHz: expected 27 channels, got %d", got)
	}

	channels := table.Channels(Band5GHz)
	for i := 1; i < len(channels); i++ {
		if channels[i].CenterFrequency-channels[i-1].CenterFrequency != 20e6 {
			t.Fatalf("5GHz plan: expected fixed 20 MHz spacing at index %d", i)
		}
	}
}

func TestZoneFor(t *testing.T) {
	table := NewTable()
	ch, err := table.LookupChannel(Band5GHz, 36) // 5180 MHz, 20 MHz wide
	if err != nil {
		t.Fatalf("LookupChannel failed: %v", err)
	}

	testCases := []struct {
		name string
		freq float64
		want Zone
	}{
		{"at center", 5180e6, ZoneCenter},
		{"half bandwidth below", 5170e6, ZoneCenter},
		{"just beyond half bandwidth", 5170e6 - 1, ZoneAdjacent},
		{"one bandwidth above", 5200e6, ZoneAdjacent},
		{"beyond one bandwidth", 5201e6, ZoneFar},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ch.ZoneFor(tc.freq); got != tc.want {
				t.Errorf("ZoneFor(%.1f MHz): expected %s, got %s", tc.freq/1e6, tc.want, got)
			}
		})
	}
}
