package wifi

import (
	"errors"
	"fmt"
	"math"
)

// Band identifies one of the two Wi-Fi bands the scanner observes.
type Band string

const (
	Band24GHz Band = "2.4GHz"
	Band5GHz  Band = "5GHz"
)

const (
	// Channel plan constants. The 5GHz mapping is a simplified linear plan
	// (fixed 20 MHz spacing between channel numbers in steps of 4); the
	// real-world DFS gaps are intentionally not modeled.
	channel24First  = 1
	channel24Last   = 13
	channel24Base   = 2412e6 // channel 1 center, Hz
	channel24Step   = 5e6    // Hz between channel numbers
	channel24Width  = 22e6   // Hz
	channel5First   = 36
	channel5Last    = 140
	channel5Base    = 5180e6 // channel 36 center, Hz
	channel5Step    = 20e6   // Hz between adjacent channels
	channel5NumStep = 4      // channel numbers advance in steps of 4

	// DefaultMatchTolerance is the maximum distance from a channel center
	// at which a frequency is identified as belonging to that channel.
	// Frequencies between centers sit in a gap and identify as nothing.
	DefaultMatchTolerance = 1e6 // Hz
)

// ErrInvalidChannel is returned when a channel number is outside the valid
// range for its band.
var ErrInvalidChannel = errors.New("invalid channel")

// Channel is a named center-frequency/bandwidth allocation within a band.
// Channels are immutable and statically defined.
type Channel struct {
	Band            Band
	Number          int
	CenterFrequency float64 // Hz
	Bandwidth       float64 // Hz
}

// Valid reports whether the channel is populated (the zero value is not).
func (c Channel) Valid() bool {
	return c.Band != "" && c.Number > 0
}

func (c Channel) String() string {
	return fmt.Sprintf("%s ch %d (%.0f MHz)", c.Band, c.Number, c.CenterFrequency/1e6)
}

// Range returns the band edges of a band: the frequency span the scanner
// sweeps when observing the whole band.
func (b Band) Range() (startFreq, stopFreq float64) {
	switch b {
	case Band5GHz:
		return 5.15e9, 5.825e9
	default:
		return 2.4e9, 2.4835e9
	}
}

// WithMatchTolerance sets the identification tolerance in Hz.
func WithMatchTolerance(tolerance float64) func(*Table) {
	return func(t *Table) {
		t.matchTolerance = tolerance
	}
}

// Table is the static channel lookup for both Wi-Fi bands. Lookups and
// identification are pure functions over the fixed channel plan.
type Table struct {
	matchTolerance float64
}

// NewTable creates a channel table with the default match tolerance.
func NewTable(options ...func(*Table)) *Table {
	t := Table{matchTolerance: DefaultMatchTolerance}
	for _, option := range options {
		option(&t)
	}
	return &t
}

// LookupChannel resolves a band and channel number to its allocation.
// Numbers outside the band's plan fail with ErrInvalidChannel.
func (t *Table) LookupChannel(band Band, number int) (Channel, error) {
	switch band {
	case Band24GHz:
		if number < channel24First || number > channel24Last {
			return Channel{}, fmt.Errorf("%w: %s channel %d outside [%d, %d]",
				ErrInvalidChannel, band, number, channel24First, channel24Last)
		}
		return Channel{
			Band:            band,
			Number:          number,
			CenterFrequency: channel24Base + float64(number-channel24First)*channel24Step,
			Bandwidth:       channel24Width,
		}, nil

	case Band5GHz:
		if number < channel5First || number > channel5Last || (number-channel5First)%channel5NumStep != 0 {
			return Channel{}, fmt.Errorf("%w: %s channel %d outside plan [%d, %d] step %d",
				ErrInvalidChannel, band, number, channel5First, channel5Last, channel5NumStep)
		}
		return Channel{
			Band:            band,
			Number:          number,
			CenterFrequency: channel5Base + float64((number-channel5First)/channel5NumStep)*channel5Step,
			Bandwidth:       channel5Step,
		}, nil

	default:
		return Channel{}, fmt.Errorf("%w: unknown band %q", ErrInvalidChannel, band)
	}
}

// IdentifyChannel returns the channel whose center is within the match
// tolerance of the given frequency. Frequencies between channel centers or
// outside both bands return false: the linear plan has gaps and a reading in
// a gap belongs to no channel.
func (t *Table) IdentifyChannel(freq float64) (Channel, bool) {
	var (
		band   Band
		number int
	)
	switch {
	case freq < 3e9:
		step := math.Round((freq - channel24Base) / channel24Step)
		band = Band24GHz
		number = channel24First + int(step)

	default:
		step := math.Round((freq - channel5Base) / channel5Step)
		band = Band5GHz
		number = channel5First + int(step)*channel5NumStep
	}

	ch, err := t.LookupChannel(band, number)
	if err != nil {
		return Channel{}, false
	}
	if math.Abs(freq-ch.CenterFrequency) > t.matchTolerance {
		return Channel{}, false
	}
	return ch, true
}

// Channels returns all channels of a band in ascending frequency order.
func (t *Table) Channels(band Band) []Channel {
	var out []Channel
	switch band {
	case Band24GHz:
		for n := channel24First; n <= channel24Last; n++ {
			ch, _ := t.LookupChannel(band, n)
			out = append(out, ch)
		}
	case Band5GHz:
		for n := channel5First; n <= channel5Last; n += channel5NumStep {
			ch, _ := t.LookupChannel(band, n)
			out = append(out, ch)
		}
	}
	return out
}
