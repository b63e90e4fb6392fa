package rsa

import (
	"errors"
	"fmt"
)

const (
	RefLevelMin = -130.0 // dBm
	RefLevelMax = 10.0   // dBm

	BandwidthMin = 1e3 // Hz, RBW/VBW lower bound (1 kHz)
	BandwidthMax = 1e6 // Hz, RBW/VBW upper bound (1000 kHz)

	TraceLengthMin = 101
	TraceLengthMax = 801

	SpanMax = 40e6 // Hz, RSA306B acquisition bandwidth limit

	// WindowKaiser is the default analysis window
	WindowKaiser      Window = "kaiser"
	WindowRectangular Window = "rectangular"
	WindowHamming     Window = "hamming"
	WindowHanning     Window = "hanning"
	WindowBlackman    Window = "blackman"

	// UnitDBM is the default vertical unit
	UnitDBM  VerticalUnit = "dBm"
	UnitDBMV VerticalUnit = "dBmV"
	UnitVolt VerticalUnit = "V"
	UnitWatt VerticalUnit = "W"
)

var (
	// ErrInvalidConfiguration is returned for out-of-range acquisition
	// settings, rejected before reaching the hardware.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	validWindows = map[Window]struct{}{
		WindowKaiser:      {},
		WindowRectangular: {},
		WindowHamming:     {},
		WindowHanning:     {},
		WindowBlackman:    {},
	}

	validVerticalUnits = map[VerticalUnit]struct{}{
		UnitDBM:  {},
		UnitDBMV: {},
		UnitVolt: {},
		UnitWatt: {},
	}
)

type Window string

func (w Window) String() string {
	return string(w)
}

type VerticalUnit string

func (u VerticalUnit) String() string {
	return string(u)
}

// Settings is the spectrum acquisition configuration handed to the device.
type Settings struct {
	CenterFrequency float64      `yaml:"centerFrequency" json:"centerFrequency"` // Hz
	Span            float64      `yaml:"span" json:"span"`                       // Hz
	RefLevel        float64      `yaml:"refLevel" json:"refLevel"`               // dBm
	RBW             float64      `yaml:"rbw" json:"rbw"`                         // Hz, resolution bandwidth
	VBW             float64      `yaml:"vbw" json:"vbw"`                         // Hz, video bandwidth
	TraceLength     int          `yaml:"traceLength" json:"traceLength"`         // points per trace, odd
	Window          Window       `yaml:"window" json:"window"`
	VerticalUnit    VerticalUnit `yaml:"verticalUnit" json:"verticalUnit"`
}

// DefaultSettings mirrors the instrument defaults: widest single
// acquisition centered mid 2.4GHz band, Kaiser window, dBm readout.
func DefaultSettings() Settings {
	return Settings{
		CenterFrequency: 2.4415e9,
		Span:            SpanMax,
		RefLevel:        -60,
		RBW:             1e3,
		VBW:             10e3,
		TraceLength:     801,
		Window:          WindowKaiser,
		VerticalUnit:    UnitDBM,
	}
}

// StartFrequency returns the lower edge of the acquisition span in Hz.
func (s Settings) StartFrequency() float64 {
	return s.CenterFrequency - s.Span/2
}

// StopFrequency returns the upper edge of the acquisition span in Hz.
func (s Settings) StopFrequency() float64 {
	return s.CenterFrequency + s.Span/2
}

func (s Settings) Validate() error {
	if s.CenterFrequency <= 0 {
		return fmt.Errorf("%w: center frequency must be positive: %f", ErrInvalidConfiguration, s.CenterFrequency)
	}
	if s.Span <= 0 {
		return fmt.Errorf("%w: span must be positive: %f", ErrInvalidConfiguration, s.Span)
	}
	if s.Span > SpanMax {
		return fmt.Errorf("%w: span %0.0f Hz exceeds acquisition bandwidth %0.0f Hz",
			ErrInvalidConfiguration, s.Span, SpanMax)
	}
	if s.RefLevel < RefLevelMin || s.RefLevel > RefLevelMax {
		return fmt.Errorf("%w: reference level %0.1f dBm outside [%0.1f, %0.1f]",
			ErrInvalidConfiguration, s.RefLevel, RefLevelMin, RefLevelMax)
	}
	if s.RBW < BandwidthMin || s.RBW > BandwidthMax {
		return fmt.Errorf("%w: RBW %0.0f Hz outside [%0.0f, %0.0f]",
			ErrInvalidConfiguration, s.RBW, BandwidthMin, BandwidthMax)
	}
	if s.VBW < BandwidthMin || s.VBW > BandwidthMax {
		return fmt.Errorf("%w: VBW %0.0f Hz outside [%0.0f, %0.0f]",
			ErrInvalidConfiguration, s.VBW, BandwidthMin, BandwidthMax)
	}
	if s.TraceLength < TraceLengthMin || s.TraceLength > TraceLengthMax {
		return fmt.Errorf("%w: trace length %d outside [%d, %d]",
			ErrInvalidConfiguration, s.TraceLength, TraceLengthMin, TraceLengthMax)
	}
	if s.TraceLength%2 == 0 {
		return fmt.Errorf("%w: trace length %d does not match device granularity (must be odd)",
			ErrInvalidConfiguration, s.TraceLength)
	}
	if s.Window != "" {
		if _, ok := validWindows[s.Window]; !ok {
			return fmt.Errorf("%w: unknown window %q", ErrInvalidConfiguration, s.Window)
		}
	}
	if s.VerticalUnit != "" {
		if _, ok := validVerticalUnits[s.VerticalUnit]; !ok {
			return fmt.Errorf("%w: unknown vertical unit %q", ErrInvalidConfiguration, s.VerticalUnit)
		}
	}
	return nil
}

func (s Settings) String() string {
	return fmt.Sprintf("cf=%0.4f GHz span=%0.1f MHz rbw=%0.0f kHz vbw=%0.0f kHz points=%d window=%s unit=%s",
		s.CenterFrequency/1e9, s.Span/1e6, s.RBW/1e3, s.VBW/1e3, s.TraceLength, s.Window, s.VerticalUnit)
}
