package rsa

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
)

// Emitter is a synthetic emission the simulator injects into every trace:
// a carrier with Gaussian shoulders, the usual shape of an OFDM burst seen
// through a narrow RBW.
type Emitter struct {
	Frequency float64 // Hz, carrier center
	Power     float64 // dBm at the carrier
	Width     float64 // Hz, half-power width
}

// WithEmitter adds a synthetic emission to the simulated spectrum.
func WithEmitter(e Emitter) func(*Simulator) {
	return func(s *Simulator) {
		s.emitters = append(s.emitters, e)
	}
}

// WithNoiseFloor sets the mean noise floor in dBm (default -110).
func WithNoiseFloor(dbm float64) func(*Simulator) {
	return func(s *Simulator) {
		s.noiseFloor = dbm
	}
}

// WithAcquisitionDelay sets how long a simulated acquisition takes.
func WithAcquisitionDelay(d time.Duration) func(*Simulator) {
	return func(s *Simulator) {
		s.delay = d
	}
}

// WithSeed makes the simulated noise deterministic.
func WithSeed(seed int64) func(*Simulator) {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// Simulator is an Acquirer producing synthetic Wi-Fi spectra. It stands in
// for the vendor library during development and tests; the acquisition
// contract (configure, acquire, timeout behavior) matches the hardware
// implementation.
type Simulator struct {
	mu         sync.Mutex
	settings   Settings
	configured bool
	closed     bool

	emitters   []Emitter
	noiseFloor float64
	delay      time.Duration
	rng        *rand.Rand
}

// NewSimulator creates a simulated device with a -110 dBm noise floor and
// no emissions.
func NewSimulator(options ...func(*Simulator)) *Simulator {
	s := Simulator{
		noiseFloor: -110,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, option := range options {
		option(&s)
	}
	return &s
}

func (s *Simulator) Configure(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: device closed", ErrDeviceNotFound)
	}
	s.settings = settings
	s.configured = true
	return nil
}

func (s *Simulator) AcquireTrace(ctx context.Context) (*spectrum.Trace, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: device closed", ErrDeviceNotFound)
	}
	if !s.configured {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: acquire before configure", ErrInvalidConfiguration)
	}
	settings := s.settings
	s.mu.Unlock()

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", ErrAcquisitionTimeout, ctx.Err())
			}
			return nil, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrAcquisitionTimeout, err)
		}
		return nil, err
	}

	startFreq := settings.StartFrequency()
	stopFreq := settings.StopFrequency()
	binWidth := (stopFreq - startFreq) / float64(settings.TraceLength-1)

	s.mu.Lock()
	points := make([]float64, settings.TraceLength)
	for i := range points {
		freq := startFreq + float64(i)*binWidth

		power := s.noiseFloor + s.rng.Float64()*3 // a few dB of noise ripple
		for _, e := range s.emitters {
			offset := (freq - e.Frequency) / e.Width
			contribution := e.Power - 10*offset*offset // parabolic in dB = Gaussian in linear power
			if contribution > power {
				power = contribution
			}
		}
		points[i] = power
	}
	s.mu.Unlock()

	return spectrum.NewTrace(startFreq, stopFreq, points), nil
}

func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
