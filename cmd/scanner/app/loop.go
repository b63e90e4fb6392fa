package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YehoshuaShamir/RSA-API/internal/analysis"
	"github.com/YehoshuaShamir/RSA-API/internal/display"
	"github.com/YehoshuaShamir/RSA-API/internal/rsa"
	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
	"github.com/YehoshuaShamir/RSA-API/internal/storage"
)

const (
	surveyStep   = 30e6 // Hz between survey segment centers
	storeTimeout = 5 * time.Second
)

// Loop drives the acquisition cycle: configure, acquire, analyze, publish,
// optionally record. All loop state is mutated from Run's goroutine; Resume
// may be called from anywhere.
type Loop struct {
	device rsa.Acquirer
	engine *analysis.Engine
	sink   display.Sink
	logger *slog.Logger

	store     *storage.Store
	sessionID int64

	interval         time.Duration
	acqTimeout       time.Duration
	holdWindow       time.Duration
	pauseOnViolation bool

	// Fixed-channel mode uses settings[0] only; survey mode rotates
	// through one settings entry per sweep segment.
	settings     []rsa.Settings
	composite    *spectrum.CompositeBuffer
	segmentIndex int
	lastSegment  int

	resume        chan struct{}
	paused        bool
	holdStart     time.Time
	lastConfigErr string
}

// NewLoop builds the loop from a validated configuration.
func NewLoop(config *Config, device rsa.Acquirer, engine *analysis.Engine, sink display.Sink, logger *slog.Logger) (*Loop, error) {
	l := Loop{
		device:           device,
		engine:           engine,
		sink:             sink,
		logger:           logger,
		interval:         time.Duration(config.Scan.Interval),
		acqTimeout:       time.Duration(config.Device.AcquisitionTimeout),
		holdWindow:       time.Duration(config.Analysis.MaxHoldWindow),
		pauseOnViolation: config.Scan.PauseOnViolation,
		resume:           make(chan struct{}, 1),
		lastSegment:      -1,
	}

	if config.Scan.Survey {
		start, stop := config.Scan.Band.Range()
		plan := spectrum.SweepPlan{
			StartFrequency: start + config.Device.Span/2,
			StopFrequency:  stop,
			Span:           config.Device.Span,
			Step:           surveyStep,
		}

		segments, err := plan.Segments()
		if err != nil {
			return nil, fmt.Errorf("building sweep plan: %w", err)
		}
		for _, segment := range segments {
			l.settings = append(l.settings, config.deviceSettings(segment.CenterFrequency))
		}

		binWidth := config.Device.Span / float64(config.Device.TraceLength-1)
		binCount := int((stop-start)/binWidth) + 1
		if l.composite, err = spectrum.NewCompositeBuffer(plan, binCount); err != nil {
			return nil, fmt.Errorf("building composite buffer: %w", err)
		}
	} else {
		l.settings = []rsa.Settings{config.deviceSettings(0)}
	}

	return &l, nil
}

// Record attaches a session recording target. Must be called before Run.
func (l *Loop) Record(store *storage.Store, sessionID int64) {
	l.store = store
	l.sessionID = sessionID
}

// Composite returns the full-band composite buffer, nil outside survey mode.
func (l *Loop) Composite() *spectrum.CompositeBuffer {
	return l.composite
}

// Resume unblocks a loop paused on a mask violation. Safe to call at any
// time; a resume with no pause pending applies to the next pause.
func (l *Loop) Resume() {
	select {
	case l.resume <- struct{}{}:
	default:
	}
}

// Run executes acquisition cycles at the configured interval until ctx is
// cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.holdStart = time.Now()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if l.paused {
				select {
				case <-l.resume:
					l.paused = false
					l.logger.Info("resuming after violation pause")
				default:
					continue
				}
			}
			l.cycle(ctx)
		}
	}
}

func (l *Loop) cycle(ctx context.Context) {
	settings := l.settings[l.segmentIndex]
	if err := l.device.Configure(settings); err != nil {
		// Report a persistent configuration failure once, not every tick.
		if err.Error() != l.lastConfigErr {
			l.lastConfigErr = err.Error()
			l.logger.Error("configuring device", slog.String("error", err.Error()))
		}
		return
	}
	l.lastConfigErr = ""

	acqCtx, cancel := context.WithTimeout(ctx, l.acqTimeout)
	trace, err := l.device.AcquireTrace(acqCtx)
	cancel()
	if err != nil {
		switch {
		case errors.Is(err, rsa.ErrAcquisitionTimeout):
			l.logger.Warn("acquisition timed out, previous result retained")
		case errors.Is(err, context.Canceled):
		default:
			l.logger.Error("acquiring trace", slog.String("error", err.Error()))
		}
		return
	}

	if l.holdWindow > 0 && time.Since(l.holdStart) >= l.holdWindow {
		l.engine.ResetMaxHold()
		l.holdStart = time.Now()
	}

	// The engine's max-hold only makes sense over one frequency window; on
	// a survey segment change the full-band hold lives in the composite.
	if l.composite != nil && l.segmentIndex != l.lastSegment {
		l.engine.ResetMaxHold()
		l.lastSegment = l.segmentIndex
	}

	result, err := l.engine.Analyze(trace)
	if err != nil {
		// The engine retains its previous result on failure.
		l.logger.Error("analyzing trace", slog.String("error", err.Error()))
		return
	}

	if l.composite != nil {
		if err = l.composite.Merge(trace, true); err != nil {
			l.logger.Warn("merging survey segment", slog.String("error", err.Error()))
		}
		l.segmentIndex++
		if l.segmentIndex == len(l.settings) {
			l.segmentIndex = 0
			l.logger.Debug("survey sweep complete", slog.Int("segments", len(l.settings)))
		}
	}

	l.sink.Publish(result)

	if l.store != nil {
		storeCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if err = l.store.StoreResult(storeCtx, l.sessionID, result); err != nil {
			l.logger.Error("storing result", slog.String("error", err.Error()))
		}
		cancel()
	}

	if l.pauseOnViolation && len(result.Violations) > 0 {
		l.paused = true
		l.logger.Warn("pausing on mask violation, send SIGUSR1 to resume",
			slog.Int("violations", len(result.Violations)))
	}
}
