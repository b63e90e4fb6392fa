package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/YehoshuaShamir/RSA-API/internal/analysis"
	"github.com/YehoshuaShamir/RSA-API/internal/display"
	"github.com/YehoshuaShamir/RSA-API/internal/rsa"
	"github.com/YehoshuaShamir/RSA-API/internal/storage"
)

const deviceID = "rsa306b-sim"

// Run wires the device, analysis engine, display sink and optional session
// recording together and drives the scan loop until ctx is cancelled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	device := rsa.NewSimulator(simulatorOptions(config)...)
	defer device.Close()

	detector := analysis.NewPeakDetector(detectorOptions(config)...)
	evaluator := analysis.NewMaskEvaluator(analysis.WithMask(config.Analysis.Mask()))

	engine, err := analysis.NewEngine(config.Device.TraceLength,
		analysis.WithBand(config.Scan.Band),
		analysis.WithPeakDetector(detector),
		analysis.WithMaskEvaluator(evaluator))
	if err != nil {
		return fmt.Errorf("creating analysis engine: %w", err)
	}

	sink := display.NewLogSink(logger.With(slog.String("component", "display")))

	loop, err := NewLoop(config, device, engine, sink, logger.With(slog.String("component", "loop")))
	if err != nil {
		return err
	}

	if config.Storage.Enabled {
		store, err := createStorage(&config.Storage)
		if err != nil {
			return fmt.Errorf("creating storage: %w", err)
		}
		defer store.Close()

		sessionID, err := store.CreateSession(ctx, string(config.Scan.Band), deviceID, config)
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		loop.Record(store, sessionID)

		logger.Info("recording session", slog.Int64("session", sessionID))
	}

	// SIGUSR1 resumes a loop paused on a mask violation.
	resume := make(chan os.Signal, 1)
	signal.Notify(resume, syscall.SIGUSR1)
	defer signal.Stop(resume)
	go func() {
		for range resume {
			loop.Resume()
		}
	}()

	return loop.Run(ctx)
}

func simulatorOptions(config *Config) []func(*rsa.Simulator) {
	var options []func(*rsa.Simulator)
	for _, e := range config.Device.Emitters {
		options = append(options, rsa.WithEmitter(rsa.Emitter{
			Frequency: e.Frequency,
			Power:     e.Power,
			Width:     e.Width,
		}))
	}
	return options
}

func detectorOptions(config *Config) []func(*analysis.PeakDetector) {
	options := []func(*analysis.PeakDetector){
		analysis.WithThreshold(config.Analysis.PeakThreshold),
		analysis.WithMinPeakSpacing(config.Analysis.MinPeakSpacing),
	}
	if config.Analysis.SmoothingWindow > 0 {
		options = append(options, analysis.WithSmoothingWindow(config.Analysis.SmoothingWindow))
	}
	if config.Analysis.AdaptiveThreshold {
		options = append(options, analysis.WithAdaptiveThreshold())
	}
	return options
}

func createStorage(config *StorageConfig) (*storage.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	dbDir := filepath.Join(wd, dataDir)

	stat, err := os.Stat(dbDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbDir, err)
		}
		return nil, fmt.Errorf("inspecting storage directory '%s': %w", dbDir, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbDir)
	}

	dbPath := filepath.Join(dbDir, fmt.Sprintf("scan_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.New(dbPath), nil
}
