package app

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/YehoshuaShamir/RSA-API/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.New(config.DBPath)
	defer store.Close()

	return renderSpectrum(ctx, store, config, logger)
}

func renderSpectrum(ctx context.Context, store *storage.Store, config *Config, logger *slog.Logger) error {
	var opts []func(*storage.SpanIterator)
	var filters []any
	switch {
	case config.MinFrequency != nil && config.MaxFrequency != nil:
		opts = append(opts, storage.WithFreqRange(*config.MinFrequency, *config.MaxFrequency))

		filters = append(filters,
			slog.String("minFreq", fmt.Sprintf("%0.2fHz", *config.MinFrequency)),
			slog.String("maxFreq", fmt.Sprintf("%0.2fHz", *config.MaxFrequency)))

	case config.MinFrequency != nil:
		opts = append(opts, storage.WithMinFreq(*config.MinFrequency))
		filters = append(filters, slog.String("minFreq", fmt.Sprintf("%0.2fHz", *config.MinFrequency)))

	case config.MaxFrequency != nil:
		opts = append(opts, storage.WithMaxFreq(*config.MaxFrequency))
		filters = append(filters, slog.String("maxFreq", fmt.Sprintf("%0.2fHz", *config.MaxFrequency)))
	}

	logger.Info("iterator configuration", filters...)

	iter, err := store.ReadSpectrum(ctx, config.SessionID, opts...)
	if err != nil {
		return err
	}
	defer iter.Close()

	session := iter.Session()
	logger.Info("reading session",
		slog.Int64("session", session.ID),
		slog.String("band", session.Band),
		slog.String("started", session.StartTime.In(config.TimeZone).Format(time.DateTime)))

	spec := NewSpectrumData(NewSmoothBounds(0.3))
	for {
		span, err := iter.Next()
		if errors.Is(err, storage.ErrNoData) {
			break
		}
		if err != nil {
			return err
		}
		spec.Update(span)
	}
	if spec.Height == 0 {
		return fmt.Errorf("%w: session %d has no stored traces", storage.ErrNoData, config.SessionID)
	}

	peaks, err := store.Peaks(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading peaks: %w", err)
	}
	violations, err := store.Violations(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading violations: %w", err)
	}
	logger.Info("session events",
		slog.Int("peaks", len(peaks)),
		slog.Int("violations", len(violations)))

	bounds := spec.BoundsTracker.Current()
	logger.Info("finished reading data points",
		slog.Group("stats",
			slog.String("minTimestamp", spec.TimestampStart.Local().Format(time.DateTime)),
			slog.String("maxTimestamp", spec.TimestampEnd.Local().Format(time.DateTime)),
			slog.String("minFreq", fmt.Sprintf("%0.2fHz", spec.FrequencyMin)),
			slog.String("maxFreq", fmt.Sprintf("%0.2fHz", spec.FrequencyMax)),
			slog.String("minPower", fmt.Sprintf("%0.2fdB", bounds.Min)),
			slog.String("maxPower", fmt.Sprintf("%0.2fdB", bounds.Max)),
		))

	renderer, err := NewSpectrumRenderer(RenderConfig{
		Location:      config.TimeZone,
		FontPath:      config.FontPath,
		ColorTheme:    config.Theme,
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating spectrum renderer: %w", err)
	}

	logger.Info("rendering spectrum",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", spec.Width),
			slog.Int("height", spec.Height),
		))

	img, err := renderer.Render(spec)
	if err != nil {
		return fmt.Errorf("rendering spectrum: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 98})
	}
	return err
}
