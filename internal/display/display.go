// Package display publishes analysis results to the operator. The default
// implementation writes structured log summaries; alternative sinks (UI
// bridges, network feeds) can implement Sink.
package display

import (
	"log/slog"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/YehoshuaShamir/RSA-API/internal/analysis"
)

const defaultMaxPeaks = 5

// Sink consumes analysis results as the scan loop produces them.
type Sink interface {
	Publish(result *analysis.Result)
}

// WithMaxPeaks limits how many of the strongest peaks a summary reports.
func WithMaxPeaks(n int) func(*LogSink) {
	return func(s *LogSink) {
		s.maxPeaks = n
	}
}

// LogSink summarizes each analysis cycle to a structured logger. Mask
// violations are reported at warning level, cycle summaries at debug.
type LogSink struct {
	logger   *slog.Logger
	maxPeaks int
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *slog.Logger, options ...func(*LogSink)) *LogSink {
	s := LogSink{
		logger:   logger,
		maxPeaks: defaultMaxPeaks,
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Publish logs a summary of the result.
func (s *LogSink) Publish(result *analysis.Result) {
	if result == nil {
		return
	}

	for _, v := range result.Violations {
		s.logger.Warn("mask violation",
			slog.String("channel", v.Channel.String()),
			slog.String("frequency", formatFrequency(v.Frequency)),
			slog.Float64("power", v.Power),
			slog.Float64("threshold", v.Threshold),
			slog.String("zone", string(v.Zone)))
	}

	attrs := []any{
		slog.Int("peaks", len(result.Peaks)),
		slog.Int("violations", len(result.Violations)),
	}
	if top := strongestPeaks(result.Peaks, 1); len(top) > 0 {
		p := top[0]
		attrs = append(attrs,
			slog.String("topFrequency", formatFrequency(p.Frequency)),
			slog.Float64("topPower", p.Power),
			slog.String("topStrength", string(p.Strength)))
		if p.Channel.Valid() {
			attrs = append(attrs, slog.Int("topChannel", p.Channel.Number))
		}
	}
	s.logger.Debug("analysis cycle", attrs...)

	for _, p := range strongestPeaks(result.Peaks, s.maxPeaks) {
		attrs := []any{
			slog.String("frequency", formatFrequency(p.Frequency)),
			slog.Float64("power", p.Power),
			slog.String("strength", string(p.Strength)),
		}
		if p.Channel.Valid() {
			attrs = append(attrs, slog.String("channel", p.Channel.String()))
		}
		s.logger.Debug("peak", attrs...)
	}
}

// strongestPeaks returns up to n peaks ordered by descending power.
func strongestPeaks(peaks []analysis.Peak, n int) []analysis.Peak {
	if len(peaks) == 0 || n <= 0 {
		return nil
	}

	sorted := make([]analysis.Peak, len(peaks))
	copy(sorted, peaks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Power > sorted[j].Power
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func formatFrequency(f float64) string {
	return humanize.SIWithDigits(f, 3, "Hz")
}
