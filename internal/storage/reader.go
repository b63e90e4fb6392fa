package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
)

// ErrNoData indicates either that no spectrum data exists for the given
// parameters, or that all available data has been read from the iterator.
var ErrNoData = errors.New("no data available")

// WithMinFreq limits the iterator to samples at or above minFreq Hz.
func WithMinFreq(minFreq float64) func(*SpanIterator) {
	return func(i *SpanIterator) {
		i.minFreq = &minFreq
	}
}

// WithMaxFreq limits the iterator to samples at or below maxFreq Hz.
func WithMaxFreq(maxFreq float64) func(*SpanIterator) {
	return func(i *SpanIterator) {
		i.maxFreq = &maxFreq
	}
}

// WithFreqRange limits the iterator to samples within [minFreq, maxFreq].
func WithFreqRange(minFreq, maxFreq float64) func(*SpanIterator) {
	return func(i *SpanIterator) {
		i.minFreq = &minFreq
		i.maxFreq = &maxFreq
	}
}

// WithStartTime limits the iterator to spans at or after startTime.
func WithStartTime(startTime time.Time) func(*SpanIterator) {
	return func(i *SpanIterator) {
		i.startTime = &startTime
	}
}

// WithEndTime limits the iterator to spans at or before endTime.
func WithEndTime(endTime time.Time) func(*SpanIterator) {
	return func(i *SpanIterator) {
		i.endTime = &endTime
	}
}

// SpanIterator reads a recorded session back as a sequence of spectral
// spans, one per stored trace, grouped by timestamp in ascending order.
type SpanIterator struct {
	rows    *sql.Rows
	session *spectrum.ScanSession

	minFreq   *float64
	maxFreq   *float64
	startTime *time.Time
	endTime   *time.Time

	pending *pendingSample
	done    bool
}

type pendingSample struct {
	timestamp time.Time
	point     spectrum.SpectralPoint
}

// ReadSpectrum opens an iterator over the stored trace samples of a
// session. Returns ErrNoData if the session does not exist.
func (s *Store) ReadSpectrum(ctx context.Context, sessionID int64, options ...func(*SpanIterator)) (*SpanIterator, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %d", ErrNoData, sessionID)
	}

	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	iter := SpanIterator{session: session}
	for _, option := range options {
		option(&iter)
	}

	query, args := iter.buildQuery(sessionID)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}

	iter.rows = rows
	return &iter, nil
}

// Session returns metadata about the session being read.
func (i *SpanIterator) Session() *spectrum.ScanSession {
	return i.session
}

// Next returns the next spectral span, or ErrNoData when exhausted.
func (i *SpanIterator) Next() (*spectrum.SpectralSpan, error) {
	if i.done {
		return nil, ErrNoData
	}

	var span *spectrum.SpectralSpan
	appendPoint := func(ts time.Time, point spectrum.SpectralPoint) {
		if span == nil {
			span = &spectrum.SpectralSpan{
				Timestamp:      ts,
				FrequencyStart: point.Frequency,
			}
		}
		span.FrequencyEnd = point.Frequency
		span.Samples = append(span.Samples, point)
	}

	if i.pending != nil {
		appendPoint(i.pending.timestamp, i.pending.point)
		i.pending = nil
	}

	for i.rows.Next() {
		var data sampleData
		if err := i.rows.Scan(&data.Timestamp, &data.Frequency, &data.BinWidth, &data.Power); err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}

		point := spectrum.SpectralPoint{
			Frequency: data.Frequency,
			BinWidth:  data.BinWidth,
		}
		if data.Power.Valid {
			power := data.Power.Float64
			point.Power = &power
		}

		// A new timestamp starts the next span; hold the sample over.
		if span != nil && !data.Timestamp.Equal(span.Timestamp) {
			i.pending = &pendingSample{timestamp: data.Timestamp, point: point}
			return span, nil
		}
		appendPoint(data.Timestamp, point)
	}

	if err := i.rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating samples: %w", err)
	}

	i.done = true
	if span == nil {
		return nil, ErrNoData
	}
	return span, nil
}

// Close releases the iterator's database resources.
func (i *SpanIterator) Close() error {
	if i.rows == nil {
		return nil
	}
	return i.rows.Close()
}

func (i *SpanIterator) buildQuery(sessionID int64) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectSamplesSQL)

	args := []any{sessionID}
	if i.minFreq != nil {
		sb.WriteString(" AND frequency >= ?")
		args = append(args, *i.minFreq)
	}
	if i.maxFreq != nil {
		sb.WriteString(" AND frequency <= ?")
		args = append(args, *i.maxFreq)
	}
	if i.startTime != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, i.startTime.UTC())
	}
	if i.endTime != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, i.endTime.UTC())
	}
	sb.WriteString(" ORDER BY timestamp, frequency")

	return sb.String(), args
}
