package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/YehoshuaShamir/RSA-API/internal/analysis"
	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
)

//go:embed schema.sql
var schemaSQL string

// Store persists scan sessions and per-cycle analysis output (trace
// samples, peaks, mask violations) to a sqlite database. Writes within one
// cycle are atomic. It is safe for concurrent use; the scanner writes from
// its single loop goroutine while readers may inspect recorded data.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store backed by the sqlite database at dbPath. The schema
// is initialized on the first write.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// CreateSession initializes a new scan session and returns its identifier.
// config can be a string, []byte or any JSON-serializable value.
func (s *Store) CreateSession(ctx context.Context, band, deviceID string, config any) (int64, error) {
	db, err := s.writer()
	if err != nil {
		return 0, err
	}

	var configJSON sql.NullString
	switch v := config.(type) {
	case nil:
	case string:
		configJSON = sql.NullString{String: v, Valid: true}
	case []byte:
		configJSON = sql.NullString{String: string(v), Valid: true}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return 0, fmt.Errorf("marshaling session config: %w", err)
		}
		configJSON = sql.NullString{String: string(data), Valid: true}
	}

	res, err := db.ExecContext(ctx, insertSessionSQL, band, deviceID, configJSON)
	if err != nil {
		return 0, fmt.Errorf("creating session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading session id: %w", err)
	}
	return id, nil
}

// Session retrieves a scan session by its ID, nil if not found.
func (s *Store) Session(ctx context.Context, id int64) (*spectrum.ScanSession, error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	var data sessionData
	err = db.QueryRowContext(ctx, selectSessionSQL, id).
		Scan(&data.ID, &data.StartTime, &data.Band, &data.DeviceID, &data.Config)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %d: %w", id, err)
	}
	return toScanSession(&data), nil
}

// Sessions returns all scan sessions ordered by start time.
func (s *Store) Sessions(ctx context.Context) (sessions []*spectrum.ScanSession, err error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data sessionData
		if err = rows.Scan(&data.ID, &data.StartTime, &data.Band, &data.DeviceID, &data.Config); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, toScanSession(&data))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, err
}

// StoreResult saves one analysis cycle: every trace bin, detected peak and
// mask violation, in a single transaction.
func (s *Store) StoreResult(ctx context.Context, sessionID int64, result *analysis.Result) (err error) {
	if result == nil || result.Trace == nil {
		return fmt.Errorf("cannot store nil result")
	}

	db, err := s.writer()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	if err = insertSamples(ctx, tx, sessionID, result.Trace); err != nil {
		return err
	}
	if err = insertPeaks(ctx, tx, sessionID, result.Peaks); err != nil {
		return err
	}
	if err = insertViolations(ctx, tx, sessionID, result.Timestamp, result.Violations); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing result: %w", err)
	}
	return nil
}

// Peaks returns all stored peaks of a session in time and frequency order.
func (s *Store) Peaks(ctx context.Context, sessionID int64) (peaks []PeakRecord, err error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectPeaksSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading peaks: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data peakData
		if err = rows.Scan(&data.Timestamp, &data.Frequency, &data.Power, &data.Strength, &data.Channel); err != nil {
			return nil, fmt.Errorf("scanning peak row: %w", err)
		}

		rec := PeakRecord{
			Timestamp: data.Timestamp,
			Frequency: data.Frequency,
			Power:     data.Power,
			Strength:  data.Strength,
		}
		if data.Channel.Valid {
			rec.Channel = &data.Channel.Int64
		}
		peaks = append(peaks, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating peaks: %w", err)
	}
	return peaks, err
}

// Violations returns all stored mask violations of a session in time and
// frequency order.
func (s *Store) Violations(ctx context.Context, sessionID int64) (violations []ViolationRecord, err error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectViolationsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading violations: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data violationData
		if err = rows.Scan(&data.Timestamp, &data.Frequency, &data.Power, &data.Threshold, &data.Zone, &data.Channel); err != nil {
			return nil, fmt.Errorf("scanning violation row: %w", err)
		}

		rec := ViolationRecord{
			Timestamp: data.Timestamp,
			Frequency: data.Frequency,
			Power:     data.Power,
			Threshold: data.Threshold,
			Zone:      data.Zone,
		}
		if data.Channel.Valid {
			rec.Channel = &data.Channel.Int64
		}
		violations = append(violations, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating violations: %w", err)
	}
	return violations, err
}

// Close releases both database connections. Safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.writeDB != nil {
			if err := s.writeDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if s.readDB != nil {
			if err := s.readDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *Store) writer() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", s.dbPath)
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening database: %w", err)
			return
		}
		if _, err = db.Exec(schemaSQL); err != nil {
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		db.SetMaxOpenConns(1) // sqlite allows a single writer
		s.writeDB = db
	})
	return s.writeDB, s.writeDBErr
}

func (s *Store) reader() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", s.dbPath+"?mode=ro")
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read database: %w", err)
			return
		}
		s.readDB = db
	})
	return s.readDB, s.readDBErr
}

func insertSamples(ctx context.Context, tx *sql.Tx, sessionID int64, t *spectrum.Trace) error {
	stmt, err := tx.PrepareContext(ctx, insertSampleSQL)
	if err != nil {
		return fmt.Errorf("preparing sample insert: %w", err)
	}
	defer stmt.Close()

	binWidth := t.BinWidth()
	for i, p := range t.Points {
		power := sql.NullFloat64{Float64: p, Valid: !math.IsNaN(p) && !math.IsInf(p, 0)}
		if _, err = stmt.ExecContext(ctx, sessionID, t.Timestamp.UTC(), t.FrequencyAt(i), binWidth, power); err != nil {
			return fmt.Errorf("storing sample: %w", err)
		}
	}
	return nil
}

func insertPeaks(ctx context.Context, tx *sql.Tx, sessionID int64, peaks []analysis.Peak) error {
	if len(peaks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, insertPeakSQL)
	if err != nil {
		return fmt.Errorf("preparing peak insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range peaks {
		var channel sql.NullInt64
		if p.Channel.Valid() {
			channel = sql.NullInt64{Int64: int64(p.Channel.Number), Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, sessionID, p.Timestamp.UTC(), p.Frequency, p.Power, string(p.Strength), channel); err != nil {
			return fmt.Errorf("storing peak: %w", err)
		}
	}
	return nil
}

func insertViolations(ctx context.Context, tx *sql.Tx, sessionID int64, timestamp time.Time, violations []analysis.Violation) error {
	if len(violations) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, insertViolationSQL)
	if err != nil {
		return fmt.Errorf("preparing violation insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range violations {
		var channel sql.NullInt64
		if v.Channel.Valid() {
			channel = sql.NullInt64{Int64: int64(v.Channel.Number), Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, sessionID, timestamp.UTC(), v.Frequency, v.Power, v.Threshold, string(v.Zone), channel); err != nil {
			return fmt.Errorf("storing violation: %w", err)
		}
	}
	return nil
}

func toScanSession(data *sessionData) *spectrum.ScanSession {
	session := spectrum.ScanSession{
		ID:        data.ID,
		StartTime: data.StartTime,
		Band:      data.Band,
		DeviceID:  data.DeviceID,
	}
	if data.Config.Valid {
		session.Config = &data.Config.String
	}
	return &session
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}
