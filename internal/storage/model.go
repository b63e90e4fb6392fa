package storage

import (
	"database/sql"
	"time"
)

type sessionData struct {
	ID        int64
	StartTime time.Time
	Band      string
	DeviceID  string
	Config    sql.NullString
}

type sampleData struct {
	SessionID int64
	Timestamp time.Time
	Frequency float64
	BinWidth  float64
	Power     sql.NullFloat64
}

type peakData struct {
	SessionID int64
	Timestamp time.Time
	Frequency float64
	Power     float64
	Strength  string
	Channel   sql.NullInt64
}

type violationData struct {
	SessionID int64
	Timestamp time.Time
	Frequency float64
	Power     float64
	Threshold float64
	Zone      string
	Channel   sql.NullInt64
}

// PeakRecord is a stored peak read back from a session.
type PeakRecord struct {
	Timestamp time.Time
	Frequency float64 // Hz
	Power     float64 // dBm
	Strength  string
	Channel   *int64 // nil when no channel was assigned
}

// ViolationRecord is a stored mask violation read back from a session.
type ViolationRecord struct {
	Timestamp time.Time
	Frequency float64 // Hz
	Power     float64 // dBm measured
	Threshold float64 // dBm exceeded
	Zone      string
	Channel   *int64
}
