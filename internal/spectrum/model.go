package spectrum

import (
	"time"
)

// ScanSession represents a single recorded scanning session. Each session
// captures metadata about when and how the scanning was performed.
type ScanSession struct {
	ID        int64     `json:"ID"`                      // Unique identifier for the session
	StartTime time.Time `json:"startTime"`               // When the scanning session began
	Band      string    `json:"band"`                    // Wi-Fi band under observation ("2.4GHz", "5GHz")
	DeviceID  string    `json:"deviceID"`                // Identifier of the analyzer (e.g., serial number)
	Config    *string   `json:"config,string,omitempty"` // Optional acquisition settings in JSON format
}

// SpectralPoint represents a single measurement at a specific frequency.
type SpectralPoint struct {
	Frequency float64  `json:"frequency"`       // Center frequency in Hz
	Power     *float64 `json:"power,omitempty"` // Measured power level in dBm (nil if measurement invalid)
	BinWidth  float64  `json:"binWidth"`        // Frequency bin width in Hz
}

// SpectralSpan represents a complete trace recorded at a point in time:
// an ordered sequence of measurements across a frequency range.
type SpectralSpan struct {
	Timestamp      time.Time       `json:"timestamp"`         // When this span was taken
	FrequencyStart float64         `json:"frequencyStart"`    // Start frequency of the span in Hz
	FrequencyEnd   float64         `json:"frequencyEnd"`      // End frequency of the span in Hz
	Samples        []SpectralPoint `json:"samples,omitempty"` // Ordered sequence of measurements
}
