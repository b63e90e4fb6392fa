package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/YehoshuaShamir/RSA-API/internal/analysis"
	"github.com/YehoshuaShamir/RSA-API/internal/rsa"
	"github.com/YehoshuaShamir/RSA-API/internal/wifi"
)

const (
	defaultInterval    = 250 * time.Millisecond
	minInterval        = 50 * time.Millisecond
	maxInterval        = 5 * time.Second
	defaultAcqTimeout  = 2 * time.Second
	defaultHoldWindow  = 10 * time.Second
	minHoldWindow      = time.Second
	maxHoldWindowLimit = 120 * time.Second

	defaultSpan = 40e6 // Hz, instrument maximum
)

// Duration wraps time.Duration with YAML support for "250ms" style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration: %w", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the scanner application configuration.
type Config struct {
	Settings Settings       `yaml:"settings"`
	Scan     ScanConfig     `yaml:"scan"`
	Device   DeviceConfig   `yaml:"device"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Storage  StorageConfig  `yaml:"storage"`
}

// Settings represents global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// SlogLevel parses the configured log level, defaulting to info.
func (s Settings) SlogLevel() (slog.Level, error) {
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("parsing log level: %w", err)
	}
	return level, nil
}

// ScanConfig selects what the scanner watches: a single channel, or a survey
// sweep across the whole band.
type ScanConfig struct {
	Band             wifi.Band `yaml:"band"`
	Channel          int       `yaml:"channel"` // ignored when survey is on
	Survey           bool      `yaml:"survey"`
	Interval         Duration  `yaml:"interval"`
	PauseOnViolation bool      `yaml:"pauseOnViolation"`
}

// DeviceConfig covers acquisition settings and the simulated RF environment.
type DeviceConfig struct {
	RefLevel           float64   `yaml:"refLevel"`
	Span               float64   `yaml:"span"`
	RBW                float64   `yaml:"rbw"`
	VBW                float64   `yaml:"vbw"`
	TraceLength        int       `yaml:"traceLength"`
	Window             string    `yaml:"window"`
	AcquisitionTimeout Duration  `yaml:"acquisitionTimeout"`
	Emitters           []Emitter `yaml:"emitters"`
}

// Emitter describes one simulated transmitter.
type Emitter struct {
	Frequency float64 `yaml:"frequency"` // Hz
	Power     float64 `yaml:"power"`     // dBm at center
	Width     float64 `yaml:"width"`     // Hz
}

// AnalysisConfig tunes peak detection and mask evaluation.
type AnalysisConfig struct {
	PeakThreshold float64 `yaml:"peakThreshold"` // dBm

	// AdaptiveThreshold raises the detection threshold to each trace's
	// estimated noise floor when that is above peakThreshold.
	AdaptiveThreshold bool `yaml:"adaptiveThreshold"`

	SmoothingWindow int      `yaml:"smoothingWindow"` // bins, 0 disables
	MinPeakSpacing  float64  `yaml:"minPeakSpacing"`  // Hz
	MaskCenter      float64  `yaml:"maskCenter"`      // dBm
	MaskAdjacent    float64  `yaml:"maskAdjacent"`    // dBm
	MaskFar         float64  `yaml:"maskFar"`         // dBm
	MaxHoldWindow   Duration `yaml:"maxHoldWindow"`   // 0 holds indefinitely
}

// Mask builds the configured spectral mask.
func (c AnalysisConfig) Mask() wifi.Mask {
	return wifi.Mask{
		Center:   c.MaskCenter,
		Adjacent: c.MaskAdjacent,
		Far:      c.MaskFar,
	}
}

// StorageConfig represents session recording settings.
type StorageConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DataDirectory string `yaml:"dataDirectory"`
}

// DefaultConfig returns a configuration watching 2.4 GHz channel 6 with the
// default detection thresholds and no recording.
func DefaultConfig() *Config {
	mask := wifi.DefaultMask()
	settings := rsa.DefaultSettings()

	return &Config{
		Settings: Settings{LogLevel: "info"},
		Scan: ScanConfig{
			Band:     wifi.Band24GHz,
			Channel:  6,
			Interval: Duration(defaultInterval),
		},
		Device: DeviceConfig{
			RefLevel:           settings.RefLevel,
			Span:               defaultSpan,
			RBW:                settings.RBW,
			VBW:                settings.VBW,
			TraceLength:        settings.TraceLength,
			Window:             string(settings.Window),
			AcquisitionTimeout: Duration(defaultAcqTimeout),
		},
		Analysis: AnalysisConfig{
			PeakThreshold:   analysis.DefaultPeakThreshold,
			MinPeakSpacing:  analysis.DefaultMinPeakSpacing,
			MaskCenter:      mask.Center,
			MaskAdjacent:    mask.Adjacent,
			MaskFar:         mask.Far,
			MaxHoldWindow:   Duration(defaultHoldWindow),
		},
		Storage: StorageConfig{DataDirectory: "data"},
	}
}

// LoadConfig reads and validates a YAML configuration file. Omitted fields
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks cross-field constraints on the configuration.
func (c *Config) Validate() error {
	if _, err := c.Settings.SlogLevel(); err != nil {
		return err
	}

	switch c.Scan.Band {
	case wifi.Band24GHz, wifi.Band5GHz:
	default:
		return fmt.Errorf("unknown band %q", c.Scan.Band)
	}

	if !c.Scan.Survey {
		table := wifi.NewTable()
		if _, err := table.LookupChannel(c.Scan.Band, c.Scan.Channel); err != nil {
			return fmt.Errorf("invalid scan target: %w", err)
		}
	}

	interval := time.Duration(c.Scan.Interval)
	if interval < minInterval || interval > maxInterval {
		return fmt.Errorf("scan interval %s out of range [%s, %s]", interval, minInterval, maxInterval)
	}

	if timeout := time.Duration(c.Device.AcquisitionTimeout); timeout <= 0 {
		return fmt.Errorf("acquisition timeout must be positive, got %s", timeout)
	}

	if window := time.Duration(c.Analysis.MaxHoldWindow); window != 0 &&
		(window < minHoldWindow || window > maxHoldWindowLimit) {
		return fmt.Errorf("max-hold window %s out of range [%s, %s]", window, minHoldWindow, maxHoldWindowLimit)
	}

	if c.Analysis.SmoothingWindow < 0 {
		return fmt.Errorf("smoothing window must not be negative, got %d", c.Analysis.SmoothingWindow)
	}
	if c.Analysis.MinPeakSpacing < 0 {
		return fmt.Errorf("minimum peak spacing must not be negative, got %f", c.Analysis.MinPeakSpacing)
	}

	// Acquisition settings are validated against instrument limits by the
	// device layer; run the same check here so bad configs fail at startup.
	if err := c.deviceSettings(0).Validate(); err != nil {
		return err
	}

	return nil
}

// deviceSettings builds RSA acquisition settings for the given center
// frequency. A zero center picks the configured channel's center.
func (c *Config) deviceSettings(centerFreq float64) rsa.Settings {
	if centerFreq == 0 {
		if c.Scan.Survey {
			start, _ := c.Scan.Band.Range()
			centerFreq = start + c.Device.Span/2
		} else {
			table := wifi.NewTable()
			if ch, err := table.LookupChannel(c.Scan.Band, c.Scan.Channel); err == nil {
				centerFreq = ch.CenterFrequency
			}
		}
	}

	settings := rsa.DefaultSettings()
	settings.CenterFrequency = centerFreq
	settings.Span = c.Device.Span
	settings.RefLevel = c.Device.RefLevel
	settings.RBW = c.Device.RBW
	settings.VBW = c.Device.VBW
	settings.TraceLength = c.Device.TraceLength
	if c.Device.Window != "" {
		settings.Window = rsa.Window(c.Device.Window)
	}
	return settings
}
