package analysis

import (
	"errors"
	"fmt"

	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
	"github.com/YehoshuaShamir/RSA-API/internal/wifi"
)

// ErrNoChannelAssigned is returned when mask evaluation is requested without
// a concrete channel. Callers must resolve a channel (or a band default)
// before evaluating.
var ErrNoChannelAssigned = errors.New("no channel assigned")

// Violation records a bin whose power exceeds the mask threshold for its
// frequency offset from the channel center. Violations are transient per
// evaluation cycle.
type Violation struct {
	Frequency float64      // Hz
	Power     float64      // dBm measured
	Threshold float64      // dBm exceeded
	Zone      wifi.Zone    // Threshold category
	Channel   wifi.Channel // Channel the mask was evaluated against
}

// WithMask overrides the default per-zone thresholds.
func WithMask(mask wifi.Mask) func(*MaskEvaluator) {
	return func(e *MaskEvaluator) {
		e.mask = mask
	}
}

// MaskEvaluator checks trace bins against the per-zone emission mask of a
// channel.
type MaskEvaluator struct {
	mask wifi.Mask
}

// NewMaskEvaluator creates an evaluator with the default regulatory mask.
func NewMaskEvaluator(options ...func(*MaskEvaluator)) *MaskEvaluator {
	e := MaskEvaluator{mask: wifi.DefaultMask()}
	for _, option := range options {
		option(&e)
	}
	return &e
}

// EvaluateMask returns one Violation per bin whose power exceeds its zone
// threshold, in frequency order.
func (e *MaskEvaluator) EvaluateMask(t *spectrum.Trace, ch wifi.Channel) ([]Violation, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("%w: mask evaluation requires a concrete channel", ErrNoChannelAssigned)
	}
	if t == nil {
		return nil, nil
	}

	var violations []Violation
	for i, power := range t.Points {
		freq := t.FrequencyAt(i)
		zone := ch.ZoneFor(freq)
		threshold := e.mask.Threshold(zone)

		if power > threshold {
			violations = append(violations, Violation{
				Frequency: freq,
				Power:     power,
				Threshold: threshold,
				Zone:      zone,
				Channel:   ch,
			})
		}
	}
	return violations, nil
}
