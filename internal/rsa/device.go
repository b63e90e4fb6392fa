package rsa

import (
	"context"
	"errors"

	"github.com/YehoshuaShamir/RSA-API/internal/spectrum"
)

var (
	// ErrDeviceNotFound is returned when no analyzer answers on the USB
	// bus.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrAcquisitionTimeout is returned when a trace does not become ready
	// within the caller's deadline. A single timeout does not abort the
	// session; the loop retries on the next cycle.
	ErrAcquisitionTimeout = errors.New("acquisition timeout")
)

// Acquirer is the hardware collaborator boundary: configure acquisition
// parameters, then pull one power-vs-frequency trace per call. AcquireTrace
// blocks on device I/O and honors context cancellation; callers apply a
// per-cycle deadline so a stalled device cannot freeze the loop.
type Acquirer interface {
	// Configure validates and applies acquisition settings. Out-of-range
	// values fail with ErrInvalidConfiguration before touching hardware.
	Configure(settings Settings) error

	// AcquireTrace captures a single trace with the current settings.
	// Returns ErrDeviceNotFound if the device vanished and
	// ErrAcquisitionTimeout when the context deadline expires first.
	AcquireTrace(ctx context.Context) (*spectrum.Trace, error)

	// Close releases the device handle. Safe to call more than once.
	Close() error
}
