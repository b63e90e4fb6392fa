package analysis

import "sync"

// HistoryCapacity is the number of peaks retained by the engine, matching
// the twenty-row peak table of the original instrument display.
const HistoryCapacity = 20

// peakHistory is a fixed-capacity FIFO of detected peaks: appending beyond
// capacity evicts the oldest entries first.
type peakHistory struct {
	mu       sync.Mutex
	entries  []Peak
	capacity int
}

func newPeakHistory(capacity int) *peakHistory {
	return &peakHistory{
		entries:  make([]Peak, 0, capacity),
		capacity: capacity,
	}
}

func (h *peakHistory) Append(peaks ...Peak) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, peaks...)
	if excess := len(h.entries) - h.capacity; excess > 0 {
		n := copy(h.entries, h.entries[excess:])
		h.entries = h.entries[:n]
	}
}

// Snapshot returns the retained peaks oldest first.
func (h *peakHistory) Snapshot() []Peak {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Peak, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *peakHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *peakHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}
