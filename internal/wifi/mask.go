package wifi

// Zone classifies a frequency bin by its distance from a channel center.
type Zone string

const (
	ZoneCenter   Zone = "center"   // within half the channel bandwidth
	ZoneAdjacent Zone = "adjacent" // within one channel bandwidth
	ZoneFar      Zone = "far"      // beyond one channel bandwidth
)

// Mask holds the per-zone emission thresholds in dBm. A bin violates the
// mask when its power exceeds the threshold of its zone.
type Mask struct {
	Center   float64 `yaml:"center" json:"center"`
	Adjacent float64 `yaml:"adjacent" json:"adjacent"`
	Far      float64 `yaml:"far" json:"far"`
}

// DefaultMask returns the regulatory thresholds applied to both bands.
func DefaultMask() Mask {
	return Mask{
		Center:   -40,
		Adjacent: -50,
		Far:      -60,
	}
}

// ZoneFor classifies the absolute offset of a frequency from a channel
// center.
func (c Channel) ZoneFor(freq float64) Zone {
	offset := freq - c.CenterFrequency
	if offset < 0 {
		offset = -offset
	}
	switch {
	case offset <= c.Bandwidth/2:
		return ZoneCenter
	case offset <= c.Bandwidth:
		return ZoneAdjacent
	default:
		return ZoneFar
	}
}

// Threshold returns the mask threshold for a zone in dBm.
func (m Mask) Threshold(zone Zone) float64 {
	switch zone {
	case ZoneCenter:
		return m.Center
	case ZoneAdjacent:
		return m.Adjacent
	default:
		return m.Far
	}
}
