package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme selects the power-to-color gradient used for the spectrogram:
// - ClassicTheme: traditional blue-to-red spectrum display
// - GrayscaleTheme: monochrome, black to white
// - ThermalTheme: heat map, black through red and yellow
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"
	GrayscaleTheme ColorTheme = "grayscale"
	ThermalTheme   ColorTheme = "thermal"

	colorMapSize = 256
)

var validThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	ThermalTheme:   {},
}

// ColorMapper maps power values onto a pre-computed gradient. Bounds can be
// updated after construction; the gradient is rebuilt lazily per update.
type ColorMapper struct {
	colorMap      []color.Color
	theme         func(float64) color.Color
	powerPerIndex float64
	boundsMin     float64
}

// NewColorMapper builds a mapper for the given theme and power bounds.
func NewColorMapper(theme ColorTheme, bounds PowerBounds) *ColorMapper {
	cm := ColorMapper{
		colorMap: make([]color.Color, colorMapSize),
		theme:    themeGradient(theme),
	}
	cm.UpdateBounds(bounds)
	return &cm
}

// UpdateBounds recomputes the gradient for new power bounds.
func (cm *ColorMapper) UpdateBounds(bounds PowerBounds) {
	cm.boundsMin = bounds.Min
	cm.powerPerIndex = (bounds.Max - bounds.Min) / float64(len(cm.colorMap)-1)

	for i := range cm.colorMap {
		cm.colorMap[i] = cm.theme(float64(i) / float64(len(cm.colorMap)-1))
	}
}

// GetColor returns the gradient color for a power value. Readings outside the
// bounds clamp to the gradient ends; nil (no data) maps to the minimum.
func (cm *ColorMapper) GetColor(power *float64) color.Color {
	if power == nil {
		return cm.colorMap[0]
	}

	index := int((*power - cm.boundsMin) / cm.powerPerIndex)
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= len(cm.colorMap) {
		return cm.colorMap[len(cm.colorMap)-1]
	}
	return cm.colorMap[index]
}

func themeGradient(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme:
		return func(power float64) color.Color {
			v := uint8(math.Pow(power, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 255}
		}

	case ThermalTheme:
		return func(power float64) color.Color {
			switch {
			case power < 0.33:
				return color.RGBA{R: uint8(power * 3 * 255), A: 255}
			case power < 0.66:
				return color.RGBA{R: 255, G: uint8((power - 0.33) * 3 * 255), A: 255}
			default:
				return color.RGBA{R: 255, G: 255, B: uint8((power - 0.66) * 3 * 255), A: 255}
			}
		}

	default: // ClassicTheme
		return func(power float64) color.Color {
			// Hue runs from blue (weak) down to red (strong); value is
			// gamma-corrected so weak signals stay visible.
			return colorful.Hsv(240-power*240, 0.9+power*0.1, math.Pow(power, 0.7))
		}
	}
}
