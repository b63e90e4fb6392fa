package app

import (
	"fmt"
	"testing"
)

func TestColorMapperClamps(t *testing.T) {
	cm := NewColorMapper(ClassicTheme, PowerBounds{Min: -100, Max: -20})

	low, high := -150.0, 0.0
	if got := cm.GetColor(&low); got != cm.colorMap[0] {
		t.Errorf("GetColor(below bounds) = %v, want minimum color", got)
	}
	if got := cm.GetColor(&high); got != cm.colorMap[len(cm.colorMap)-1] {
		t.Errorf("GetColor(above bounds) = %v, want maximum color", got)
	}
	if got := cm.GetColor(nil); got != cm.colorMap[0] {
		t.Errorf("GetColor(nil) = %v, want minimum color", got)
	}
}

func TestColorMapperThemesDistinct(t *testing.T) {
	bounds := PowerBounds{Min: -100, Max: -20}
	mid := -40.0

	seen := make(map[string]ColorTheme)
	for theme := range validThemes {
		cm := NewColorMapper(theme, bounds)
		r, g, b, _ := cm.GetColor(&mid).RGBA()

		key := fmt.Sprintf("%d-%d-%d", r, g, b)
		if prev, ok := seen[key]; ok {
			t.Errorf("themes %s and %s produce identical colors for %v dBm", prev, theme, mid)
		}
		seen[key] = theme
	}
}
