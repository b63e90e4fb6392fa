package app

import (
	"fmt"
	"image"
	"image/draw"
	"time"
)

const (
	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	defaultTimeFormat     = "15:04"
	defaultDatetimeFormat = time.DateTime
	defaultFontSize       = 12.0
)

// BorderConfig defines the white space around the spectrogram.
type BorderConfig struct {
	Top    int // Space for the frequency scale
	Left   int // Space for the time scale
	Bottom int // Space for the information bar
	Right  int // Right padding
}

// RenderConfig holds spectrogram visualization options.
type RenderConfig struct {
	TimeFormat     string
	DatetimeFormat string
	Location       *time.Location

	FontPath string // TTF file for annotations
	FontSize float64

	ColorTheme    ColorTheme
	NoAnnotations bool

	BorderConfig BorderConfig
}

// SpectrumRenderer draws accumulated spectrum data as an annotated image.
type SpectrumRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewSpectrumRenderer creates a renderer, filling zero config values with
// defaults.
func NewSpectrumRenderer(config RenderConfig) (*SpectrumRenderer, error) {
	if config.TimeFormat == "" {
		config.TimeFormat = defaultTimeFormat
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &SpectrumRenderer{config: config}, nil
}

// Render creates an image of the spectrum data with annotations.
func (r *SpectrumRenderer) Render(spec *SpectrumData) (*image.RGBA, error) {
	fullWidth := spec.Width + r.config.BorderConfig.Left + r.config.BorderConfig.Right
	fullHeight := spec.Height + r.config.BorderConfig.Top + r.config.BorderConfig.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Spectrum area maps 1:1, one pixel per bin and span.
	spectrumArea := image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.BorderConfig.Left+spec.Width,
		r.config.BorderConfig.Top+spec.Height,
	)

	bounds := spec.BoundsTracker.Current()
	if r.colorMap == nil {
		r.colorMap = NewColorMapper(r.config.ColorTheme, bounds)
	} else {
		r.colorMap.UpdateBounds(bounds)
	}

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(annotatorConfig{
			TimeFormat:     r.config.TimeFormat,
			DatetimeFormat: r.config.DatetimeFormat,
			Location:       r.config.Location,
			FontPath:       r.config.FontPath,
			FontSize:       r.config.FontSize,
			Borders:        r.config.BorderConfig,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		// Annotations first; the spectrum overwrites any overlap.
		if err = ann.annotate(img, spec); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	r.renderSpectrum(img, spectrumArea, spec)
	return img, nil
}

func (r *SpectrumRenderer) renderSpectrum(img *image.RGBA, area image.Rectangle, spec *SpectrumData) {
	for y, span := range spec.Spans {
		imgY := area.Min.Y + y
		for x, power := range span {
			if power != nil {
				img.Set(area.Min.X+x, imgY, r.colorMap.GetColor(power))
			}
		}
	}
}
