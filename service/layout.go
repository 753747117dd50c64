package service

import (
	"fmt"
	"math"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

const (
	mmPerInch = 25.4
	// absorbs float noise so an exact fit is not rounded one pixel past the content area
	layoutEpsilon = 1e-6
)

// Layout is the geometry of one composition. All values are in output pixels.
type Layout struct {
	CanvasWidth  int
	CanvasHeight int

	MarginPixels    float64
	EffectiveWidth  float64
	EffectiveHeight float64

	// Source dimensions after rotation.
	SourceWidth  int
	SourceHeight int

	Scale        float64
	ScaledWidth  int
	ScaledHeight int

	// Visible part of the scaled image and its top-left corner on the canvas.
	DrawWidth  int
	DrawHeight int
	OffsetX    int
	OffsetY    int
}

// MarginPixels converts a margin width in millimeters to pixels at print DPI and outputScale.
func MarginPixels(mm, outputScale float64) float64 {
	return mm / mmPerInch * catalog.DPI * outputScale
}

func validScale(outputScale float64) bool {
	return !math.IsNaN(outputScale) && outputScale > 0 && outputScale <= 1
}

// ComputeLayout places a srcWidth x srcHeight image on the canvas of size.
func ComputeLayout(size models.SizeDescriptor, srcWidth, srcHeight int, settings models.CopySettings, outputScale float64) (Layout, error) {
	if !validScale(outputScale) {
		return Layout{}, fmt.Errorf("%w: got %v", pkgerrors.ErrInvalidScale, outputScale)
	}
	if err := settings.Validate(); err != nil {
		return Layout{}, err
	}
	if srcWidth <= 0 || srcHeight <= 0 {
		return Layout{}, pkgerrors.New(pkgerrors.CodeUnprocessable, fmt.Sprintf("source image has no pixels (%dx%d)", srcWidth, srcHeight))
	}

	l := Layout{
		CanvasWidth:  max(1, int(math.Round(float64(size.PixelWidth)*outputScale))),
		CanvasHeight: max(1, int(math.Round(float64(size.PixelHeight)*outputScale))),
	}
	if settings.Margins.HasMargin() {
		l.MarginPixels = MarginPixels(settings.Margins.WidthMillimeters(), outputScale)
	}
	l.EffectiveWidth = float64(l.CanvasWidth) - 2*l.MarginPixels
	l.EffectiveHeight = float64(l.CanvasHeight) - 2*l.MarginPixels
	if l.EffectiveWidth < 1 || l.EffectiveHeight < 1 {
		return Layout{}, &pkgerrors.InvalidMarginError{
			SizeID:          size.ID,
			MarginPixels:    l.MarginPixels,
			EffectiveWidth:  l.EffectiveWidth,
			EffectiveHeight: l.EffectiveHeight,
		}
	}

	l.SourceWidth, l.SourceHeight = srcWidth, srcHeight
	if settings.RotationDegrees == 90 || settings.RotationDegrees == 270 {
		l.SourceWidth, l.SourceHeight = srcHeight, srcWidth
	}

	sx := l.EffectiveWidth / float64(l.SourceWidth)
	sy := l.EffectiveHeight / float64(l.SourceHeight)
	if settings.FitMode == models.FitFit {
		l.Scale = math.Min(sx, sy)
		l.ScaledWidth = max(1, int(math.Floor(float64(l.SourceWidth)*l.Scale+layoutEpsilon)))
		l.ScaledHeight = max(1, int(math.Floor(float64(l.SourceHeight)*l.Scale+layoutEpsilon)))
	} else {
		l.Scale = math.Max(sx, sy)
		l.ScaledWidth = int(math.Ceil(float64(l.SourceWidth)*l.Scale - layoutEpsilon))
		l.ScaledHeight = int(math.Ceil(float64(l.SourceHeight)*l.Scale - layoutEpsilon))
	}

	// Fill overshoot is cropped to the content area left inside the margins.
	inset := int(math.Round(l.MarginPixels))
	contentW := max(1, l.CanvasWidth-2*inset)
	contentH := max(1, l.CanvasHeight-2*inset)
	l.DrawWidth = min(l.ScaledWidth, contentW)
	l.DrawHeight = min(l.ScaledHeight, contentH)
	l.OffsetX = (l.CanvasWidth - l.DrawWidth) / 2
	l.OffsetY = (l.CanvasHeight - l.DrawHeight) / 2
	return l, nil
}
