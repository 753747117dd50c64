package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
)

// DefaultQuality is the JPEG quality factor of print renders.
const DefaultQuality = 0.95

type renderOptions struct {
	quality float64
}

type RenderOption func(*renderOptions)

// WithQuality sets the JPEG quality factor, in (0, 1].
func WithQuality(q float64) RenderOption {
	return func(o *renderOptions) {
		if q > 0 && q <= 1 {
			o.quality = q
		}
	}
}

// Render composes photo onto a print canvas of size. The result depends only on its
// inputs; identical inputs produce identical bytes.
func Render(photo models.SourcePhoto, size models.SizeDescriptor, settings models.CopySettings, outputScale float64, opts ...RenderOption) (*models.CompositionResult, error) {
	o := renderOptions{quality: DefaultQuality}
	for _, opt := range opts {
		opt(&o)
	}
	if !validScale(outputScale) {
		return nil, fmt.Errorf("%w: got %v", pkgerrors.ErrInvalidScale, outputScale)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	src, err := decodePhoto(photo)
	if err != nil {
		return nil, err
	}
	src = rotateClockwise(src, settings.RotationDegrees)

	// rotation already applied, so layout sees the rotated bounds
	upright := settings
	upright.RotationDegrees = 0
	layout, err := ComputeLayout(size, src.Bounds().Dx(), src.Bounds().Dy(), upright, outputScale)
	if err != nil {
		return nil, err
	}

	scaled := imaging.Resize(src, layout.ScaledWidth, layout.ScaledHeight, imaging.Lanczos)
	if layout.DrawWidth != layout.ScaledWidth || layout.DrawHeight != layout.ScaledHeight {
		scaled = imaging.CropCenter(scaled, layout.DrawWidth, layout.DrawHeight)
	}

	canvas := imaging.New(layout.CanvasWidth, layout.CanvasHeight, backgroundColor(settings.Margins))
	canvas = imaging.Paste(canvas, scaled, image.Pt(layout.OffsetX, layout.OffsetY))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(jpegQuality(o.quality))); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode composition")
	}

	return &models.CompositionResult{
		SizeID:        size.ID,
		PixelWidth:    layout.CanvasWidth,
		PixelHeight:   layout.CanvasHeight,
		MimeType:      "image/jpeg",
		QualityFactor: o.quality,
		Raster:        buf.Bytes(),
	}, nil
}

func decodePhoto(photo models.SourcePhoto) (image.Image, error) {
	if len(photo.Data) == 0 {
		return nil, &pkgerrors.ImageDecodeError{PhotoID: photo.ID, Err: fmt.Errorf("no image data")}
	}
	img, err := imaging.Decode(bytes.NewReader(photo.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &pkgerrors.ImageDecodeError{PhotoID: photo.ID, Err: err}
	}
	return img, nil
}

// rotateClockwise turns img by degrees clockwise. imaging rotates counter-clockwise.
func rotateClockwise(img image.Image, degrees int) image.Image {
	switch degrees {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	}
	return img
}

func backgroundColor(m models.MarginSpec) color.Color {
	if m.Color() == models.MarginColorBlack {
		return color.Black
	}
	return color.White
}

func jpegQuality(q float64) int {
	return max(1, min(100, int(math.Round(q*100))))
}

// Compositor renders copies of cart photos, reusing cached compositions.
type Compositor struct {
	catalog *catalog.Catalog
	cache   RenderCache
	quality float64
}

// NewCompositor creates a compositor. cache may be nil to always render.
func NewCompositor(c *catalog.Catalog, cache RenderCache, quality float64) *Compositor {
	if quality <= 0 || quality > 1 {
		quality = DefaultQuality
	}
	return &Compositor{catalog: c, cache: cache, quality: quality}
}

// RenderCopy renders one copy of photo in sizeID.
func (c *Compositor) RenderCopy(ctx context.Context, photo models.SourcePhoto, sizeID string, cp models.Copy, outputScale float64) (*models.CompositionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size, err := c.catalog.Lookup(sizeID)
	if err != nil {
		return nil, err
	}

	key := RenderKey{CopyID: cp.CopyID, SettingsHash: cp.Settings.Hash(), SizeID: size.ID, Scale: outputScale}
	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			logger.L().Warnf("⚠️  Render cache read failed for %s: %v", key, err)
		} else if ok {
			return cached, nil
		}
	}

	result, err := Render(photo, size, cp.Settings, outputScale, WithQuality(c.quality))
	if err != nil {
		logger.L().Errorf("❌ Render failed for copy %s (%s): %v", cp.CopyID, size.ID, err)
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, result); err != nil {
			logger.L().Warnf("⚠️  Render cache write failed for %s: %v", key, err)
		}
	}
	logger.L().Debugf("🖨️  Rendered copy %s at %dx%d", cp.CopyID, result.PixelWidth, result.PixelHeight)
	return result, nil
}
