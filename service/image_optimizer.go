package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
	"mifoto-print/utils"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 50 << 20
	// MaxUploadDimension caps either side of an upload, in pixels.
	MaxUploadDimension = 12000

	// Quality settings
	qualityThumb   = 60
	qualityPreview = 80
	// Size settings (max dimension)
	maxSizeThumb   = 300
	maxSizePreview = 1920
)

var acceptedUploadTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ValidateUpload checks an uploaded file and returns it as a source photo with a fresh id.
// The type is sniffed from the content; the filename extension is ignored.
func ValidateUpload(filename string, data []byte) (models.SourcePhoto, error) {
	if len(data) == 0 {
		return models.SourcePhoto{}, fmt.Errorf("%w: empty file", pkgerrors.ErrUnsupportedUpload)
	}
	if len(data) > MaxUploadBytes {
		return models.SourcePhoto{}, fmt.Errorf("%w: %s exceeds %d MB", pkgerrors.ErrUnsupportedUpload, filename, MaxUploadBytes>>20)
	}

	mt := mimetype.Detect(data)
	if mt.Is("image/heic") || mt.Is("image/heif") {
		return models.SourcePhoto{}, fmt.Errorf("%w: HEIC photos are not supported, export them as JPEG", pkgerrors.ErrUnsupportedUpload)
	}
	if !mimetype.EqualsAny(mt.String(), acceptedUploadTypes...) {
		return models.SourcePhoto{}, fmt.Errorf("%w: %s has type %s", pkgerrors.ErrUnsupportedUpload, filename, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.SourcePhoto{}, &pkgerrors.ImageDecodeError{PhotoID: filename, Err: err}
	}
	if cfg.Width > MaxUploadDimension || cfg.Height > MaxUploadDimension {
		return models.SourcePhoto{}, fmt.Errorf("%w: %dx%d exceeds %d px", pkgerrors.ErrUnsupportedUpload, cfg.Width, cfg.Height, MaxUploadDimension)
	}
	// Width and Height are reported as displayed, after EXIF orientation, the same way Render sees the photo
	oriented, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return models.SourcePhoto{}, &pkgerrors.ImageDecodeError{PhotoID: filename, Err: err}
	}

	photo := models.SourcePhoto{
		ID:          uuid.NewString(),
		DisplayName: utils.DisplayName(filename),
		FileName:    filename,
		MimeType:    mt.String(),
		Width:       oriented.Bounds().Dx(),
		Height:      oriented.Bounds().Dy(),
		Data:        data,
	}
	logger.L().Infof("📸 Upload accepted: %s (%s, %dx%d)", photo.DisplayName, photo.MimeType, photo.Width, photo.Height)
	return photo, nil
}

// OptimizeImage produces a JPEG preview of imageData.
// variant: "thumb" or "preview"
func OptimizeImage(imageData []byte, variant string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var maxDim, quality int
	switch variant {
	case "thumb":
		maxDim, quality = maxSizeThumb, qualityThumb
	case "preview":
		maxDim, quality = maxSizePreview, qualityPreview
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown preview variant %q", variant))
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		// imaging keeps the aspect ratio when one side is 0
		if bounds.Dx() >= bounds.Dy() {
			img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	logger.L().Debugf("✓ Image optimized: variant=%s, quality=%d, output_size=%d bytes", variant, quality, buf.Len())
	return buf.Bytes(), nil
}
