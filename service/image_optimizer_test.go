package service

import (
	"bytes"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "mifoto-print/errors"
)

func TestValidateUploadAcceptsImages(t *testing.T) {
	for _, tc := range []struct {
		format imaging.Format
		mime   string
	}{
		{imaging.JPEG, "image/jpeg"},
		{imaging.PNG, "image/png"},
	} {
		photo, err := ValidateUpload("IMG_2041.jpg", encodeFixture(t, 64, 48, tc.format))
		require.NoError(t, err)
		assert.Equal(t, tc.mime, photo.MimeType)
		assert.Equal(t, 64, photo.Width)
		assert.Equal(t, 48, photo.Height)
		assert.Equal(t, "IMG 2041", photo.DisplayName)
		assert.NotEmpty(t, photo.ID)
	}
}

// withOrientation inserts an EXIF APP1 segment carrying orientation right after the JPEG SOI marker.
func withOrientation(jpeg []byte, orientation byte) []byte {
	tiff := []byte{
		'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08, // big endian header, IFD at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	size := len(payload) + 2
	segment := append([]byte{0xff, 0xe1, byte(size >> 8), byte(size)}, payload...)

	out := append([]byte{}, jpeg[:2]...)
	out = append(out, segment...)
	return append(out, jpeg[2:]...)
}

func TestValidateUploadReportsOrientedDimensions(t *testing.T) {
	// orientation 6: stored landscape, displayed portrait
	data := withOrientation(encodeFixture(t, 64, 48, imaging.JPEG), 6)

	photo, err := ValidateUpload("portrait.jpg", data)
	require.NoError(t, err)
	assert.Equal(t, 48, photo.Width)
	assert.Equal(t, 64, photo.Height)

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Dx(), photo.Width)
}

func TestValidateUploadRejects(t *testing.T) {
	// ftyp box with a heic brand
	heic := append([]byte{0, 0, 0, 0x18}, []byte("ftypheic\x00\x00\x00\x00mif1heic")...)

	for name, data := range map[string][]byte{
		"empty": nil,
		"text":  []byte("hello, this is not a photo"),
		"heic":  heic,
		"pdf":   []byte("%PDF-1.4\n%âãÏÓ\n"),
	} {
		_, err := ValidateUpload(name, data)
		assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedUpload, name)
	}
}

func TestValidateUploadRejectsTruncatedJPEG(t *testing.T) {
	data := encodeFixture(t, 64, 48, imaging.JPEG)[:8]
	_, err := ValidateUpload("cut.jpg", data)
	assert.Error(t, err)
}

func TestOptimizeImage(t *testing.T) {
	data := encodeFixture(t, 800, 400, imaging.PNG)

	thumb, err := OptimizeImage(data, "thumb")
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())

	// smaller than the limit keeps its size
	preview, err := OptimizeImage(data, "preview")
	require.NoError(t, err)
	img, err = imaging.Decode(bytes.NewReader(preview))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())

	_, err = OptimizeImage(data, "poster")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}
