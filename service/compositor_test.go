package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

var red = color.NRGBA{R: 220, G: 20, B: 20, A: 255}

func encodeFixture(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, red)
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func fixturePhoto(t *testing.T, id string, w, h int) models.SourcePhoto {
	t.Helper()
	return models.SourcePhoto{ID: id, DisplayName: id, MimeType: "image/jpeg", Width: w, Height: h, Data: encodeFixture(t, w, h, imaging.JPEG)}
}

func decodeResult(t *testing.T, r *models.CompositionResult) image.Image {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(r.Raster))
	require.NoError(t, err)
	return img
}

func rgb(img image.Image, x, y int) (uint8, uint8, uint8) {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return c.R, c.G, c.B
}

func TestRenderProducesCanvasOfSize(t *testing.T) {
	photo := fixturePhoto(t, "p1", 300, 200)
	for _, size := range catalog.Default().All() {
		result, err := Render(photo, size, models.DefaultCopySettings(), 0.1)
		require.NoError(t, err, size.ID)

		img := decodeResult(t, result)
		assert.Equal(t, result.PixelWidth, img.Bounds().Dx(), size.ID)
		assert.Equal(t, result.PixelHeight, img.Bounds().Dy(), size.ID)
		assert.Equal(t, "image/jpeg", result.MimeType)
		assert.Equal(t, size.ID, result.SizeID)
		assert.Equal(t, DefaultQuality, result.QualityFactor)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	photo := fixturePhoto(t, "p1", 320, 240)
	size, _ := catalog.Default().Lookup("kiosco")
	settings := settingsWith(models.MarginWhiteNarrow, 90, models.FitFit)

	a, err := Render(photo, size, settings, 0.1)
	require.NoError(t, err)
	b, err := Render(photo, size, settings, 0.1)
	require.NoError(t, err)
	assert.Equal(t, a.Raster, b.Raster)
}

func TestRenderFullScaleIsDeterministic(t *testing.T) {
	photo := fixturePhoto(t, "p1", 400, 300)
	size, _ := catalog.Default().Lookup("kiosco")
	settings := settingsWith(models.MarginBlackNarrow, 270, models.FitFill)

	a, err := Render(photo, size, settings, 1)
	require.NoError(t, err)
	b, err := Render(photo, size, settings, 1)
	require.NoError(t, err)

	assert.Equal(t, 1181, a.PixelWidth)
	assert.Equal(t, 1772, a.PixelHeight)
	img := decodeResult(t, a)
	assert.Equal(t, 1181, img.Bounds().Dx())
	assert.Equal(t, 1772, img.Bounds().Dy())
	assert.Equal(t, a.Raster, b.Raster)
}

// splitPhoto is a landscape photo with a red left half and a blue right half.
func splitPhoto(t *testing.T) models.SourcePhoto {
	t.Helper()
	img := imaging.New(200, 100, color.NRGBA{R: 255, A: 255})
	img = imaging.Paste(img, imaging.New(100, 100, color.NRGBA{B: 255, A: 255}), image.Pt(100, 0))
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return models.SourcePhoto{ID: "split", Data: buf.Bytes()}
}

func TestRenderRotatesClockwise(t *testing.T) {
	size, _ := catalog.Default().Lookup("kiosco")

	for _, tc := range []struct {
		rotation int
		topRed   bool
		topName  string
	}{
		{90, true, "left half goes to the top"},
		{270, false, "left half goes to the bottom"},
	} {
		result, err := Render(splitPhoto(t), size, settingsWith(models.MarginNone, tc.rotation, models.FitFill), 0.2)
		require.NoError(t, err)
		img := decodeResult(t, result)
		midX := img.Bounds().Dx() / 2

		topR, _, topB := rgb(img, midX, img.Bounds().Dy()/4)
		bottomR, _, bottomB := rgb(img, midX, img.Bounds().Dy()*3/4)
		if tc.topRed {
			assert.Greater(t, int(topR), 200, tc.topName)
			assert.Less(t, int(topB), 60, tc.topName)
			assert.Greater(t, int(bottomB), 200, tc.topName)
			assert.Less(t, int(bottomR), 60, tc.topName)
		} else {
			assert.Greater(t, int(topB), 200, tc.topName)
			assert.Less(t, int(topR), 60, tc.topName)
			assert.Greater(t, int(bottomR), 200, tc.topName)
			assert.Less(t, int(bottomB), 60, tc.topName)
		}
	}
}

func TestRenderPaintsBlackMargins(t *testing.T) {
	photo := fixturePhoto(t, "p1", 300, 450)
	size, _ := catalog.Default().Lookup("kiosco")

	result, err := Render(photo, size, settingsWith(models.MarginBlackWide, 0, models.FitFill), 0.1)
	require.NoError(t, err)
	img := decodeResult(t, result)

	r, g, b := rgb(img, 2, 2)
	assert.Less(t, int(r), 40)
	assert.Less(t, int(g), 40)
	assert.Less(t, int(b), 40)

	r, g, _ = rgb(img, img.Bounds().Dx()/2, img.Bounds().Dy()/2)
	assert.Greater(t, int(r), 150)
	assert.Less(t, int(g), 80)
}

func TestRenderFitLeavesWhiteAroundLandscapePhoto(t *testing.T) {
	photo := fixturePhoto(t, "p1", 200, 100)
	size, _ := catalog.Default().Lookup("kiosco")

	result, err := Render(photo, size, settingsWith(models.MarginWhiteNarrow, 0, models.FitFit), 0.1)
	require.NoError(t, err)
	img := decodeResult(t, result)

	r, g, b := rgb(img, img.Bounds().Dx()/2, 30)
	assert.Greater(t, int(r), 220)
	assert.Greater(t, int(g), 220)
	assert.Greater(t, int(b), 220)
}

func TestRenderReadsPNG(t *testing.T) {
	photo := models.SourcePhoto{ID: "png", Data: encodeFixture(t, 120, 80, imaging.PNG)}
	size, _ := catalog.Default().Lookup("square-small")

	result, err := Render(photo, size, models.DefaultCopySettings(), 0.1)
	require.NoError(t, err)
	assert.Equal(t, 118, result.PixelWidth)
	assert.Equal(t, 118, result.PixelHeight)
}

func TestRenderReportsUndecodablePhoto(t *testing.T) {
	size, _ := catalog.Default().Lookup("kiosco")

	_, err := Render(models.SourcePhoto{ID: "bad", Data: []byte("not an image")}, size, models.DefaultCopySettings(), 0.1)
	var decodeErr *pkgerrors.ImageDecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "bad", decodeErr.PhotoID)

	_, err = Render(models.SourcePhoto{ID: "empty"}, size, models.DefaultCopySettings(), 0.1)
	assert.True(t, errors.As(err, &decodeErr))
}

func TestRenderWithQuality(t *testing.T) {
	photo := fixturePhoto(t, "p1", 300, 200)
	size, _ := catalog.Default().Lookup("medium")

	result, err := Render(photo, size, models.DefaultCopySettings(), 0.1, WithQuality(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.QualityFactor)

	// out of range is ignored
	result, err = Render(photo, size, models.DefaultCopySettings(), 0.1, WithQuality(3))
	require.NoError(t, err)
	assert.Equal(t, DefaultQuality, result.QualityFactor)
}

type countingCache struct {
	*MemoryRenderCache
	gets, puts int
}

func (c *countingCache) Get(ctx context.Context, key RenderKey) (*models.CompositionResult, bool, error) {
	c.gets++
	return c.MemoryRenderCache.Get(ctx, key)
}

func (c *countingCache) Put(ctx context.Context, key RenderKey, result *models.CompositionResult) error {
	c.puts++
	return c.MemoryRenderCache.Put(ctx, key, result)
}

func TestCompositorRenderCopyUsesCache(t *testing.T) {
	cache := &countingCache{MemoryRenderCache: NewMemoryRenderCache(8)}
	c := NewCompositor(catalog.Default(), cache, 0)
	photo := fixturePhoto(t, "p1", 200, 300)
	cp := models.Copy{CopyID: "c1", SourcePhotoID: "p1", Settings: models.DefaultCopySettings()}

	first, err := c.RenderCopy(context.Background(), photo, "kiosco", cp, 0.1)
	require.NoError(t, err)
	second, err := c.RenderCopy(context.Background(), photo, "kiosco", cp, 0.1)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.puts)

	// new settings miss the cache
	cp.Settings.FitMode = models.FitFit
	_, err = c.RenderCopy(context.Background(), photo, "kiosco", cp, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts)
	assert.Equal(t, 2, cache.Len())
}

func TestCompositorRenderCopyRejectsUnknownSize(t *testing.T) {
	c := NewCompositor(catalog.Default(), nil, DefaultQuality)
	_, err := c.RenderCopy(context.Background(), fixturePhoto(t, "p1", 10, 10), "poster", models.Copy{CopyID: "c1", Settings: models.DefaultCopySettings()}, 1)

	var unknown *pkgerrors.UnknownSizeError
	assert.True(t, errors.As(err, &unknown))
}
