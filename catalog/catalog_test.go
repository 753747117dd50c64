package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

func TestLookupBuiltinSizes(t *testing.T) {
	c := Default()

	tests := []struct {
		id     string
		width  int
		height int
		price  int64
		mode   models.PricingMode
	}{
		{"kiosco", 1181, 1772, 2520, models.PricingPerPair},
		{"medium", 1535, 2126, 1920, models.PricingPerUnit},
		{"large", 1772, 2362, 1920, models.PricingPerUnit},
		{"square-small", 1181, 1181, 2520, models.PricingPerPair},
		{"square-large", 1772, 1772, 2200, models.PricingPerUnit},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			size, err := c.Lookup(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.width, size.PixelWidth)
			assert.Equal(t, tt.height, size.PixelHeight)
			assert.True(t, size.UnitPrice.Equal(decimal.NewFromInt(tt.price)), "price %s", size.UnitPrice)
			assert.Equal(t, tt.mode, size.PricingMode)
		})
	}
}

func TestLookupUnknownSizeFailsLoudly(t *testing.T) {
	_, err := Default().Lookup("poster")
	require.Error(t, err)

	var unknown *pkgerrors.UnknownSizeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "poster", unknown.SizeID)
}

func TestLookupNormalizesID(t *testing.T) {
	size, err := Default().Lookup("  Kiosco ")
	require.NoError(t, err)
	assert.Equal(t, "kiosco", size.ID)
}

func TestIsPairPricing(t *testing.T) {
	c := Default()
	assert.True(t, c.IsPairPricing("kiosco"))
	assert.True(t, c.IsPairPricing("square-small"))
	assert.False(t, c.IsPairPricing("medium"))
	assert.False(t, c.IsPairPricing("large"))
	assert.False(t, c.IsPairPricing("square-large"))
	assert.False(t, c.IsPairPricing("unknown"))
}

func TestInitialQuantity(t *testing.T) {
	c := Default()
	assert.Equal(t, 2, c.InitialQuantity("kiosco"))
	assert.Equal(t, 1, c.InitialQuantity("large"))
}

func TestAllKeepsDisplayOrder(t *testing.T) {
	var ids []string
	for _, size := range Default().All() {
		ids = append(ids, size.ID)
	}
	assert.Equal(t, []string{"kiosco", "medium", "large", "square-small", "square-large"}, ids)
}

func TestNewRejectsInvalidSizes(t *testing.T) {
	_, err := New([]models.SizeDescriptor{{ID: "bad", PixelWidth: 0, PixelHeight: 10, UnitPrice: decimal.NewFromInt(1)}})
	assert.Error(t, err)

	_, err = New([]models.SizeDescriptor{{ID: "free", PixelWidth: 10, PixelHeight: 10}})
	assert.Error(t, err)

	dup := models.SizeDescriptor{ID: "a", PixelWidth: 10, PixelHeight: 10, UnitPrice: decimal.NewFromInt(1)}
	_, err = New([]models.SizeDescriptor{dup, dup})
	assert.Error(t, err)
}

func TestLoadFromFileOverridesPrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"prices": {"kiosco": "2600", "large": 2100}}`), 0o644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)

	kiosco, err := c.Lookup("kiosco")
	require.NoError(t, err)
	assert.Equal(t, "2600", kiosco.UnitPrice.String())
	assert.Equal(t, models.PricingPerPair, kiosco.PricingMode)

	large, err := c.Lookup("large")
	require.NoError(t, err)
	assert.Equal(t, "2100", large.UnitPrice.String())

	medium, err := c.Lookup("medium")
	require.NoError(t, err)
	assert.Equal(t, "1920", medium.UnitPrice.String())
}

func TestLoadFromFileRejectsBadOverrides(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"prices": {"poster": "100"}}`), 0o644))
	_, err := LoadFromFile(unknown)
	var unknownErr *pkgerrors.UnknownSizeError
	assert.ErrorAs(t, err, &unknownErr)

	negative := filepath.Join(dir, "negative.json")
	require.NoError(t, os.WriteFile(negative, []byte(`{"prices": {"kiosco": "-1"}}`), 0o644))
	_, err = LoadFromFile(negative)
	assert.Error(t, err)

	_, err = LoadFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
