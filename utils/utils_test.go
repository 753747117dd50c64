package utils

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"mifoto-print/models"
)

func TestFormatPrice(t *testing.T) {
	cases := map[string]string{
		"0":       "$0",
		"950":     "$950",
		"2520":    "$2.520",
		"38400":   "$38.400",
		"1234567": "$1.234.567",
		"2519.6":  "$2.520",
		"-5040":   "-$5.040",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPrice(decimal.RequireFromString(in)), in)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "IMG 2041 final", DisplayName("IMG_2041-final.JPG"))
	assert.Equal(t, "vacaciones", DisplayName("fotos/2024/vacaciones.jpeg"))
	assert.Equal(t, "playa", DisplayName(`C:\Users\ana\playa.png`))
	assert.Equal(t, "Foto", DisplayName(""))
	assert.Equal(t, "Foto", DisplayName(".jpg"))
	assert.Len(t, []rune(DisplayName(strings.Repeat("ñ", 100)+".jpg")), 60)
}

func TestParseMarginStyle(t *testing.T) {
	for in, want := range map[string]models.MarginStyle{
		"white-5":    models.MarginWhiteNarrow,
		"Blanco 5mm": models.MarginWhiteNarrow,
		"black_10":   models.MarginBlackWide,
		"negro 5":    models.MarginBlackNarrow,
		"sin bordes": models.MarginNone,
		"":           models.MarginNone,
	} {
		got, ok := ParseMarginStyle(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseMarginStyle("dorado 3")
	assert.False(t, ok)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Sin bordes", MapMarginStyleToLabel(models.MarginNone))
	assert.Equal(t, "Borde negro 10mm", MapMarginStyleToLabel(models.MarginBlackWide))
	assert.Equal(t, "Rellenar", MapFitModeToLabel(models.FitFill))
	assert.Equal(t, "odd", MapFitModeToLabel(models.FitMode("odd")))
}
