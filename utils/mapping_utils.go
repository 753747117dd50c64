package utils

import (
	"strings"

	"mifoto-print/models"
)

// MapMarginStyleToLabel maps a margin style to the label shown in the editor.
func MapMarginStyleToLabel(style models.MarginStyle) string {
	labels := map[models.MarginStyle]string{
		models.MarginNone:        "Sin bordes",
		models.MarginWhiteNarrow: "Borde blanco 5mm",
		models.MarginWhiteWide:   "Borde blanco 10mm",
		models.MarginBlackNarrow: "Borde negro 5mm",
		models.MarginBlackWide:   "Borde negro 10mm",
	}
	if label, exists := labels[style]; exists {
		return label
	}
	return string(style)
}

// MapFitModeToLabel maps a fit mode to its editor label.
func MapFitModeToLabel(fit models.FitMode) string {
	switch fit {
	case models.FitFill:
		return "Rellenar"
	case models.FitFit:
		return "Ajustar"
	}
	return string(fit)
}

// ParseMarginStyle accepts a style code ("white-5") or its color/width parts in
// either language ("blanco 5", "black_10"). Input is normalized before mapping.
// ok is false when nothing matches.
func ParseMarginStyle(value string) (style models.MarginStyle, ok bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.NewReplacer("_", "-", " ", "-", "mm", "").Replace(v)

	aliases := map[string]models.MarginStyle{
		"":           models.MarginNone,
		"none":       models.MarginNone,
		"sin-bordes": models.MarginNone,
		"white-5":    models.MarginWhiteNarrow,
		"blanco-5":   models.MarginWhiteNarrow,
		"white-10":   models.MarginWhiteWide,
		"blanco-10":  models.MarginWhiteWide,
		"black-5":    models.MarginBlackNarrow,
		"negro-5":    models.MarginBlackNarrow,
		"black-10":   models.MarginBlackWide,
		"negro-10":   models.MarginBlackWide,
	}
	style, ok = aliases[v]
	return style, ok
}
