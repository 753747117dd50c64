package models

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	pkgerrors "mifoto-print/errors"
)

type MarginStyle string

const (
	MarginNone        MarginStyle = "none"
	MarginWhiteNarrow MarginStyle = "white-5"
	MarginWhiteWide   MarginStyle = "white-10"
	MarginBlackNarrow MarginStyle = "black-5"
	MarginBlackWide   MarginStyle = "black-10"
)

type MarginColor string

const (
	MarginColorNone  MarginColor = "none"
	MarginColorWhite MarginColor = "#ffffff"
	MarginColorBlack MarginColor = "#000000"
)

// MarginSpec is the border printed around a photo.
type MarginSpec struct {
	Style MarginStyle
}

func (m MarginSpec) Valid() bool {
	switch m.Style {
	case MarginNone, MarginWhiteNarrow, MarginWhiteWide, MarginBlackNarrow, MarginBlackWide:
		return true
	}
	return false
}

func (m MarginSpec) HasMargin() bool {
	return m.Style != MarginNone && m.Style != ""
}

// WidthMillimeters is 5 for narrow, 10 for wide and 0 without margins.
func (m MarginSpec) WidthMillimeters() float64 {
	switch m.Style {
	case MarginWhiteNarrow, MarginBlackNarrow:
		return 5
	case MarginWhiteWide, MarginBlackWide:
		return 10
	}
	return 0
}

func (m MarginSpec) Color() MarginColor {
	switch m.Style {
	case MarginWhiteNarrow, MarginWhiteWide:
		return MarginColorWhite
	case MarginBlackNarrow, MarginBlackWide:
		return MarginColorBlack
	}
	return MarginColorNone
}

type marginJSON struct {
	Type  MarginStyle `json:"type"`
	Size  float64     `json:"size"`
	Color MarginColor `json:"color"`
}

// MarshalJSON writes the derived size and color next to the style, the shape the print lab reads.
func (m MarginSpec) MarshalJSON() ([]byte, error) {
	style := m.Style
	if style == "" {
		style = MarginNone
	}
	return json.Marshal(marginJSON{Type: style, Size: m.WidthMillimeters(), Color: m.Color()})
}

func (m *MarginSpec) UnmarshalJSON(data []byte) error {
	var style string
	if err := json.Unmarshal(data, &style); err == nil {
		m.Style = MarginStyle(style)
		return nil
	}
	var raw marginJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Style = raw.Type
	return nil
}

type FitMode string

const (
	FitFill FitMode = "fill"
	FitFit  FitMode = "fit"
)

// CopySettings are the per-copy edit choices.
type CopySettings struct {
	Margins         MarginSpec `json:"margins"`
	RotationDegrees int        `json:"rotation"`
	FitMode         FitMode    `json:"fit"`
}

// DefaultCopySettings matches the editor's initial state: no margins, no rotation, fill.
func DefaultCopySettings() CopySettings {
	return CopySettings{
		Margins:         MarginSpec{Style: MarginNone},
		RotationDegrees: 0,
		FitMode:         FitFill,
	}
}

func (s CopySettings) Validate() error {
	if !s.Margins.Valid() {
		return fmt.Errorf("%w: margin style %q", pkgerrors.ErrInvalidSettings, s.Margins.Style)
	}
	switch s.RotationDegrees {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: rotation %d is not one of 0, 90, 180, 270", pkgerrors.ErrInvalidSettings, s.RotationDegrees)
	}
	if s.FitMode != FitFill && s.FitMode != FitFit {
		return fmt.Errorf("%w: fit mode %q", pkgerrors.ErrInvalidSettings, s.FitMode)
	}
	return nil
}

// Hash is a stable digest of the settings, used to key rendered compositions.
func (s CopySettings) Hash() string {
	canonical := fmt.Sprintf("m=%s|r=%d|f=%s", s.Margins.Style, s.RotationDegrees, s.FitMode)
	return fmt.Sprintf("%016x", xxhash.Sum64String(canonical))
}

// SettingsPatch carries a partial settings mutation from the editor. Nil fields are left untouched.
type SettingsPatch struct {
	Margins  *MarginStyle `json:"margins,omitempty"`
	Rotation *int         `json:"rotation,omitempty"`
	Fit      *FitMode     `json:"fit,omitempty"`
}

func (p SettingsPatch) ApplyTo(s CopySettings) CopySettings {
	if p.Margins != nil {
		s.Margins = MarginSpec{Style: *p.Margins}
	}
	if p.Rotation != nil {
		s.RotationDegrees = *p.Rotation
	}
	if p.Fit != nil {
		s.FitMode = *p.Fit
	}
	return s
}
