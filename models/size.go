package models

import "github.com/shopspring/decimal"

// PricingMode tells how copies of a size are billed.
type PricingMode string

const (
	PricingPerUnit PricingMode = "per_unit"
	PricingPerPair PricingMode = "per_pair"
)

// SizeDescriptor describes one printable size at 300 DPI.
type SizeDescriptor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Dimensions  string          `json:"dimensions"` // e.g. "10x15 cm"
	WidthCm     float64         `json:"widthCm"`
	HeightCm    float64         `json:"heightCm"`
	PixelWidth  int             `json:"pixelWidth"`
	PixelHeight int             `json:"pixelHeight"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	PricingMode PricingMode     `json:"pricingMode"`
}

func (s SizeDescriptor) IsPairPricing() bool {
	return s.PricingMode == PricingPerPair
}
