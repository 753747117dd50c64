package models

import "github.com/shopspring/decimal"

type PrintJobMode string

const (
	// PrintJobEager ships rendered compositions.
	PrintJobEager PrintJobMode = "eager"
	// PrintJobLazy ships raw settings; the lab renders downstream.
	PrintJobLazy PrintJobMode = "lazy"
)

// ProcessingHints mirror the settings in CSS-like terms for lab tooling that renders downstream.
type ProcessingHints struct {
	ObjectFit    string        `json:"objectFit"`
	Transform    string        `json:"transform"`
	BorderConfig *BorderConfig `json:"borderConfig"`
}

type BorderConfig struct {
	Width string      `json:"width"`
	Color MarginColor `json:"color"`
}

type PrintCopy struct {
	CopyID        string           `json:"copyId"`
	CopyIndex     int              `json:"copyIndex"`
	SourcePhotoID string           `json:"sourcePhotoId"`
	PhotoName     string           `json:"photoName,omitempty"`
	Settings      *CopySettings    `json:"settings,omitempty"`
	Processing    *ProcessingHints `json:"processing,omitempty"`
	Rendered      []byte           `json:"rendered,omitempty"`
}

type PrintLine struct {
	SizeID        string          `json:"sizeId"`
	SizeName      string          `json:"sizeName"`
	Dimensions    string          `json:"dimensions"`
	PixelWidth    int             `json:"pixelWidth"`
	PixelHeight   int             `json:"pixelHeight"`
	PricePerUnit  decimal.Decimal `json:"pricePerUnit"`
	IsPairPricing bool            `json:"isPairPricing"`
	TotalCopies   int             `json:"totalCopies"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Copies        []PrintCopy     `json:"copies"`
}

// PrintJob is the record handed to the print backend once an order is finalized.
type PrintJob struct {
	OrderID     string          `json:"orderId"`
	Mode        PrintJobMode    `json:"mode"`
	TotalCopies int             `json:"totalCopies"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
	Lines       []PrintLine     `json:"lines"`
}
