package models

// CompositionResult is a rendered print, ready for the lab.
type CompositionResult struct {
	SizeID        string  `json:"sizeId"`
	PixelWidth    int     `json:"pixelWidth"`
	PixelHeight   int     `json:"pixelHeight"`
	MimeType      string  `json:"mimeType"`
	QualityFactor float64 `json:"qualityFactor"`
	Raster        []byte  `json:"-"`
}
