package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
)

// DPI is the resolution every size is rendered at for printing.
const DPI = 300

// pairSizes are billed per pair of copies. The set is fixed; overrides cannot change it.
var pairSizes = map[string]bool{
	"kiosco":       true,
	"square-small": true,
}

var builtin = []models.SizeDescriptor{
	{ID: "kiosco", Name: "Foto Kiosco", Dimensions: "10x15 cm", WidthCm: 10, HeightCm: 15, PixelWidth: 1181, PixelHeight: 1772, UnitPrice: decimal.NewFromInt(2520)},
	{ID: "medium", Name: "Foto Kiosco", Dimensions: "13x18 cm", WidthCm: 13, HeightCm: 18, PixelWidth: 1535, PixelHeight: 2126, UnitPrice: decimal.NewFromInt(1920)},
	{ID: "large", Name: "Foto Kiosco", Dimensions: "15x20 cm", WidthCm: 15, HeightCm: 20, PixelWidth: 1772, PixelHeight: 2362, UnitPrice: decimal.NewFromInt(1920)},
	{ID: "square-small", Name: "Foto Kiosco", Dimensions: "10x10 cm", WidthCm: 10, HeightCm: 10, PixelWidth: 1181, PixelHeight: 1181, UnitPrice: decimal.NewFromInt(2520)},
	{ID: "square-large", Name: "Foto Kiosco", Dimensions: "15x15 cm", WidthCm: 15, HeightCm: 15, PixelWidth: 1772, PixelHeight: 1772, UnitPrice: decimal.NewFromInt(2200)},
}

// Catalog is the read-only registry of printable sizes. It is safe for concurrent use.
type Catalog struct {
	order []string
	sizes map[string]models.SizeDescriptor
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtin)
	if err != nil {
		// builtin table is static
		panic(err)
	}
	return c
}

// New builds a catalog from descriptors. Pricing mode is derived from the fixed pair-size set.
func New(sizes []models.SizeDescriptor) (*Catalog, error) {
	c := &Catalog{sizes: make(map[string]models.SizeDescriptor, len(sizes))}
	for _, size := range sizes {
		id := NormalizeSizeID(size.ID)
		if id == "" {
			return nil, fmt.Errorf("size id is required")
		}
		if size.PixelWidth <= 0 || size.PixelHeight <= 0 {
			return nil, fmt.Errorf("size %q must have positive pixel dimensions", id)
		}
		if !size.UnitPrice.IsPositive() {
			return nil, fmt.Errorf("size %q must have a positive unit price", id)
		}
		if _, dup := c.sizes[id]; dup {
			return nil, fmt.Errorf("duplicate size %q", id)
		}
		size.ID = id
		size.PricingMode = models.PricingPerUnit
		if pairSizes[id] {
			size.PricingMode = models.PricingPerPair
		}
		c.sizes[id] = size
		c.order = append(c.order, id)
	}
	return c, nil
}

// NormalizeSizeID trims and lowercases a size id.
func NormalizeSizeID(sizeID string) string {
	return strings.ToLower(strings.TrimSpace(sizeID))
}

// Lookup returns the size registered under sizeID. Unknown ids fail with
// UnknownSizeError; there is no default size.
func (c *Catalog) Lookup(sizeID string) (models.SizeDescriptor, error) {
	size, ok := c.sizes[NormalizeSizeID(sizeID)]
	if !ok {
		return models.SizeDescriptor{}, &pkgerrors.UnknownSizeError{SizeID: sizeID}
	}
	return size, nil
}

// IsPairPricing reports whether sizeID is billed per pair.
func (c *Catalog) IsPairPricing(sizeID string) bool {
	size, ok := c.sizes[NormalizeSizeID(sizeID)]
	return ok && size.PricingMode == models.PricingPerPair
}

// InitialQuantity is the quantity an upload starts with: a pair for pair-priced sizes.
func (c *Catalog) InitialQuantity(sizeID string) int {
	if c.IsPairPricing(sizeID) {
		return 2
	}
	return 1
}

// All returns every size in display order.
func (c *Catalog) All() []models.SizeDescriptor {
	out := make([]models.SizeDescriptor, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.sizes[id])
	}
	return out
}

// PriceOverrides is the JSON document accepted by LoadFromFile.
// Example: {"prices": {"kiosco": "2600", "medium": "1990"}}
type PriceOverrides struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}

// LoadFromFile returns the built-in catalog with unit prices replaced by the overrides in path.
// Pixel sizes and pricing modes are not configurable.
func LoadFromFile(path string) (*Catalog, error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prices file: %w", err)
	}

	var overrides PriceOverrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse prices file: %w", err)
	}

	c, err := WithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid prices file: %w", err)
	}
	logger.L().Infof("✅ Catalog: loaded %d price overrides from %s", len(overrides.Prices), path)
	return c, nil
}

// WithOverrides applies price overrides to the built-in sizes.
func WithOverrides(overrides PriceOverrides) (*Catalog, error) {
	if err := validateOverrides(overrides); err != nil {
		return nil, err
	}
	sizes := make([]models.SizeDescriptor, len(builtin))
	copy(sizes, builtin)
	for i := range sizes {
		if price, ok := overrides.Prices[sizes[i].ID]; ok {
			sizes[i].UnitPrice = price
		}
	}
	return New(sizes)
}

func validateOverrides(overrides PriceOverrides) error {
	known := make(map[string]bool, len(builtin))
	for _, size := range builtin {
		known[size.ID] = true
	}
	for id, price := range overrides.Prices {
		if !known[id] {
			return &pkgerrors.UnknownSizeError{SizeID: id}
		}
		if !price.IsPositive() {
			return fmt.Errorf("price for %q must be positive, got %s", id, price)
		}
	}
	return nil
}
