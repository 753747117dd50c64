package pricing

import (
	"github.com/shopspring/decimal"

	"mifoto-print/catalog"
	"mifoto-print/models"
)

// Rule ids reported in breakdowns.
const (
	RulePerUnit = "PER_UNIT"
	RulePerPair = "PAIR_PRICING"
)

// Engine prices line items using the catalog's pricing modes.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates a pricing engine over c.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// BilledUnits is the number of billable units for totalCopies of size:
// copies for per-unit sizes, pairs (odd leftover rounded up) for pair-priced sizes.
func BilledUnits(size models.SizeDescriptor, totalCopies int) int {
	if totalCopies <= 0 {
		return 0
	}
	if size.PricingMode == models.PricingPerPair {
		return (totalCopies + 1) / 2
	}
	return totalCopies
}

// Subtotal prices totalCopies of size. An odd leftover copy of a pair-priced size is billed as a full pair.
func Subtotal(size models.SizeDescriptor, totalCopies int) decimal.Decimal {
	return size.UnitPrice.Mul(decimal.NewFromInt(int64(BilledUnits(size, totalCopies))))
}

// PriceLine returns the pricing of one line item.
func (e *Engine) PriceLine(item models.CartLineItem) (models.PricingLine, error) {
	size, err := e.catalog.Lookup(item.SizeID)
	if err != nil {
		return models.PricingLine{}, err
	}
	qty := len(item.Entries)
	rule := RulePerUnit
	if size.IsPairPricing() {
		rule = RulePerPair
	}
	return models.PricingLine{
		LineID:      item.ID,
		SizeID:      size.ID,
		Qty:         qty,
		BilledUnits: BilledUnits(size, qty),
		UnitPrice:   size.UnitPrice,
		LineTotal:   Subtotal(size, qty),
		RuleIDs:     []string{rule},
	}, nil
}

// CalculateOrderPricing prices every line item of order.
func (e *Engine) CalculateOrderPricing(order models.Order) (*models.PricingBreakdown, error) {
	breakdown := &models.PricingBreakdown{
		Total:        decimal.Zero,
		Lines:        []models.PricingLine{},
		AppliedRules: []string{},
	}
	applied := map[string]bool{}

	for _, item := range order.Items {
		line, err := e.PriceLine(item)
		if err != nil {
			return nil, err
		}
		breakdown.Total = breakdown.Total.Add(line.LineTotal)
		breakdown.TotalCopies += line.Qty
		breakdown.Lines = append(breakdown.Lines, line)
		for _, rule := range line.RuleIDs {
			if !applied[rule] {
				applied[rule] = true
				breakdown.AppliedRules = append(breakdown.AppliedRules, rule)
			}
		}
	}
	return breakdown, nil
}
