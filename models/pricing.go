package models

import "github.com/shopspring/decimal"

// PricingLine is the priced view of one line item.
type PricingLine struct {
	LineID      string          `json:"lineId"`
	SizeID      string          `json:"sizeId"`
	Qty         int             `json:"qty"`
	BilledUnits int             `json:"billedUnits"` // copies, or pairs for pair-priced sizes
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	RuleIDs     []string        `json:"ruleIds"`
}

// PricingBreakdown is the complete pricing of an order.
type PricingBreakdown struct {
	Total        decimal.Decimal `json:"total"`
	TotalCopies  int             `json:"totalCopies"`
	Lines        []PricingLine   `json:"lines"`
	AppliedRules []string        `json:"appliedRules"`
}
