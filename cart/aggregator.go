package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
	"mifoto-print/pricing"
)

// Aggregator groups copies into priced line items. Every operation takes an Order value
// and returns a new one; the input is never modified.
type Aggregator struct {
	catalog *catalog.Catalog
	now     func() time.Time
	newID   func() string
}

func NewAggregator(c *catalog.Catalog) *Aggregator {
	return &Aggregator{
		catalog: c,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func (a *Aggregator) Catalog() *catalog.Catalog {
	return a.catalog
}

// NewOrder returns an empty order in the Building state.
func (a *Aggregator) NewOrder() models.Order {
	now := a.now().UTC()
	return models.Order{
		ID:         a.newID(),
		Status:     models.OrderBuilding,
		Items:      []models.CartLineItem{},
		GrandTotal: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddCopies adds copies printed in sizeID. Copies join the existing line item for that
// size; a new item is created only when none exists. A copy whose id is already present
// is merged: the same print (same settings) is kept once, a differently edited print is
// kept as well under a derived id.
func (a *Aggregator) AddCopies(order models.Order, sizeID string, copies []models.Copy) (models.Order, error) {
	if err := ensureMutable(order); err != nil {
		return order, err
	}
	size, err := a.catalog.Lookup(sizeID)
	if err != nil {
		return order, err
	}
	for _, c := range copies {
		if strings.TrimSpace(c.CopyID) == "" {
			return order, fmt.Errorf("%w: copy id is required", pkgerrors.ErrInvalidSettings)
		}
		if err := c.Settings.Validate(); err != nil {
			return order, fmt.Errorf("copy %s: %w", c.CopyID, err)
		}
	}

	out := order.Clone()
	reopen(&out)

	idx := out.ItemBySize(size.ID)
	if idx < 0 {
		out.Items = append(out.Items, models.CartLineItem{
			ID:       a.newID(),
			SizeID:   size.ID,
			Entries:  []models.LineEntry{},
			Subtotal: decimal.Zero,
		})
		idx = len(out.Items) - 1
	}
	item := &out.Items[idx]
	for _, c := range copies {
		mergeCopy(item, c)
	}

	return a.recompute(out)
}

// mergeCopy appends incoming to item unless the very same print is already there.
func mergeCopy(item *models.CartLineItem, incoming models.Copy) {
	if item.IndexOf(incoming.CopyID) < 0 {
		item.Entries = append(item.Entries, models.LineEntry{Copy: incoming})
		return
	}
	hash := incoming.Settings.Hash()
	for _, entry := range item.Entries {
		if sameOrigin(entry.Copy.CopyID, incoming.CopyID) && entry.Copy.Settings.Hash() == hash {
			return
		}
	}
	incoming.CopyID = derivedCopyID(item, incoming.CopyID)
	item.Entries = append(item.Entries, models.LineEntry{Copy: incoming})
}

func sameOrigin(entryID, copyID string) bool {
	return entryID == copyID || strings.HasPrefix(entryID, copyID+"~")
}

func derivedCopyID(item *models.CartLineItem, copyID string) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s~%d", copyID, n)
		if item.IndexOf(candidate) < 0 {
			return candidate
		}
	}
}

// RemoveCopy removes one copy. A line item left without copies is removed from the order.
func (a *Aggregator) RemoveCopy(order models.Order, lineItemID, copyID string) (models.Order, error) {
	if err := ensureMutable(order); err != nil {
		return order, err
	}
	idx := order.ItemIndex(lineItemID)
	if idx < 0 {
		return order, fmt.Errorf("%w: %s", pkgerrors.ErrLineItemNotFound, lineItemID)
	}
	pos := order.Items[idx].IndexOf(copyID)
	if pos < 0 {
		return order, fmt.Errorf("%w: %s", pkgerrors.ErrCopyNotFound, copyID)
	}

	out := order.Clone()
	reopen(&out)
	item := &out.Items[idx]
	item.Entries = append(item.Entries[:pos], item.Entries[pos+1:]...)
	return a.recompute(out)
}

// RemovePhoto removes every copy of sourcePhotoID from a line item.
func (a *Aggregator) RemovePhoto(order models.Order, lineItemID, sourcePhotoID string) (models.Order, error) {
	if err := ensureMutable(order); err != nil {
		return order, err
	}
	idx := order.ItemIndex(lineItemID)
	if idx < 0 {
		return order, fmt.Errorf("%w: %s", pkgerrors.ErrLineItemNotFound, lineItemID)
	}

	out := order.Clone()
	reopen(&out)
	item := &out.Items[idx]
	kept := item.Entries[:0]
	for _, entry := range item.Entries {
		if entry.Copy.SourcePhotoID != sourcePhotoID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(item.Entries) {
		return order, fmt.Errorf("%w: %s", pkgerrors.ErrPhotoNotFound, sourcePhotoID)
	}
	item.Entries = kept
	return a.recompute(out)
}

// RemoveLineItem drops an entire line item.
func (a *Aggregator) RemoveLineItem(order models.Order, lineItemID string) (models.Order, error) {
	if err := ensureMutable(order); err != nil {
		return order, err
	}
	idx := order.ItemIndex(lineItemID)
	if idx < 0 {
		return order, fmt.Errorf("%w: %s", pkgerrors.ErrLineItemNotFound, lineItemID)
	}

	out := order.Clone()
	reopen(&out)
	out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
	return a.recompute(out)
}

// AttachResult stores the rendered composition of a copy. Totals are unaffected.
func (a *Aggregator) AttachResult(order models.Order, lineItemID, copyID string, result *models.CompositionResult) (models.Order, error) {
	idx := order.ItemIndex(lineItemID)
	if idx < 0 {
		return order, fmt.Errorf("%w: %s", pkgerrors.ErrLineItemNotFound, lineItemID)
	}
	pos := order.Items[idx].IndexOf(copyID)
	if pos < 0 {
		return order, fmt.Errorf("%w: %s", pkgerrors.ErrCopyNotFound, copyID)
	}
	if result == nil || result.SizeID != order.Items[idx].SizeID {
		return order, fmt.Errorf("%w: result does not match line item size", pkgerrors.ErrMissingRender)
	}
	out := order.Clone()
	out.Items[idx].Entries[pos].Result = result
	return out, nil
}

// ValidateForCheckout fails with EmptyOrderError for an order without items and with
// OddPairQuantityError when a pair-priced item holds an odd number of copies.
// Pricing rounds odd pairs up; checkout does not.
func (a *Aggregator) ValidateForCheckout(order models.Order) error {
	if len(order.Items) == 0 {
		return &pkgerrors.EmptyOrderError{}
	}
	var odd []pkgerrors.OddPair
	for _, item := range order.Items {
		if a.catalog.IsPairPricing(item.SizeID) && len(item.Entries)%2 != 0 {
			odd = append(odd, pkgerrors.OddPair{SizeID: item.SizeID, TotalCopies: len(item.Entries)})
		}
	}
	if len(odd) > 0 {
		return &pkgerrors.OddPairQuantityError{Items: odd}
	}
	return nil
}

// GrandTotal sums the line item subtotals.
func GrandTotal(order models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, item := range order.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// TotalCopies sums the line item copy counts.
func TotalCopies(order models.Order) int {
	total := 0
	for _, item := range order.Items {
		total += item.TotalCopies
	}
	return total
}

// Recompute rebuilds every derived total of order, e.g. after loading a snapshot.
func (a *Aggregator) Recompute(order models.Order) (models.Order, error) {
	out := order.Clone()
	updatedAt := out.UpdatedAt
	out, err := a.recompute(out)
	if err != nil {
		return order, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

// recompute refreshes item and order totals in place and drops empty items.
func (a *Aggregator) recompute(order models.Order) (models.Order, error) {
	items := order.Items[:0]
	for _, item := range order.Items {
		if len(item.Entries) == 0 {
			continue
		}
		size, err := a.catalog.Lookup(item.SizeID)
		if err != nil {
			return order, err
		}
		item.TotalCopies = len(item.Entries)
		item.Pairs = 0
		if size.IsPairPricing() {
			item.Pairs = pricing.BilledUnits(size, item.TotalCopies)
		}
		item.Subtotal = pricing.Subtotal(size, item.TotalCopies)
		items = append(items, item)
	}
	order.Items = items
	order.TotalCopies = TotalCopies(order)
	order.GrandTotal = GrandTotal(order)
	order.UpdatedAt = a.now().UTC()
	return order, nil
}
