package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderBuilding  OrderStatus = "building"
	OrderValidated OrderStatus = "validated"
	OrderFinalized OrderStatus = "finalized"
	OrderPaid      OrderStatus = "paid"
)

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentTransfer
}

// LineEntry is one copy inside a line item, with its rendered composition when the
// order is rendered eagerly. Results are never persisted.
type LineEntry struct {
	Copy   Copy               `json:"copy"`
	Result *CompositionResult `json:"-"`
}

// CartLineItem groups every copy ordered in one size.
type CartLineItem struct {
	ID          string          `json:"id"`
	SizeID      string          `json:"sizeId"`
	Entries     []LineEntry     `json:"entries"`
	TotalCopies int             `json:"totalCopies"`
	Pairs       int             `json:"pairs,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// IndexOf returns the position of copyID in the item, or -1.
func (li *CartLineItem) IndexOf(copyID string) int {
	for i := range li.Entries {
		if li.Entries[i].Copy.CopyID == copyID {
			return i
		}
	}
	return -1
}

type Order struct {
	ID            string          `json:"id"`
	Status        OrderStatus     `json:"status"`
	Items         []CartLineItem  `json:"items"`
	TotalCopies   int             `json:"totalCopies"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	FinalizedAt   *time.Time      `json:"finalizedAt,omitempty"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

// Clone returns a deep copy that can be mutated without touching o.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = make([]CartLineItem, len(o.Items))
		for i, item := range o.Items {
			item.Entries = append([]LineEntry(nil), item.Entries...)
			out.Items[i] = item
		}
	}
	if o.FinalizedAt != nil {
		t := *o.FinalizedAt
		out.FinalizedAt = &t
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		out.PaidAt = &t
	}
	return out
}

// ItemIndex returns the position of the line item with lineItemID, or -1.
func (o *Order) ItemIndex(lineItemID string) int {
	for i := range o.Items {
		if o.Items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}

// ItemBySize returns the position of the line item for sizeID, or -1.
func (o *Order) ItemBySize(sizeID string) int {
	for i := range o.Items {
		if o.Items[i].SizeID == sizeID {
			return i
		}
	}
	return -1
}
