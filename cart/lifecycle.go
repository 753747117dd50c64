package cart

import (
	"fmt"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

// ensureMutable rejects any content change on a finalized or paid order.
func ensureMutable(order models.Order) error {
	switch order.Status {
	case models.OrderFinalized, models.OrderPaid:
		return fmt.Errorf("%w: order %s is %s", pkgerrors.ErrOrderLocked, order.ID, order.Status)
	}
	return nil
}

// reopen moves a validated order back to building; its validation no longer holds.
func reopen(order *models.Order) {
	if order.Status == models.OrderValidated || order.Status == "" {
		order.Status = models.OrderBuilding
	}
}

// Validate checks the order can go to checkout and moves it to Validated.
// On failure the order stays in Building.
func (a *Aggregator) Validate(order models.Order) (models.Order, error) {
	switch order.Status {
	case models.OrderBuilding, models.OrderValidated:
	default:
		return order, fmt.Errorf("%w: cannot validate a %s order", pkgerrors.ErrInvalidTransition, order.Status)
	}
	out := order.Clone()
	if err := a.ValidateForCheckout(out); err != nil {
		out.Status = models.OrderBuilding
		return out, err
	}
	out.Status = models.OrderValidated
	out.UpdatedAt = a.now().UTC()
	return out, nil
}

// Finalize locks a validated order. Its copies can no longer change.
func (a *Aggregator) Finalize(order models.Order) (models.Order, error) {
	if order.Status != models.OrderValidated {
		return order, fmt.Errorf("%w: cannot finalize a %s order", pkgerrors.ErrInvalidTransition, order.Status)
	}
	// Validation is repeated so a snapshot edited outside the aggregator cannot slip through.
	if err := a.ValidateForCheckout(order); err != nil {
		return order, err
	}
	now := a.now().UTC()
	out := order.Clone()
	out.Status = models.OrderFinalized
	out.FinalizedAt = &now
	out.UpdatedAt = now
	return out, nil
}

// MarkPaid records the payment of a finalized order.
func (a *Aggregator) MarkPaid(order models.Order, method models.PaymentMethod) (models.Order, error) {
	if order.Status != models.OrderFinalized {
		return order, fmt.Errorf("%w: cannot pay a %s order", pkgerrors.ErrInvalidTransition, order.Status)
	}
	if !method.Valid() {
		return order, fmt.Errorf("%w: %q", pkgerrors.ErrInvalidPayment, method)
	}
	now := a.now().UTC()
	out := order.Clone()
	out.Status = models.OrderPaid
	out.PaymentMethod = method
	out.PaidAt = &now
	out.UpdatedAt = now
	return out, nil
}
