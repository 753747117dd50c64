package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

func finalizedOrder(t *testing.T, a *Aggregator) models.Order {
	t.Helper()
	order, err := a.AddCopies(a.NewOrder(), "kiosco", copiesOf("p1", 2))
	require.NoError(t, err)
	order, err = a.Validate(order)
	require.NoError(t, err)
	order, err = a.Finalize(order)
	require.NoError(t, err)
	return order
}

func TestLifecycleHappyPath(t *testing.T) {
	a := newTestAggregator()
	order := finalizedOrder(t, a)
	assert.Equal(t, models.OrderFinalized, order.Status)
	require.NotNil(t, order.FinalizedAt)

	paid, err := a.MarkPaid(order, models.PaymentTransfer)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, paid.Status)
	assert.Equal(t, models.PaymentTransfer, paid.PaymentMethod)
	assert.NotNil(t, paid.PaidAt)
}

func TestValidateFailureStaysBuilding(t *testing.T) {
	a := newTestAggregator()
	order, err := a.AddCopies(a.NewOrder(), "kiosco", copiesOf("p1", 1))
	require.NoError(t, err)

	out, err := a.Validate(order)
	require.Error(t, err)
	assert.Equal(t, models.OrderBuilding, out.Status)
}

func TestMutationReopensValidatedOrder(t *testing.T) {
	a := newTestAggregator()
	order, err := a.AddCopies(a.NewOrder(), "large", copiesOf("p1", 1))
	require.NoError(t, err)
	order, err = a.Validate(order)
	require.NoError(t, err)

	order, err = a.AddCopies(order, "large", copiesOf("p2", 1))
	require.NoError(t, err)
	assert.Equal(t, models.OrderBuilding, order.Status)

	_, err = a.Finalize(order)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidTransition)
}

func TestFinalizedOrderIsLocked(t *testing.T) {
	a := newTestAggregator()
	order := finalizedOrder(t, a)
	itemID := order.Items[0].ID

	_, err := a.AddCopies(order, "kiosco", copiesOf("p2", 2))
	assert.ErrorIs(t, err, pkgerrors.ErrOrderLocked)
	_, err = a.RemoveCopy(order, itemID, "p1-1")
	assert.ErrorIs(t, err, pkgerrors.ErrOrderLocked)
	_, err = a.RemovePhoto(order, itemID, "p1")
	assert.ErrorIs(t, err, pkgerrors.ErrOrderLocked)
	_, err = a.RemoveLineItem(order, itemID)
	assert.ErrorIs(t, err, pkgerrors.ErrOrderLocked)
	_, err = a.Validate(order)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidTransition)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestMarkPaidRequiresFinalizedAndValidMethod(t *testing.T) {
	a := newTestAggregator()
	order, err := a.AddCopies(a.NewOrder(), "large", copiesOf("p1", 1))
	require.NoError(t, err)

	_, err = a.MarkPaid(order, models.PaymentCard)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidTransition)

	_, err = a.MarkPaid(finalizedOrder(t, a), "cash")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidPayment)
}

func TestPaidOrderCannotBePaidTwice(t *testing.T) {
	a := newTestAggregator()
	paid, err := a.MarkPaid(finalizedOrder(t, a), models.PaymentCard)
	require.NoError(t, err)

	_, err = a.MarkPaid(paid, models.PaymentCard)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidTransition)
}
