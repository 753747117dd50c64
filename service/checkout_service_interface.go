package service

import (
	"context"

	"mifoto-print/models"
)

// CheckoutServiceInterface defines the contract for moving orders through checkout
type CheckoutServiceInterface interface {
	Checkout(ctx context.Context, orderID string) (models.Order, error)
	// Pay records the payment and hands the order to the print backend.
	// ref is where the backend placed the job.
	Pay(ctx context.Context, orderID string, method models.PaymentMethod) (order models.Order, ref string, err error)
	PrintJob(ctx context.Context, orderID string, mode models.PrintJobMode) (models.PrintJob, error)
}
