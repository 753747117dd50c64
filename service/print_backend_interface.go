package service

import (
	"context"

	"mifoto-print/models"
)

// PrintBackendInterface defines the contract for handing finalized orders to the lab
type PrintBackendInterface interface {
	// Submit stores job and returns a reference to where it was placed.
	Submit(ctx context.Context, job models.PrintJob) (string, error)
}
