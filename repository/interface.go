package repository

import (
	"context"

	"mifoto-print/models"
)

// CartRepositoryInterface defines the contract for order snapshot persistence
type CartRepositoryInterface interface {
	Save(ctx context.Context, order models.Order) error
	Load(ctx context.Context, orderID string) (models.Order, error)
	Delete(ctx context.Context, orderID string) error
	ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
}

// PhotoRepositoryInterface defines the contract for uploaded photo storage
type PhotoRepositoryInterface interface {
	Save(ctx context.Context, photo models.SourcePhoto) error
	Get(ctx context.Context, photoID string) (models.SourcePhoto, error)
	Delete(ctx context.Context, photoID string) error
}
