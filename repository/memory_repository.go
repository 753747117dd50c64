package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

// MemoryCartRepository keeps encoded snapshots in memory. Orders go through the same
// encoding as the PostgreSQL repository.
type MemoryCartRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{snapshots: make(map[string][]byte)}
}

var _ CartRepositoryInterface = (*MemoryCartRepository)(nil)

func (r *MemoryCartRepository) Save(_ context.Context, order models.Order) error {
	data, err := EncodeSnapshot(order)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.snapshots[order.ID] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryCartRepository) Load(_ context.Context, orderID string) (models.Order, error) {
	r.mu.RLock()
	data, ok := r.snapshots[orderID]
	r.mu.RUnlock()
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", pkgerrors.ErrOrderNotFound, orderID)
	}
	return DecodeSnapshot(data)
}

func (r *MemoryCartRepository) Delete(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[orderID]; !ok {
		return fmt.Errorf("%w: %s", pkgerrors.ErrOrderNotFound, orderID)
	}
	delete(r.snapshots, orderID)
	return nil
}

func (r *MemoryCartRepository) ListByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var orders []models.Order
	for _, data := range r.snapshots {
		order, err := DecodeSnapshot(data)
		if err != nil {
			return nil, err
		}
		if order.Status == status {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].UpdatedAt.After(orders[j].UpdatedAt) })
	return orders, nil
}

// MemoryPhotoRepository keeps uploads in memory.
type MemoryPhotoRepository struct {
	mu     sync.RWMutex
	photos map[string]models.SourcePhoto
}

func NewMemoryPhotoRepository() *MemoryPhotoRepository {
	return &MemoryPhotoRepository{photos: make(map[string]models.SourcePhoto)}
}

var _ PhotoRepositoryInterface = (*MemoryPhotoRepository)(nil)

func (r *MemoryPhotoRepository) Save(_ context.Context, photo models.SourcePhoto) error {
	r.mu.Lock()
	r.photos[photo.ID] = photo
	r.mu.Unlock()
	return nil
}

func (r *MemoryPhotoRepository) Get(_ context.Context, photoID string) (models.SourcePhoto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	photo, ok := r.photos[photoID]
	if !ok {
		return models.SourcePhoto{}, fmt.Errorf("%w: %s", pkgerrors.ErrPhotoNotFound, photoID)
	}
	return photo, nil
}

func (r *MemoryPhotoRepository) Delete(_ context.Context, photoID string) error {
	r.mu.Lock()
	delete(r.photos, photoID)
	r.mu.Unlock()
	return nil
}
