package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mifoto-print/db"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
)

// CartRepository stores order snapshots in PostgreSQL
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a CartRepository on the shared connection
func NewCartRepository() *CartRepository {
	return &CartRepository{db: db.DB}
}

// Ensure CartRepository implements CartRepositoryInterface
var _ CartRepositoryInterface = (*CartRepository)(nil)

// Save inserts or replaces the snapshot of order
func (r *CartRepository) Save(ctx context.Context, order models.Order) error {
	data, err := EncodeSnapshot(order)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cart_snapshots (id, status, grand_total, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
			grand_total = EXCLUDED.grand_total,
			snapshot = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query,
		order.ID,
		string(order.Status),
		order.GrandTotal.String(),
		data,
		order.CreatedAt,
		order.UpdatedAt,
	); err != nil {
		logger.L().Errorf("❌ Save: Error saving order %s: %v", order.ID, err)
		return fmt.Errorf("failed to save order snapshot: %w", err)
	}

	logger.L().Debugf("💾 Save: order %s stored (status=%s, total=%s)", order.ID, order.Status, order.GrandTotal)
	return nil
}

// Load returns the stored order, or ErrOrderNotFound
func (r *CartRepository) Load(ctx context.Context, orderID string) (models.Order, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT snapshot FROM cart_snapshots WHERE id = $1`, orderID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, fmt.Errorf("%w: %s", pkgerrors.ErrOrderNotFound, orderID)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to load order snapshot: %w", err)
	}
	return DecodeSnapshot(data)
}

// Delete removes an order snapshot
func (r *CartRepository) Delete(ctx context.Context, orderID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order snapshot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", pkgerrors.ErrOrderNotFound, orderID)
	}
	return nil
}

// ListByStatus returns every order in status, most recently updated first
func (r *CartRepository) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT snapshot FROM cart_snapshots WHERE status = $1 ORDER BY updated_at DESC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan order snapshot: %w", err)
		}
		order, err := DecodeSnapshot(data)
		if err != nil {
			logger.L().Warnf("⚠️  ListByStatus: skipping unreadable snapshot: %v", err)
			continue
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}
