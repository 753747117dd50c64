package cart

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
)

// Store persists order snapshots. A nil Store keeps orders in memory only.
type Store interface {
	Save(ctx context.Context, order models.Order) error
	Load(ctx context.Context, orderID string) (models.Order, error)
}

// Session owns one order. All mutations go through it one at a time, so the order
// always has a single writer.
type Session struct {
	mu    sync.Mutex
	order models.Order
	agg   *Aggregator
	store Store
}

func NewSession(agg *Aggregator, order models.Order, store Store) *Session {
	return &Session{order: order, agg: agg, store: store}
}

// Snapshot returns a copy of the current order.
func (s *Session) Snapshot() models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Clone()
}

// Update applies fn to the current order. The result replaces the order only when fn
// succeeds and the snapshot was saved.
func (s *Session) Update(ctx context.Context, fn func(models.Order) (models.Order, error)) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.order.Clone())
	if err != nil {
		return s.order.Clone(), err
	}
	if s.store != nil {
		if err := s.store.Save(ctx, next); err != nil {
			return s.order.Clone(), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save order snapshot")
		}
	}
	s.order = next
	return next.Clone(), nil
}

func (s *Session) AddCopies(ctx context.Context, sizeID string, copies []models.Copy) (models.Order, error) {
	return s.Update(ctx, func(o models.Order) (models.Order, error) {
		return s.agg.AddCopies(o, sizeID, copies)
	})
}

func (s *Session) RemoveCopy(ctx context.Context, lineItemID, copyID string) (models.Order, error) {
	return s.Update(ctx, func(o models.Order) (models.Order, error) {
		return s.agg.RemoveCopy(o, lineItemID, copyID)
	})
}

func (s *Session) RemovePhoto(ctx context.Context, lineItemID, photoID string) (models.Order, error) {
	return s.Update(ctx, func(o models.Order) (models.Order, error) {
		return s.agg.RemovePhoto(o, lineItemID, photoID)
	})
}

func (s *Session) RemoveLineItem(ctx context.Context, lineItemID string) (models.Order, error) {
	return s.Update(ctx, func(o models.Order) (models.Order, error) {
		return s.agg.RemoveLineItem(o, lineItemID)
	})
}

func (s *Session) Validate(ctx context.Context) (models.Order, error) {
	return s.Update(ctx, s.agg.Validate)
}

func (s *Session) Finalize(ctx context.Context) (models.Order, error) {
	return s.Update(ctx, s.agg.Finalize)
}

func (s *Session) MarkPaid(ctx context.Context, method models.PaymentMethod) (models.Order, error) {
	return s.Update(ctx, func(o models.Order) (models.Order, error) {
		return s.agg.MarkPaid(o, method)
	})
}

// AttachResults stores rendered compositions keyed by copy id. Results are kept in
// memory only, so the snapshot is not rewritten.
func (s *Session) AttachResults(results map[string]*models.CompositionResult) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.order
	for _, item := range s.order.Items {
		for _, entry := range item.Entries {
			result, ok := results[entry.Copy.CopyID]
			if !ok {
				continue
			}
			var err error
			next, err = s.agg.AttachResult(next, item.ID, entry.Copy.CopyID, result)
			if err != nil {
				return s.order.Clone(), err
			}
		}
	}
	s.order = next
	return next.Clone(), nil
}

// Manager tracks the live sessions, loading persisted orders on first access.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	agg      *Aggregator
	store    Store
}

func NewManager(agg *Aggregator, store Store) *Manager {
	return &Manager{sessions: make(map[string]*Session), agg: agg, store: store}
}

func (m *Manager) Aggregator() *Aggregator {
	return m.agg
}

// Create starts a new empty order.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	order := m.agg.NewOrder()
	if m.store != nil {
		if err := m.store.Save(ctx, order); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save order snapshot")
		}
	}
	session := NewSession(m.agg, order, m.store)

	m.mu.Lock()
	m.sessions[order.ID] = session
	m.mu.Unlock()

	logger.L().Infof("🛒 Order %s created", order.ID)
	return session, nil
}

// Get returns the session of orderID.
func (m *Manager) Get(ctx context.Context, orderID string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[orderID]
	m.mu.RUnlock()
	if ok {
		return session, nil
	}
	if m.store == nil {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrOrderNotFound, orderID)
	}

	order, err := m.store.Load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order, err = m.agg.Recompute(order)
	if err != nil {
		return nil, fmt.Errorf("failed to restore order %s: %w", orderID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[orderID]; ok {
		return existing, nil
	}
	session = NewSession(m.agg, order, m.store)
	m.sessions[orderID] = session
	logger.L().Infof("📥 Order %s restored from snapshot", orderID)
	return session, nil
}
