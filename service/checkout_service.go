package service

import (
	"context"
	"fmt"

	"mifoto-print/cart"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
	"mifoto-print/repository"
)

// CheckoutService validates, finalizes and pays orders, then ships them to the lab
// Implements CheckoutServiceInterface
type CheckoutService struct {
	carts      *cart.Manager
	photos     repository.PhotoRepositoryInterface
	compositor *Compositor
	backend    PrintBackendInterface
	workers    int
	mode       models.PrintJobMode
}

// NewCheckoutService creates a CheckoutService. backend may be nil, in which case paid
// orders are only kept in the cart store.
func NewCheckoutService(
	carts *cart.Manager,
	photos repository.PhotoRepositoryInterface,
	compositor *Compositor,
	backend PrintBackendInterface,
	workers int,
	eager bool,
) *CheckoutService {
	mode := models.PrintJobLazy
	if eager {
		mode = models.PrintJobEager
	}
	return &CheckoutService{
		carts:      carts,
		photos:     photos,
		compositor: compositor,
		backend:    backend,
		workers:    workers,
		mode:       mode,
	}
}

// Ensure CheckoutService implements CheckoutServiceInterface
var _ CheckoutServiceInterface = (*CheckoutService)(nil)

// Checkout validates the order and locks it for payment.
func (s *CheckoutService) Checkout(ctx context.Context, orderID string) (models.Order, error) {
	session, err := s.carts.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if _, err := session.Validate(ctx); err != nil {
		logger.L().Infof("⛔ Checkout blocked for order %s: %v", orderID, err)
		return session.Snapshot(), err
	}
	order, err := session.Finalize(ctx)
	if err != nil {
		return order, err
	}
	logger.L().Infof("🔒 Order %s finalized: %d copies, total %s", order.ID, order.TotalCopies, order.GrandTotal)
	return order, nil
}

// Pay marks a finalized order paid and submits its print job. Calling it again on a paid
// order with the same method retries the submission.
func (s *CheckoutService) Pay(ctx context.Context, orderID string, method models.PaymentMethod) (models.Order, string, error) {
	session, err := s.carts.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, "", err
	}

	current := session.Snapshot()
	alreadyPaid := current.Status == models.OrderPaid && current.PaymentMethod == method

	// Render before taking payment so an unreadable photo blocks the order up front.
	if s.mode == models.PrintJobEager {
		if err := s.renderOrder(ctx, session); err != nil {
			return session.Snapshot(), "", err
		}
	}

	order := current
	if !alreadyPaid {
		order, err = session.MarkPaid(ctx, method)
		if err != nil {
			return order, "", err
		}
		logger.L().Infof("💳 Order %s paid by %s", order.ID, method)
	}

	if s.backend == nil {
		logger.L().Warnf("⚠️  No print backend configured, order %s was not submitted", order.ID)
		return order, "", nil
	}
	job, err := cart.BuildPrintJob(s.carts.Aggregator().Catalog(), session.Snapshot(), s.mode)
	if err != nil {
		return order, "", err
	}
	ref, err := s.backend.Submit(ctx, job)
	if err != nil {
		logger.L().Errorf("❌ Submitting order %s failed: %v", order.ID, err)
		return order, "", err
	}
	return order, ref, nil
}

// PrintJob exports a finalized or paid order. Eager jobs are rendered first.
func (s *CheckoutService) PrintJob(ctx context.Context, orderID string, mode models.PrintJobMode) (models.PrintJob, error) {
	session, err := s.carts.Get(ctx, orderID)
	if err != nil {
		return models.PrintJob{}, err
	}
	if mode == models.PrintJobEager {
		if err := s.renderOrder(ctx, session); err != nil {
			return models.PrintJob{}, err
		}
	}
	return cart.BuildPrintJob(s.carts.Aggregator().Catalog(), session.Snapshot(), mode)
}

// renderOrder renders every copy that has no result yet, at full print scale.
func (s *CheckoutService) renderOrder(ctx context.Context, session *cart.Session) error {
	order := session.Snapshot()
	if order.Status != models.OrderFinalized && order.Status != models.OrderPaid {
		return fmt.Errorf("%w: order %s is %s", pkgerrors.ErrInvalidTransition, order.ID, order.Status)
	}

	photos := map[string]models.SourcePhoto{}
	var jobs []RenderJob
	for _, item := range order.Items {
		for _, entry := range item.Entries {
			if entry.Result != nil {
				continue
			}
			photo, ok := photos[entry.Copy.SourcePhotoID]
			if !ok {
				loaded, err := s.photos.Get(ctx, entry.Copy.SourcePhotoID)
				if err != nil {
					return fmt.Errorf("copy %s: %w", entry.Copy.CopyID, err)
				}
				photo = loaded
				photos[photo.ID] = photo
			}
			jobs = append(jobs, RenderJob{
				LineItemID: item.ID,
				SizeID:     item.SizeID,
				Copy:       entry.Copy,
				Photo:      photo,
				Scale:      1,
			})
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	outcomes := s.compositor.RenderBatch(ctx, jobs, s.workers)
	if _, err := session.AttachResults(Results(outcomes)); err != nil {
		return err
	}
	return FirstError(outcomes)
}
