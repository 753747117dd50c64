package controller

import (
	"fmt"
	"net/http"

	"mifoto-print/cart"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
	"mifoto-print/pricing"
	"mifoto-print/service"
	"mifoto-print/utils"
)

// OrderController handles HTTP requests for cart orders
type OrderController struct {
	carts    *cart.Manager
	checkout service.CheckoutServiceInterface
	proofs   service.ProofServiceInterface
	pricing  *pricing.Engine
}

// NewOrderController creates a new OrderController. proofs may be nil when no
// browser is available; the proof endpoint then answers 503.
func NewOrderController(
	carts *cart.Manager,
	checkout service.CheckoutServiceInterface,
	proofs service.ProofServiceInterface,
	engine *pricing.Engine,
) *OrderController {
	return &OrderController{carts: carts, checkout: checkout, proofs: proofs, pricing: engine}
}

func (c *OrderController) orderResponse(order models.Order) models.OrderResponse {
	resp := models.OrderResponse{Order: order, DisplayTotal: utils.FormatPrice(order.GrandTotal)}
	breakdown, err := c.pricing.CalculateOrderPricing(order)
	if err != nil {
		logger.L().Warnf("⚠️  Pricing breakdown for order %s failed: %v", order.ID, err)
		return resp
	}
	resp.Pricing = breakdown
	return resp
}

// CreateOrder handles POST /orders
func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	session, err := c.carts.Create(r.Context())
	if err != nil {
		writeError(w, "CreateOrder", err)
		return
	}
	writeJSON(w, http.StatusCreated, c.orderResponse(session.Snapshot()))
}

// GetOrder handles GET /orders/{id}
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	session, err := c.carts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "GetOrder", err)
		return
	}
	writeJSON(w, http.StatusOK, c.orderResponse(session.Snapshot()))
}

// RemoveLineItem handles DELETE /orders/{id}/items/{itemId}
func (c *OrderController) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, "RemoveLineItem", func(s *cart.Session) (models.Order, error) {
		return s.RemoveLineItem(r.Context(), r.PathValue("itemId"))
	})
}

// RemoveCopy handles DELETE /orders/{id}/items/{itemId}/copies/{copyId}
func (c *OrderController) RemoveCopy(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, "RemoveCopy", func(s *cart.Session) (models.Order, error) {
		return s.RemoveCopy(r.Context(), r.PathValue("itemId"), r.PathValue("copyId"))
	})
}

// RemovePhoto handles DELETE /orders/{id}/items/{itemId}/photos/{photoId}
func (c *OrderController) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, "RemovePhoto", func(s *cart.Session) (models.Order, error) {
		return s.RemovePhoto(r.Context(), r.PathValue("itemId"), r.PathValue("photoId"))
	})
}

func (c *OrderController) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(*cart.Session) (models.Order, error)) {
	session, err := c.carts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, op, err)
		return
	}
	order, err := fn(session)
	if err != nil {
		writeError(w, op, err)
		return
	}
	logger.L().Infof("✅ %s: order %s now has %d copies", op, order.ID, order.TotalCopies)
	writeJSON(w, http.StatusOK, c.orderResponse(order))
}

// Checkout handles POST /orders/{id}/checkout
// Fails with 400 and the offending sizes when a pair-priced size has an odd count.
func (c *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := c.checkout.Checkout(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "Checkout", err)
		return
	}
	writeJSON(w, http.StatusOK, c.orderResponse(order))
}

// Pay handles POST /orders/{id}/pay
// Example request:
// {"method": "card"}
func (c *OrderController) Pay(w http.ResponseWriter, r *http.Request) {
	var req models.PayRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, "Pay", err)
		return
	}
	order, ref, err := c.checkout.Pay(r.Context(), r.PathValue("id"), req.Method)
	if err != nil {
		writeError(w, "Pay", err)
		return
	}
	writeJSON(w, http.StatusOK, models.PayResponse{Order: order, PrintRef: ref})
}

// PrintJob handles GET /orders/{id}/print-job?mode=lazy|eager
func (c *OrderController) PrintJob(w http.ResponseWriter, r *http.Request) {
	mode := models.PrintJobMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = models.PrintJobLazy
	}
	job, err := c.checkout.PrintJob(r.Context(), r.PathValue("id"), mode)
	if err != nil {
		writeError(w, "PrintJob", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Proof handles GET /orders/{id}/proof.pdf
func (c *OrderController) Proof(w http.ResponseWriter, r *http.Request) {
	if c.proofs == nil {
		writeError(w, "Proof", pkgerrors.New(pkgerrors.CodeDependency, "proof generation is not available"))
		return
	}
	session, err := c.carts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "Proof", err)
		return
	}
	order := session.Snapshot()
	pdf, err := c.proofs.GeneratePDF(r.Context(), order)
	if err != nil {
		writeError(w, "Proof", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"pedido-%s.pdf\"", order.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logger.L().Errorf("❌ Proof: Error writing PDF: %v", err)
	}
}
