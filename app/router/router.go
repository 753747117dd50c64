package router

import (
	"net/http"
	"time"

	"mifoto-print/app/controller"
	"mifoto-print/logger"
)

type Controllers struct {
	Catalog *controller.CatalogController
	Session *controller.SessionController
	Order   *controller.OrderController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every route on a new mux. Methods are part of the patterns,
// so the mux answers 405 for the rest.
func SetupRoutes(controllers *Controllers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", pingHandler)
	mux.HandleFunc("GET /sizes", controllers.Catalog.ListSizes)

	// Editor sessions
	mux.HandleFunc("POST /sessions", controllers.Session.CreateSession)
	mux.HandleFunc("POST /sessions/{id}/photos", controllers.Session.UploadPhoto)
	mux.HandleFunc("PATCH /sessions/{id}/settings", controllers.Session.UpdateSettings)
	mux.HandleFunc("POST /sessions/{id}/rotate", controllers.Session.Rotate)
	mux.HandleFunc("GET /sessions/{id}/copies/{copyId}/preview", controllers.Session.Preview)
	mux.HandleFunc("POST /sessions/{id}/commit", controllers.Session.Commit)

	// Orders
	mux.HandleFunc("POST /orders", controllers.Order.CreateOrder)
	mux.HandleFunc("GET /orders/{id}", controllers.Order.GetOrder)
	mux.HandleFunc("DELETE /orders/{id}/items/{itemId}", controllers.Order.RemoveLineItem)
	mux.HandleFunc("DELETE /orders/{id}/items/{itemId}/copies/{copyId}", controllers.Order.RemoveCopy)
	mux.HandleFunc("DELETE /orders/{id}/items/{itemId}/photos/{photoId}", controllers.Order.RemovePhoto)
	mux.HandleFunc("POST /orders/{id}/checkout", controllers.Order.Checkout)
	mux.HandleFunc("POST /orders/{id}/pay", controllers.Order.Pay)
	mux.HandleFunc("GET /orders/{id}/print-job", controllers.Order.PrintJob)
	mux.HandleFunc("GET /orders/{id}/proof.pdf", controllers.Order.Proof)

	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.L().Debugf("📥 %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
