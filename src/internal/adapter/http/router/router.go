package router

import (
	"net/http"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/middleware"
)

type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

// New mounts swagger, the health check and every registrar on one mux. The
// swagger pages and /healthz stay outside authMiddleware.
func New(authMiddleware func(http.Handler) http.Handler, registrars ...RouteRegistrar) http.Handler {
	mux := http.NewServeMux()
	registerSwaggerRoutes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	for _, registrar := range registrars {
		if registrar != nil {
			registrar.RegisterRoutes(mux, authMiddleware)
		}
	}

	return middleware.RequestID(mux)
}
