package analytics

import (
	"net/http"

	"github.com/dalemusser/stratadash/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns the router for the analytics feature.
// Every route requires the staff API key.
func Routes(h *Handler, staffKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireStaff(staffKey, logger))

	r.Get("/{metric}/{timeframe}", h.ServeMetric)
	r.Get("/{metric}/{timeframe}/", h.ServeMetric)

	return r
}
