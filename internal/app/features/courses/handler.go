// Package courses serves the public course catalog used by autocomplete
// widgets.
package courses

import (
	"context"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/stratadash/internal/app/features/errors"
	coursestore "github.com/dalemusser/stratadash/internal/app/store/courses"
	"github.com/dalemusser/stratadash/internal/app/system/jsonutil"
	"github.com/dalemusser/stratadash/internal/app/system/timeouts"
	"github.com/dalemusser/stratadash/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves course listings.
type Handler struct {
	store  *coursestore.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new courses handler.
func NewHandler(store *coursestore.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{store: store, errLog: errLog, logger: logger}
}

// Routes returns the router for the courses feature.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/all", h.ServeAll)
	r.Get("/all/", h.ServeAll)
	return r
}

// ServeAll returns every public course ordered by subject ID. Descriptions
// are only included when the "full" query parameter is truthy.
func (h *Handler) ServeAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.store.ListPublic(ctx)
	if err != nil {
		h.errLog.Log(r, "failed to list courses", err)
		jsonutil.InternalError(w, "failed to load courses")
		return
	}

	if !IsTrue(r.URL.Query().Get("full")) {
		for i := range list {
			list[i].Description = ""
		}
	}
	if list == nil {
		list = []models.Course{}
	}
	jsonutil.OK(w, list)
}

// IsTrue reports whether a query parameter value means yes.
func IsTrue(v string) bool {
	switch strings.ToLower(v) {
	case "true", "yes", "y", "t", "1":
		return true
	}
	return false
}
