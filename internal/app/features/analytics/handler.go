package analytics

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratadash/internal/app/features/errors"
	documentstore "github.com/dalemusser/stratadash/internal/app/store/documents"
	requeststore "github.com/dalemusser/stratadash/internal/app/store/requests"
	"github.com/dalemusser/stratadash/internal/app/system/jsonutil"
	"github.com/dalemusser/stratadash/internal/app/system/timeouts"
	"github.com/dalemusser/stratadash/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves pre-aggregated analytics for the staff dashboard.
type Handler struct {
	requests  *requeststore.Store
	documents *documentstore.Store
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new analytics handler.
func NewHandler(requests *requeststore.Store, documents *documentstore.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		requests:  requests,
		documents: documents,
		errLog:    errLog,
		logger:    logger,
		now:       time.Now,
	}
}

// SetLocation makes buckets and labels use loc instead of the server's
// local zone.
func (h *Handler) SetLocation(loc *time.Location) {
	h.now = func() time.Time { return time.Now().In(loc) }
}

// ServeMetric handles GET /{metric}/{timeframe}.
func (h *Handler) ServeMetric(w http.ResponseWriter, r *http.Request) {
	metric := chi.URLParam(r, "metric")
	tf, err := ParseTimeframe(chi.URLParam(r, "timeframe"), h.now())
	if errors.Is(err, ErrUnknownTimeframe) {
		jsonutil.BadRequest(w, "unknown time frame; use day, week, month or year")
		return
	}

	// The year frame scans a lot more documents than the others.
	timeout := timeouts.Medium()
	if tf.Name == "year" {
		timeout = timeouts.Long()
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	var result any
	switch metric {
	case MetricActiveDocuments:
		counts, err := h.documents.CountActive(ctx, tf.Start)
		if err != nil {
			h.fail(w, r, metric, tf, err)
			return
		}
		result = counts
	case MetricTotalRequests, MetricLoggedInUsers, MetricUserAgents, MetricUserSemesters, MetricRequestPaths:
		tally := NewTally(metric, tf)
		err := h.requests.Each(ctx, tf.Start, tf.End, func(rc models.RequestCount) error {
			tally.Add(rc)
			return nil
		})
		if err != nil {
			h.fail(w, r, metric, tf, err)
			return
		}
		result = tally.Result()
	default:
		jsonutil.NotFound(w, "unknown metric: "+metric)
		return
	}

	h.logger.Debug("analytics served",
		zap.String("metric", metric),
		zap.String("timeframe", tf.Name))
	jsonutil.OK(w, result)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, metric string, tf Timeframe, err error) {
	h.errLog.LogWithFields(r, "analytics query failed", err,
		zap.String("metric", metric),
		zap.String("timeframe", tf.Name))
	jsonutil.InternalError(w, "failed to load analytics")
}
