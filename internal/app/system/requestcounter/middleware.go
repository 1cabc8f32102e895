// Package requestcounter provides middleware that records one RequestCount
// per incoming request.
//
// The recorded data includes potentially identifying information (the
// student's unique ID and semester). It must only leave the server in
// aggregated form.
package requestcounter

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/stratadash/internal/app/system/auth"
	"github.com/dalemusser/stratadash/internal/app/system/metrics"
	"github.com/dalemusser/stratadash/internal/app/system/useragent"
	"github.com/dalemusser/stratadash/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultExcludePathPrefixes are never counted.
var DefaultExcludePathPrefixes = []string{
	"/favicon.ico",
	"/admin",
}

// DefaultExcludeUserAgents are lowercase substrings identifying monitoring
// probes and crawlers.
var DefaultExcludeUserAgents = []string{
	"check_http",
	"monitoring",
	"bot",
	"crawl",
	"spider",
}

// Store persists request counts.
type Store interface {
	Insert(ctx context.Context, rc models.RequestCount) (models.RequestCount, error)
}

// StudentResolver maps a bearer token to a student.
type StudentResolver interface {
	GetByToken(ctx context.Context, token string) (models.Student, error)
}

// Config holds configuration for the request counter.
type Config struct {
	Store    Store
	Students StudentResolver // optional; without it every request is anonymous
	Metrics  *metrics.Metrics
	Logger   *zap.Logger

	// ExcludePathPrefixes defaults to DefaultExcludePathPrefixes when nil.
	ExcludePathPrefixes []string
	// ExcludeUserAgents defaults to DefaultExcludeUserAgents when nil.
	// Matching is case-insensitive.
	ExcludeUserAgents []string

	// Timeout bounds each background write. Defaults to 5s.
	Timeout time.Duration
}

// Counter records requests in the background.
type Counter struct {
	cfg     Config
	pending sync.WaitGroup
	now     func() time.Time
}

// New creates a request counter.
func New(cfg Config) *Counter {
	if cfg.ExcludePathPrefixes == nil {
		cfg.ExcludePathPrefixes = DefaultExcludePathPrefixes
	}
	if cfg.ExcludeUserAgents == nil {
		cfg.ExcludeUserAgents = DefaultExcludeUserAgents
	}
	lowered := make([]string, len(cfg.ExcludeUserAgents))
	for i, s := range cfg.ExcludeUserAgents {
		lowered[i] = strings.ToLower(s)
	}
	cfg.ExcludeUserAgents = lowered
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Counter{cfg: cfg, now: time.Now}
}

// skipReason returns why a request is not counted, or "" if it is.
func (c *Counter) skipReason(path, ua string) string {
	for _, prefix := range c.cfg.ExcludePathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return "path"
		}
	}
	lower := strings.ToLower(ua)
	for _, s := range c.cfg.ExcludeUserAgents {
		if strings.Contains(lower, s) {
			return "user_agent"
		}
	}
	return ""
}

// Middleware returns HTTP middleware that records each counted request
// without delaying the response.
func (c *Counter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.UserAgent()
		if reason := c.skipReason(r.URL.Path, ua); reason != "" {
			if c.cfg.Metrics != nil {
				c.cfg.Metrics.RequestsSkipped.WithLabelValues(reason).Inc()
			}
			next.ServeHTTP(w, r)
			return
		}

		rc := models.RequestCount{
			Path:      r.URL.Path,
			Timestamp: c.now().UTC(),
			UserAgent: models.TruncateUserAgent(ua),
		}
		token := auth.BearerToken(r)

		c.pending.Add(1)
		go func() {
			defer c.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
			defer cancel()
			c.record(ctx, rc, token)
		}()

		next.ServeHTTP(w, r)
	})
}

func (c *Counter) record(ctx context.Context, rc models.RequestCount, token string) {
	if token != "" && c.cfg.Students != nil {
		if st, err := c.cfg.Students.GetByToken(ctx, token); err == nil {
			rc.IsAuthenticated = true
			rc.StudentUniqueID = st.UniqueID
			rc.StudentSemester = st.CurrentSemester
		}
	}

	if _, err := c.cfg.Store.Insert(ctx, rc); err != nil {
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.RecordFailures.Inc()
		}
		c.cfg.Logger.Error("failed to record request count",
			zap.String("path", rc.Path),
			zap.Error(err),
		)
		return
	}

	if c.cfg.Metrics != nil {
		c.cfg.Metrics.RequestsCounted.WithLabelValues(string(useragent.Classify(rc.UserAgent))).Inc()
	}
}

// Wait blocks until all in-flight recordings finish or ctx is done.
func (c *Counter) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
