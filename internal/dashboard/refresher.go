// Package dashboard keeps a set of chart and scorecard widgets in step with
// the server's analytics endpoints for a selected time frame.
//
// Each Refresh issues one independent GET per tracked metric. Responses are
// applied as they arrive, one at a time, so every slot has at most one
// chart handle which is created on first success and updated in place
// afterwards.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeframe is the time frame shown before the user picks one.
const DefaultTimeframe = "day"

// ErrMalformed is returned for a response whose shape does not match its
// metric's kind.
var ErrMalformed = errors.New("malformed response")

// Fetcher performs GET requests and decodes the JSON body.
type Fetcher interface {
	GetJSON(ctx context.Context, path string, v any) error
}

// Options tunes a Refresher.
type Options struct {
	// BasePath prefixes metric endpoints. Defaults to DefaultBasePath.
	BasePath string
	// AllowStale applies responses from superseded batches instead of
	// discarding them, so the last response to arrive wins.
	AllowStale bool
	Logger     *zap.Logger
}

// Refresher is the dashboard controller. It owns the chart handle for
// every slot.
type Refresher struct {
	fetcher Fetcher
	surface Surface
	metrics []Metric
	opts    Options
	logger  *zap.Logger

	// mu serializes response handling and guards the fields below.
	mu         sync.Mutex
	charts     map[string]Chart
	generation uint64
}

// New creates a Refresher for metrics. The metrics slice is copied.
func New(fetcher Fetcher, surface Surface, metrics []Metric, opts Options) *Refresher {
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	opts.BasePath = strings.TrimSuffix(opts.BasePath, "/")
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Refresher{
		fetcher: fetcher,
		surface: surface,
		metrics: append([]Metric(nil), metrics...),
		opts:    opts,
		logger:  opts.Logger,
		charts:  make(map[string]Chart),
	}
}

// Batch is one Refresh call's set of in-flight requests.
type Batch struct {
	ID         string
	Timeframe  string
	Generation uint64

	g         errgroup.Group
	discarded atomic.Int32
}

// Wait blocks until every request in the batch has settled and returns the
// first failure. Responses discarded as stale are not failures.
func (b *Batch) Wait() error {
	return b.g.Wait()
}

// Discarded reports how many responses were dropped because a newer batch
// had been issued. Only meaningful after Wait returns.
func (b *Batch) Discarded() int {
	return int(b.discarded.Load())
}

// Chart returns the live handle for slot, or nil before its first
// successful response.
func (r *Refresher) Chart(slot string) Chart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.charts[slot]
}

// Path returns the endpoint for metric in timeframe.
func (r *Refresher) Path(metric, timeframe string) string {
	return r.opts.BasePath + "/" + metric + "/" + url.PathEscape(timeframe)
}

// Refresh issues one request per tracked metric for timeframe and returns
// without waiting for any of them. Busy indicators are set before Refresh
// returns.
func (r *Refresher) Refresh(ctx context.Context, timeframe string) *Batch {
	r.mu.Lock()
	r.generation++
	b := &Batch{ID: uuid.NewString(), Timeframe: timeframe, Generation: r.generation}
	for _, m := range r.metrics {
		if m.BusySlot != "" {
			if err := r.surface.SetBusy(m.BusySlot, true); err != nil {
				r.logger.Warn("could not set busy indicator",
					zap.String("metric", m.Name), zap.String("slot", m.BusySlot), zap.Error(err))
			}
		}
	}
	r.mu.Unlock()

	r.logger.Debug("refreshing dashboard",
		zap.String("batch", b.ID),
		zap.String("timeframe", timeframe),
		zap.Int("metrics", len(r.metrics)))

	for _, m := range r.metrics {
		b.g.Go(func() error {
			return r.refreshMetric(ctx, b, m)
		})
	}
	return b
}

func (r *Refresher) refreshMetric(ctx context.Context, b *Batch, m Metric) error {
	path := r.Path(m.Name, b.Timeframe)

	var apply func() error
	switch m.Kind {
	case SingleSeries:
		var resp singleResponse
		if err := r.fetcher.GetJSON(ctx, path, &resp); err != nil {
			return r.failed(b, m, err)
		}
		apply = func() error { return r.applySingle(m, resp) }
	case MultiSeries:
		resp := multiResponse{Data: orderedmap.New[string, []float64]()}
		if err := r.fetcher.GetJSON(ctx, path, &resp); err != nil {
			return r.failed(b, m, err)
		}
		apply = func() error { return r.applyMulti(m, resp) }
	case Scorecard:
		// other members may be arrays or objects; only the configured
		// fields have to be numbers
		var resp map[string]json.RawMessage
		if err := r.fetcher.GetJSON(ctx, path, &resp); err != nil {
			return r.failed(b, m, err)
		}
		apply = func() error { return r.applyScorecard(m, resp) }
	default:
		return r.failed(b, m, fmt.Errorf("unknown metric kind %v", m.Kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.opts.AllowStale && b.Generation < r.generation {
		b.discarded.Add(1)
		r.logger.Debug("discarding stale response",
			zap.String("metric", m.Name),
			zap.String("batch", b.ID),
			zap.String("timeframe", b.Timeframe))
		return nil
	}

	if err := apply(); err != nil {
		return r.failed(b, m, err)
	}

	if m.BusySlot != "" {
		if err := r.surface.SetBusy(m.BusySlot, false); err != nil {
			r.logger.Warn("could not clear busy indicator",
				zap.String("metric", m.Name), zap.String("slot", m.BusySlot), zap.Error(err))
		}
	}
	return nil
}

// failed logs a metric failure. The slot's chart and busy indicator are
// left as they were.
func (r *Refresher) failed(b *Batch, m Metric, err error) error {
	r.logger.Warn("dashboard metric failed",
		zap.String("metric", m.Name),
		zap.String("batch", b.ID),
		zap.String("timeframe", b.Timeframe),
		zap.Error(err))
	return fmt.Errorf("%s: %w", m.Name, err)
}

type singleResponse struct {
	Labels []string     `json:"labels"`
	Data   []float64    `json:"data"`
	Total  *json.Number `json:"total"`
}

type multiResponse struct {
	Labels []string                                  `json:"labels"`
	Data   *orderedmap.OrderedMap[string, []float64] `json:"data"`
}

func (r *Refresher) applySingle(m Metric, resp singleResponse) error {
	if len(resp.Data) != len(resp.Labels) {
		return fmt.Errorf("%w: %d labels, %d values", ErrMalformed, len(resp.Labels), len(resp.Data))
	}
	label := m.Label
	if label == "" {
		label = DefaultLabel
	}
	c := PaletteColor(0)
	data := ChartData{
		Labels: resp.Labels,
		Datasets: []Dataset{{
			Label:           label,
			Data:            resp.Data,
			BackgroundColor: c.Background,
			BorderColor:     c.Border,
			BorderWidth:     1,
		}},
	}
	if err := r.bind(m, data); err != nil {
		return err
	}
	if m.TotalSlot != "" && resp.Total != nil {
		if err := r.surface.SetText(m.TotalSlot, resp.Total.String()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Refresher) applyMulti(m Metric, resp multiResponse) error {
	if resp.Data == nil {
		return fmt.Errorf("%w: missing data", ErrMalformed)
	}
	data := ChartData{Labels: resp.Labels}
	i := 0
	for pair := resp.Data.Oldest(); pair != nil; pair = pair.Next() {
		if len(pair.Value) != len(resp.Labels) {
			return fmt.Errorf("%w: series %q has %d values for %d labels", ErrMalformed, pair.Key, len(pair.Value), len(resp.Labels))
		}
		c := PaletteColor(i)
		data.Datasets = append(data.Datasets, Dataset{
			Label:           pair.Key,
			Data:            pair.Value,
			BackgroundColor: c.Background,
			BorderColor:     c.Border,
			BorderWidth:     1,
		})
		i++
	}
	return r.bind(m, data)
}

func (r *Refresher) applyScorecard(m Metric, resp map[string]json.RawMessage) error {
	// decode every field first so a bad response writes nothing
	values := make([]json.Number, len(m.Fields))
	for i, f := range m.Fields {
		raw, ok := resp[f.Name]
		if !ok {
			return fmt.Errorf("%w: missing field %q", ErrMalformed, f.Name)
		}
		if err := json.Unmarshal(raw, &values[i]); err != nil || values[i] == "" {
			return fmt.Errorf("%w: field %q is not a number", ErrMalformed, f.Name)
		}
	}
	for i, f := range m.Fields {
		if err := r.surface.SetText(f.Slot, values[i].String()); err != nil {
			return err
		}
	}
	return nil
}

// bind creates the slot's chart on first use and updates it in place
// afterwards. Callers hold r.mu.
func (r *Refresher) bind(m Metric, data ChartData) error {
	if chart, ok := r.charts[m.Slot]; ok {
		chart.SetData(data)
		chart.Update()
		return nil
	}
	chart, err := r.surface.NewChart(m.Slot, ChartConfig{Type: "bar", Data: data, Options: m.Chart})
	if err != nil {
		return err
	}
	r.charts[m.Slot] = chart
	return nil
}
