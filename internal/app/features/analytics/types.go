package analytics

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Series is a single-series chart payload. Total is omitted for metrics
// that have no meaningful window total.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
	Total  *int64   `json:"total,omitempty"`
}

// MultiSeries is a chart payload with several named series. Data keys are
// encoded in insertion order, which clients use for color assignment.
type MultiSeries struct {
	Labels []string                                `json:"labels"`
	Data   *orderedmap.OrderedMap[string, []int64] `json:"data"`
}

// TopPaths is the number of paths returned by the request_paths metric.
const TopPaths = 15

// Metric names served under /analytics/{metric}/{timeframe}.
const (
	MetricTotalRequests   = "total_requests"
	MetricLoggedInUsers   = "logged_in_users"
	MetricUserAgents      = "user_agents"
	MetricUserSemesters   = "user_semesters"
	MetricRequestPaths    = "request_paths"
	MetricActiveDocuments = "active_documents"
)
