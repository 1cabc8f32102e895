package bootstrap

import "time"

// AppConfig holds service-specific configuration for stratadash.
//
// Framework-level settings (ports, TLS, logging, CORS, body limits) live in
// WAFFLE's CoreConfig. AppConfig carries everything specific to the
// analytics server.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Staff API key. Analytics routes require it as a Bearer token.
	// Leave empty to reject all analytics requests.
	APIKey string

	// Request counter
	RequestCounterEnabled bool          // Record incoming requests (default: true)
	RequestRetention      time.Duration // How long request counts are kept (default: 400 days)
	ExcludePathPrefixes   []string      // Paths never counted
	ExcludeUserAgents     []string      // User agent substrings never counted (case-insensitive)

	// IANA zone analytics buckets and labels are computed in (default: UTC)
	AnalyticsTimezone string

	// Serve Prometheus metrics on /metrics
	MetricsEnabled bool
}
