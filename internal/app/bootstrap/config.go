package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stratadash/internal/app/system/requestcounter"
	"github.com/dalemusser/stratadash/internal/app/system/tasks"
	"github.com/dalemusser/stratadash/internal/app/system/timezones"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATADASH"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, api_key, etc.
//   - Environment variables: STRATADASH_MONGO_URI, STRATADASH_API_KEY, etc.
//   - Command-line flags: --mongo_uri, --api_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratadash", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "api_key", Default: "", Desc: "Staff API key for analytics endpoints (Bearer token)"},

	// Request counter
	{Name: "request_counter_enabled", Default: true, Desc: "Record incoming requests for analytics"},
	{Name: "request_retention", Default: "9600h", Desc: "How long request counts are kept (e.g., 9600h for 400 days)"},
	{Name: "request_exclude_paths", Default: strings.Join(requestcounter.DefaultExcludePathPrefixes, ","), Desc: "Comma-separated path prefixes that are never counted"},
	{Name: "request_exclude_agents", Default: strings.Join(requestcounter.DefaultExcludeUserAgents, ","), Desc: "Comma-separated user agent substrings that are never counted"},

	{Name: "analytics_timezone", Default: timezones.Default, Desc: "IANA time zone for analytics buckets and labels (e.g., America/New_York)"},

	{Name: "metrics_enabled", Default: true, Desc: "Serve Prometheus metrics on /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// STRATADASH_* environment variables and flags, with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		APIKey: appValues.String("api_key"),

		RequestCounterEnabled: appValues.Bool("request_counter_enabled"),
		RequestRetention:      appValues.Duration("request_retention", tasks.DefaultRequestRetention),
		ExcludePathPrefixes:   splitList(appValues.String("request_exclude_paths")),
		ExcludeUserAgents:     splitList(appValues.String("request_exclude_agents")),

		AnalyticsTimezone: appValues.String("analytics_timezone"),

		MetricsEnabled: appValues.Bool("metrics_enabled"),
	}

	return coreCfg, appCfg, nil
}

// splitList parses a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.RequestRetention < 24*time.Hour {
		return errors.New("request_retention must be at least 24h")
	}

	if !timezones.Valid(appCfg.AnalyticsTimezone) {
		return fmt.Errorf("analytics_timezone: %w: %q", timezones.ErrUnknownZone, appCfg.AnalyticsTimezone)
	}

	if appCfg.APIKey == "" {
		if coreCfg.Env == "prod" {
			return errors.New("api_key is required in production")
		}
		logger.Warn("api_key not set; analytics endpoints will reject every request")
	}

	return nil
}
