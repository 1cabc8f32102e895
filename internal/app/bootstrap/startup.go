package bootstrap

import (
	"context"

	requeststore "github.com/dalemusser/stratadash/internal/app/store/requests"
	"github.com/dalemusser/stratadash/internal/app/system/metrics"
	"github.com/dalemusser/stratadash/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built. It starts the background
// retention job.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	startTaskRunner(appCfg, deps, logger)
	return nil
}

// appMetrics is shared by the task runner and the HTTP handler.
var appMetrics *metrics.Metrics

func sharedMetrics() *metrics.Metrics {
	if appMetrics == nil {
		appMetrics = metrics.New()
	}
	return appMetrics
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger, tasks.WithRecorder(sharedMetrics()))
	taskRunner.Register(tasks.RequestRetentionJob(requeststore.New(deps.MongoDatabase), appCfg.RequestRetention, logger))
	taskRunner.Start()
}
