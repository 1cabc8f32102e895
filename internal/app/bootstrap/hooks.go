package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires stratadash into the WAFFLE lifecycle.
// app.Run calls them in order: configuration, DB setup, one-time startup,
// HTTP handler construction, and graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "stratadash",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,      // start the retention job
	BuildHandler:   BuildHandler, // router, request counter, features
	Shutdown:       Shutdown,     // flush counts, stop jobs, disconnect
}
