package util

import (
	"context"
	"os"
	"syscall"

	"github.com/authorizedtester/testgate/pkg/config"
	"github.com/authorizedtester/testgate/pkg/system"
)

type contextKey struct {
	name string
}

var (
	SystemManagerKey = contextKey{name: "context key for storing the system manager"}
	ConfigKey        = contextKey{name: "context key for storing the loaded config"}
)

// ShutdownSignals stop long running commands cleanly.
var ShutdownSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGINT,
}

func GetCleanupManager(ctx context.Context) *system.CleanupManager {
	return ctx.Value(SystemManagerKey).(*system.CleanupManager)
}

func GetConfig(ctx context.Context) *config.Config {
	return ctx.Value(ConfigKey).(*config.Config)
}
