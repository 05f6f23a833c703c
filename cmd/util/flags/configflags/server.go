package configflags

import (
	"github.com/authorizedtester/testgate/pkg/config"
	"github.com/authorizedtester/testgate/pkg/config/types"
)

var ServerFlags = []Definition{
	{
		FlagName:     "host",
		DefaultValue: types.DefaultServerConfig.Host,
		ConfigPath:   config.ServerHostKey,
		Description:  `The interface to listen on.`,
	},
	{
		FlagName:     "port",
		DefaultValue: types.DefaultServerConfig.Port,
		ConfigPath:   config.ServerPortKey,
		Description:  `The port to listen on.`,
	},
	{
		FlagName:     "upstream",
		DefaultValue: types.DefaultServerConfig.Upstream,
		ConfigPath:   config.ServerUpstreamKey,
		Description:  `URL of the application that allowed requests are forwarded to.`,
	},
	{
		FlagName:     "skip-paths",
		DefaultValue: types.DefaultServerConfig.SkipPaths,
		ConfigPath:   config.ServerSkipPathsKey,
		Description:  `Request paths that bypass the gate, e.g. a health check.`,
	},
	{
		FlagName:     "shutdown-timeout",
		DefaultValue: types.DefaultServerConfig.ShutdownTimeout,
		ConfigPath:   config.ServerShutdownTimeoutKey,
		Description:  `How long in-flight requests may take to finish on shutdown.`,
	},
}
