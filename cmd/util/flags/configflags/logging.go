package configflags

import (
	"github.com/authorizedtester/testgate/pkg/config"
	"github.com/authorizedtester/testgate/pkg/config/types"
)

var LogFlags = []Definition{
	{
		FlagName:             "log-mode",
		DefaultValue:         types.DefaultLogging.Mode,
		ConfigPath:           config.LoggingModeKey,
		Description:          `Log format: 'default','json','combined'`,
		EnvironmentVariables: []string{"LOG_TYPE"},
	},
	{
		FlagName:             "log-level",
		DefaultValue:         types.DefaultLogging.Level,
		ConfigPath:           config.LoggingLevelKey,
		Description:          `Log level: 'trace', 'debug', 'info', 'warn', 'error', 'fatal', 'panic'`,
		EnvironmentVariables: []string{"LOG_LEVEL"},
	},
}
