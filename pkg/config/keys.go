package config

// Keys for the server and logging settings. The gate settings use the keys
// declared in pkg/gate.
const (
	ServerKey                  = "Server"
	ServerHostKey              = "Server.Host"
	ServerPortKey              = "Server.Port"
	ServerUpstreamKey          = "Server.Upstream"
	ServerReadHeaderTimeoutKey = "Server.ReadHeaderTimeout"
	ServerReadTimeoutKey       = "Server.ReadTimeout"
	ServerWriteTimeoutKey      = "Server.WriteTimeout"
	ServerShutdownTimeoutKey   = "Server.ShutdownTimeout"
	ServerSkipPathsKey         = "Server.SkipPaths"

	LoggingKey      = "Logging"
	LoggingLevelKey = "Logging.Level"
	LoggingModeKey  = "Logging.Mode"
)
