package types

import "time"

// ServerConfig configures the HTTP listener that fronts the protected application.
type ServerConfig struct {
	// Host is the interface to listen on.
	Host string `yaml:"Host,omitempty" json:"Host,omitempty"`
	// Port is the port to listen on.
	Port int `yaml:"Port,omitempty" json:"Port,omitempty"`
	// Upstream is the URL of the application requests are forwarded to once the gate lets them through.
	Upstream string `yaml:"Upstream,omitempty" json:"Upstream,omitempty"`

	// These are connection deadlines, not handler timeouts.
	ReadHeaderTimeout time.Duration `yaml:"ReadHeaderTimeout,omitempty" json:"ReadHeaderTimeout,omitempty"`
	ReadTimeout       time.Duration `yaml:"ReadTimeout,omitempty" json:"ReadTimeout,omitempty"`
	WriteTimeout      time.Duration `yaml:"WriteTimeout,omitempty" json:"WriteTimeout,omitempty"`
	// ShutdownTimeout bounds how long in-flight requests may take to finish on shutdown.
	ShutdownTimeout time.Duration `yaml:"ShutdownTimeout,omitempty" json:"ShutdownTimeout,omitempty"`

	// SkipPaths lists exact request paths that bypass the gate, e.g. a load balancer health check.
	SkipPaths []string `yaml:"SkipPaths,omitempty" json:"SkipPaths,omitempty"`
}

// Logging configures the global logger.
type Logging struct {
	// Level sets the logging level. One of: trace, debug, info, warn, error, fatal, panic.
	Level string `yaml:"Level,omitempty" json:"Level,omitempty"`
	// Mode specifies the logging mode. One of: default, json, combined.
	Mode string `yaml:"Mode,omitempty" json:"Mode,omitempty"`
}

// DefaultServerConfig is the server configuration used for keys that are not set.
var DefaultServerConfig = ServerConfig{
	Host:              "0.0.0.0",
	Port:              8080,
	ReadHeaderTimeout: 10 * time.Second,
	ReadTimeout:       20 * time.Second,
	WriteTimeout:      20 * time.Second,
	ShutdownTimeout:   30 * time.Second,
	SkipPaths:         []string{},
}

var DefaultLogging = Logging{
	Level: "info",
	Mode:  "default",
}
