package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/authorizedtester/testgate/pkg/config/types"
	"github.com/authorizedtester/testgate/pkg/gate"
	"github.com/authorizedtester/testgate/pkg/models"
)

const (
	environmentVariablePrefix = "TESTGATE"
	automaticEnvVar           = true
	configType                = "yaml"

	// DefaultConfigFile is read when present; a missing default file is not an error.
	DefaultConfigFile = "testgate.yaml"

	listSeparator = "|"
)

var (
	environmentVariableReplace = strings.NewReplacer(".", "_")
	configDecoderHook          = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
)

// Config is the process configuration store. It is read once at startup.
type Config struct {
	v        *viper.Viper
	fileUsed string
}

var _ gate.Source = (*Config)(nil)

type Params struct {
	ConfigFile string
	// ConfigFileRequired makes a missing ConfigFile an error.
	ConfigFileRequired bool
	EnvFile            string
	Flags              map[string]*pflag.Flag
	Values             map[string]any

	// EnvBindings lists extra environment variables per key, consulted
	// after the TESTGATE_* variable.
	EnvBindings map[string][]string
}

type Option func(params *Params)

// WithConfigFile reads settings from the YAML file at path, which must exist.
func WithConfigFile(path string) Option {
	return func(params *Params) {
		params.ConfigFile = path
		params.ConfigFileRequired = true
	}
}

// WithEnvFile loads a dotenv file into the process environment before
// settings are resolved. Variables already set are not overridden.
func WithEnvFile(path string) Option {
	return func(params *Params) {
		params.EnvFile = path
	}
}

// WithFlags binds config keys to command line flags. Flags only take effect
// when set by the user.
func WithFlags(flags map[string]*pflag.Flag) Option {
	return func(params *Params) {
		params.Flags = flags
	}
}

// WithEnvBindings reads keys from additional environment variables.
func WithEnvBindings(bindings map[string][]string) Option {
	return func(params *Params) {
		params.EnvBindings = bindings
	}
}

// WithValues overrides config keys with fixed values.
func WithValues(values map[string]any) Option {
	return func(params *Params) {
		params.Values = values
	}
}

// Load builds the configuration from, in decreasing precedence: explicit
// values, flags, TESTGATE_* environment variables, the config file and defaults.
func Load(opts ...Option) (*Config, error) {
	params := &Params{
		ConfigFile: DefaultConfigFile,
	}
	for _, opt := range opts {
		opt(params)
	}

	if params.EnvFile != "" {
		if err := godotenv.Load(params.EnvFile); err != nil {
			return nil, configError(err, "failed to load env file %s", params.EnvFile)
		}
	}

	v := viper.New()
	c := &Config{v: v}
	v.SetConfigType(configType)
	v.SetEnvPrefix(environmentVariablePrefix)
	v.SetEnvKeyReplacer(environmentVariableReplace)
	setDefaults(v)

	if params.ConfigFile != "" {
		v.SetConfigFile(params.ConfigFile)
		err := v.ReadInConfig()
		switch {
		case err == nil:
			c.fileUsed = params.ConfigFile
		case params.ConfigFileRequired || !errors.Is(err, fs.ErrNotExist):
			return nil, configError(err, "failed to read config file %s", params.ConfigFile)
		}
	}

	if automaticEnvVar {
		// an empty variable configures an empty list rather than nothing
		v.AllowEmptyEnv(true)
		v.AutomaticEnv()
	}

	for key, envVars := range params.EnvBindings {
		if len(envVars) == 0 {
			continue
		}
		if err := v.BindEnv(append([]string{key}, envVars...)...); err != nil {
			return nil, configError(err, "failed to bind environment variables for %s", key)
		}
	}
	for key, flag := range params.Flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, configError(err, "failed to bind flag %s", flag.Name)
		}
	}
	for key, value := range params.Values {
		v.Set(key, value)
	}

	return c, nil
}

func setDefaults(v *viper.Viper) {
	d := types.DefaultServerConfig
	v.SetDefault(ServerHostKey, d.Host)
	v.SetDefault(ServerPortKey, d.Port)
	v.SetDefault(ServerUpstreamKey, d.Upstream)
	v.SetDefault(ServerReadHeaderTimeoutKey, d.ReadHeaderTimeout)
	v.SetDefault(ServerReadTimeoutKey, d.ReadTimeout)
	v.SetDefault(ServerWriteTimeoutKey, d.WriteTimeout)
	v.SetDefault(ServerShutdownTimeoutKey, d.ShutdownTimeout)
	v.SetDefault(ServerSkipPathsKey, d.SkipPaths)

	v.SetDefault(LoggingLevelKey, types.DefaultLogging.Level)
	v.SetDefault(LoggingModeKey, types.DefaultLogging.Mode)
}

// Lookup returns the raw string stored under key. YAML sequences are joined
// with the gate list separator so lists may be written either way.
func (c *Config) Lookup(key string) (string, bool) {
	if !c.v.IsSet(key) {
		return "", false
	}
	switch value := c.v.Get(key).(type) {
	case []string:
		return strings.Join(value, listSeparator), true
	case []interface{}:
		items := lo.Map(value, func(item interface{}, _ int) string {
			return fmt.Sprint(item)
		})
		return strings.Join(items, listSeparator), true
	default:
		return c.v.GetString(key), true
	}
}

// Gate builds the gate configuration from the store.
func (c *Config) Gate() *gate.Config {
	return gate.LoadConfig(c)
}

// Server decodes the server settings.
func (c *Config) Server() (types.ServerConfig, error) {
	// Unmarshal rather than UnmarshalKey: only the former sees environment
	// overrides of nested keys.
	var out struct {
		Server types.ServerConfig
	}
	if err := c.v.Unmarshal(&out, configDecoderHook); err != nil {
		return types.ServerConfig{}, configError(err, "failed to decode %s settings", ServerKey)
	}
	return out.Server, nil
}

// Logging decodes the logging settings.
func (c *Config) Logging() types.Logging {
	return types.Logging{
		Level: c.v.GetString(LoggingLevelKey),
		Mode:  c.v.GetString(LoggingModeKey),
	}
}

// ConfigFileUsed returns the path of the config file that was read, if any.
func (c *Config) ConfigFileUsed() string {
	return c.fileUsed
}

// KeyAsEnvVar returns the environment variable corresponding to a config key
func KeyAsEnvVar(key string) string {
	return strings.ToUpper(
		fmt.Sprintf("%s_%s", environmentVariablePrefix, environmentVariableReplace.Replace(key)),
	)
}

func configError(err error, format string, a ...any) *models.BaseError {
	return models.NewBaseError(format, a...).
		WithCode(models.ConfigurationError).
		WithComponent("Config").
		WithCause(err)
}
