package configflags

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag annotations recording the config key a registered flag overrides.
const (
	configPathAnnotation = "testgate/config-path"
	envVarsAnnotation    = "testgate/env-vars"
)

// Definition ties a command line flag to a config key. A flag only overrides
// the key when it is set by the user.
type Definition struct {
	FlagName     string
	ConfigPath   string
	DefaultValue interface{}
	Description  string
	// EnvironmentVariables are read for ConfigPath in addition to the
	// TESTGATE_* variable.
	EnvironmentVariables []string
}

// RegisterFlags adds the flags of every definition set to cmd.
func RegisterFlags(cmd *cobra.Command, register map[string][]Definition) error {
	return registerFlags(cmd.Flags(), register)
}

// RegisterPersistentFlags is RegisterFlags for flags inherited by subcommands.
func RegisterPersistentFlags(cmd *cobra.Command, register map[string][]Definition) error {
	return registerFlags(cmd.PersistentFlags(), register)
}

func registerFlags(target *pflag.FlagSet, register map[string][]Definition) error {
	for name, defs := range register {
		fset := pflag.NewFlagSet(name, pflag.ContinueOnError)
		for _, def := range defs {
			switch v := def.DefaultValue.(type) {
			case string:
				fset.String(def.FlagName, v, def.Description)
			case int:
				fset.Int(def.FlagName, v, def.Description)
			case bool:
				fset.Bool(def.FlagName, v, def.Description)
			case []string:
				fset.StringSlice(def.FlagName, v, def.Description)
			case time.Duration:
				fset.Duration(def.FlagName, v, def.Description)
			default:
				return fmt.Errorf("unhandled type: %T for flag %s", v, def.FlagName)
			}
			if err := fset.SetAnnotation(def.FlagName, configPathAnnotation, []string{def.ConfigPath}); err != nil {
				return err
			}
			if len(def.EnvironmentVariables) > 0 {
				if err := fset.SetAnnotation(def.FlagName, envVarsAnnotation, def.EnvironmentVariables); err != nil {
					return err
				}
			}
		}
		target.AddFlagSet(fset)
	}
	return nil
}

// Bindings returns the flags of fset that were added by RegisterFlags or
// RegisterPersistentFlags keyed by config path, and their extra environment
// variables. Flags a command declares on its own are never bound.
func Bindings(fset *pflag.FlagSet) (map[string]*pflag.Flag, map[string][]string) {
	flags := make(map[string]*pflag.Flag)
	envs := make(map[string][]string)
	fset.VisitAll(func(flag *pflag.Flag) {
		paths := flag.Annotations[configPathAnnotation]
		if len(paths) == 0 {
			return
		}
		flags[paths[0]] = flag
		if vars := flag.Annotations[envVarsAnnotation]; len(vars) > 0 {
			envs[paths[0]] = vars
		}
	})
	return flags, envs
}
