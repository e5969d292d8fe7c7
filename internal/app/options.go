package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dshills/cadence/internal/plugin"
	plua "github.com/dshills/cadence/internal/plugin/lua"
)

const (
	// AppName is the application name.
	AppName = "cadence"
	// ConfigFileName is the name of the options file (without extension).
	ConfigFileName = "cadence"
	// ConfigFileExt is the options file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes environment overrides, e.g. CADENCE_LOG_LEVEL.
	EnvPrefix = "CADENCE"
	// SeedFileName is the default seed file name in the config directory.
	SeedFileName = "settings.toml"
)

// Options configures the application.
type Options struct {
	// Extensions are the directories searched for extensions.
	Extensions []string `mapstructure:"extensions"`

	// Seed is the TOML file applied to the store at start.
	Seed string `mapstructure:"seed"`

	// LogLevel sets the logging verbosity.
	LogLevel string `mapstructure:"log_level"`

	// Watch re-applies the seed file whenever it changes.
	Watch bool `mapstructure:"watch"`

	// ExecutionTimeout bounds each run of extension code.
	ExecutionTimeout time.Duration `mapstructure:"execution_timeout"`

	// LogOutput receives log lines. Defaults to stderr.
	LogOutput io.Writer `mapstructure:"-"`
}

// ConfigDir returns the cadence configuration directory.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	opts := Options{
		Extensions:       plugin.DefaultExtensionPaths(),
		LogLevel:         "info",
		ExecutionTimeout: plua.DefaultExecutionTimeout,
	}
	if dir, err := ConfigDir(); err == nil {
		opts.Seed = filepath.Join(dir, SeedFileName)
	}
	return opts
}

// NewViper returns a viper instance with defaults and CADENCE_* environment
// overrides registered. Callers may bind flags before LoadOptions.
func NewViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultOptions()
	v.SetDefault("extensions", defaults.Extensions)
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("watch", defaults.Watch)
	v.SetDefault("execution_timeout", defaults.ExecutionTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadOptions reads the options file and decodes the result. With an empty
// configFile, cadence.toml is looked up in the working directory and then
// the config directory; a missing file is not an error. An explicit
// configFile must exist.
func LoadOptions(v *viper.Viper, configFile string) (Options, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(".")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Options{}, fmt.Errorf("failed to read options: %w", err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse options: %w", err)
	}
	return opts, nil
}
