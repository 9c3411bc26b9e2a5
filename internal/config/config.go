// Package config provides configuration management for schemawatch.
//
// Configuration is loaded from four sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SCHEMAWATCH_ prefix, plus the bare GODOT_BIN)
//  3. Config file (.schemawatch.yaml)
//  4. Built-in defaults
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults for the watch settings.
const (
	DefaultRoot       = "modules"
	DefaultGodotBin   = "godot"
	DefaultScript     = "tools/regenerate_module.gd"
	DefaultSchemaFile = "schema.toml"
	DefaultTimeout    = 30 * time.Second
	DefaultDebounce   = time.Second
)

// Config represents the global configuration for schemawatch.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored status output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// GodotBin is the engine executable used for regeneration.
	GodotBin string `mapstructure:"godot-bin" json:"godotBin"`

	// Script is the engine script passed via --script.
	Script string `mapstructure:"script" json:"script"`

	// SchemaFile is the file name that marks a module.
	SchemaFile string `mapstructure:"schema-file" json:"schemaFile"`

	// ProjectDir is the working directory of the engine subprocess.
	// Empty means the current directory.
	ProjectDir string `mapstructure:"project-dir" json:"projectDir"`

	// Timeout bounds a single regeneration.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`

	// Debounce is the per-file window in which repeated changes are ignored.
	Debounce time.Duration `mapstructure:"debounce" json:"debounce"`

	// ShowDiff prints a unified diff of each changed schema file.
	ShowDiff bool `mapstructure:"show-diff" json:"showDiff"`

	// EngineConstraint, when set, is checked against the engine version
	// before watching starts.
	EngineConstraint string `mapstructure:"engine-constraint" json:"engineConstraint"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(); not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:   LogLevelInfo,
		LogFormat:  LogFormatText,
		GodotBin:   DefaultGodotBin,
		Script:     DefaultScript,
		SchemaFile: DefaultSchemaFile,
		Timeout:    DefaultTimeout,
		Debounce:   DefaultDebounce,
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if c.GodotBin == "" {
		return errors.New("godot-bin must not be empty")
	}

	if c.Script == "" {
		return errors.New("script must not be empty")
	}

	if c.SchemaFile == "" || strings.ContainsRune(c.SchemaFile, os.PathSeparator) {
		return fmt.Errorf("invalid schema file name %q", c.SchemaFile)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}

	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce %s: must not be negative", c.Debounce)
	}

	if c.EngineConstraint != "" {
		if _, err := semver.NewConstraint(c.EngineConstraint); err != nil {
			return fmt.Errorf("invalid engine constraint %q: %w", c.EngineConstraint, err)
		}
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := configureEnv(v); err != nil {
		return nil, err
	}

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", false)
	v.SetDefault("quiet", false)
	v.SetDefault("godot-bin", d.GodotBin)
	v.SetDefault("script", d.Script)
	v.SetDefault("schema-file", d.SchemaFile)
	v.SetDefault("project-dir", "")
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("show-diff", false)
	v.SetDefault("engine-constraint", "")
}

func configureEnv(v *viper.Viper) error {
	v.SetEnvPrefix("SCHEMAWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// GODOT_BIN is the conventional variable; the prefixed one wins.
	if err := v.BindEnv("godot-bin", "SCHEMAWATCH_GODOT_BIN", "GODOT_BIN"); err != nil {
		return fmt.Errorf("binding GODOT_BIN: %w", err)
	}

	return nil
}

func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".schemawatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "schemawatch"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags binds cmd's own flags and the persistent flags of every ancestor.
// Only flags the user actually set override env and file values.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
