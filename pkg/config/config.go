// Package config provides configuration loading and validation for the ordmap CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidKeyType  = errors.New("invalid tree key type")
	ErrInvalidOrder    = errors.New("invalid tree order")
	ErrInvalidLogLevel = errors.New("invalid logging level")
	ErrInvalidFormat   = errors.New("invalid render format")
	ErrInvalidStyle    = errors.New("invalid render style")
	ErrInvalidBenchOps = errors.New("bench ops and key space must be positive")
	ErrInvalidRatio    = errors.New("bench remove ratio must be within [0, 1]")
)

// Key types understood by the CLI.
const (
	KeyTypeInt    = "int"
	KeyTypeString = "string"
)

// Orders understood by the CLI.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Output formats understood by the CLI.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// EnvPrefix is the prefix of environment variables overriding the config.
const EnvPrefix = "ORDMAP"

var (
	validStyles = []string{"light", "rounded", "ascii"}
	validLevels = []string{"debug", "info", "warn", "error"}
)

// Config holds all configuration for the ordmap CLI.
type Config struct {
	Tree      TreeConfig      `mapstructure:"tree"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Render    RenderConfig    `mapstructure:"render"`
	Bench     BenchConfig     `mapstructure:"bench"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TreeConfig selects the key type and ordering of the scripted tree.
type TreeConfig struct {
	KeyType string `mapstructure:"key_type"`
	Order   string `mapstructure:"order"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// RenderConfig holds output rendering configuration.
type RenderConfig struct {
	Style   string `mapstructure:"style"`
	Format  string `mapstructure:"format"`
	MaxRows int    `mapstructure:"max_rows"`
	Color   bool   `mapstructure:"color"`
}

// BenchConfig holds the randomized workload parameters.
type BenchConfig struct {
	Ops         int     `mapstructure:"ops"`
	KeySpace    int     `mapstructure:"key_space"`
	Seed        int64   `mapstructure:"seed"`
	RemoveRatio float64 `mapstructure:"remove_ratio"`
}

// TelemetryConfig holds exporter settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	MetricsAddr  string `mapstructure:"metrics_addr"`
	Environment  string `mapstructure:"environment"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// SlogLevel converts the configured level name.
func (c LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level

	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	// Set defaults.
	setDefaults(viperCfg)

	// Read config file.
	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("ordmap")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.config/ordmap")
	}

	// Read environment variables.
	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Tree:    TreeConfig{KeyType: DefaultKeyType, Order: DefaultOrder},
		Logging: LoggingConfig{Level: DefaultLogLevel, JSON: DefaultLogJSON},
		Render: RenderConfig{
			Style:   DefaultRenderStyle,
			Format:  DefaultRenderFormat,
			MaxRows: DefaultRenderMaxRows,
			Color:   DefaultRenderColor,
		},
		Bench: BenchConfig{
			Ops:         DefaultBenchOps,
			KeySpace:    DefaultBenchKeySpace,
			Seed:        DefaultBenchSeed,
			RemoveRatio: DefaultBenchRemoveRatio,
		},
		Telemetry: TelemetryConfig{Environment: DefaultTelemetryEnvironment},
	}
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Tree defaults.
	viperCfg.SetDefault("tree.key_type", DefaultKeyType)
	viperCfg.SetDefault("tree.order", DefaultOrder)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	// Render defaults.
	viperCfg.SetDefault("render.color", DefaultRenderColor)
	viperCfg.SetDefault("render.style", DefaultRenderStyle)
	viperCfg.SetDefault("render.max_rows", DefaultRenderMaxRows)
	viperCfg.SetDefault("render.format", DefaultRenderFormat)

	// Bench defaults.
	viperCfg.SetDefault("bench.ops", DefaultBenchOps)
	viperCfg.SetDefault("bench.key_space", DefaultBenchKeySpace)
	viperCfg.SetDefault("bench.seed", DefaultBenchSeed)
	viperCfg.SetDefault("bench.remove_ratio", DefaultBenchRemoveRatio)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.metrics_addr", "")
	viperCfg.SetDefault("telemetry.environment", DefaultTelemetryEnvironment)
}

// Validate checks the configuration after command line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Tree.KeyType != KeyTypeInt && config.Tree.KeyType != KeyTypeString {
		return fmt.Errorf("%w: %q", ErrInvalidKeyType, config.Tree.KeyType)
	}

	if config.Tree.Order != OrderAsc && config.Tree.Order != OrderDesc {
		return fmt.Errorf("%w: %q", ErrInvalidOrder, config.Tree.Order)
	}

	if !slices.Contains(validLevels, strings.ToLower(config.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if err := ValidateFormat(config.Render.Format); err != nil {
		return err
	}

	if !slices.Contains(validStyles, config.Render.Style) {
		return fmt.Errorf("%w: %q", ErrInvalidStyle, config.Render.Style)
	}

	if config.Bench.Ops <= 0 || config.Bench.KeySpace <= 0 {
		return fmt.Errorf("%w: ops=%d key_space=%d", ErrInvalidBenchOps, config.Bench.Ops, config.Bench.KeySpace)
	}

	if config.Bench.RemoveRatio < 0 || config.Bench.RemoveRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidRatio, config.Bench.RemoveRatio)
	}

	return nil
}

// ValidateFormat checks an output format name.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}
