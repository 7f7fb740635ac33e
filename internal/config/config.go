// Package config loads notice-builder settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidConcurrency = errors.New("concurrency must not be negative")
	ErrMissingOutput      = errors.New("report output must be set")
	ErrDuplicateOutput    = errors.New("report output used more than once")
	ErrInvalidTimeout     = errors.New("preprocessor timeout must not be negative")
)

// Default configuration values.
const (
	DefaultOutput      = "NOTICE"
	DefaultServiceName = "notice-builder"
	EnvPrefix          = "NOTICE_BUILDER"

	configName = "notice"
)

// Config holds all settings of a notice-builder run.
type Config struct {
	AnalysisResult       string             `mapstructure:"analysis_result"`
	OmitExcluded         bool               `mapstructure:"omit_excluded"`
	CopyrightGarbage     string             `mapstructure:"copyright_garbage"`
	DefaultGarbage       bool               `mapstructure:"default_garbage"`
	LicenseConfiguration string             `mapstructure:"license_configuration"`
	LicenseTexts         LicenseTextsConfig `mapstructure:"license_texts"`
	Preprocessor         PreprocessorConfig `mapstructure:"preprocessor"`
	Reports              []ReportConfig     `mapstructure:"reports"`
	Concurrency          int                `mapstructure:"concurrency"`
	Logging              LoggingConfig      `mapstructure:"logging"`
	Telemetry            TelemetryConfig    `mapstructure:"telemetry"`
}

// LicenseTextsConfig selects where license texts come from.
type LicenseTextsConfig struct {
	// Directories are searched in order before the bundled texts.
	Directories []string `mapstructure:"directories"`
	Bundled     bool     `mapstructure:"bundled"`
}

// PreprocessorConfig bounds preprocessing scripts.
type PreprocessorConfig struct {
	MaxSteps uint64        `mapstructure:"max_steps"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ReportConfig describes one notice to generate. Script is an optional path
// to a preprocessing script.
type ReportConfig struct {
	Name   string `mapstructure:"name"`
	Output string `mapstructure:"output"`
	Script string `mapstructure:"script"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	ServiceName  string `mapstructure:"service_name"`
}

// Load reads configuration from configPath, or from notice.yaml in the
// working directory or ./config when configPath is empty. A missing search
// file is not an error; a missing explicit file is. Environment variables
// prefixed NOTICE_BUILDER_ override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis_result", "")
	v.SetDefault("omit_excluded", true)
	v.SetDefault("copyright_garbage", "")
	v.SetDefault("default_garbage", true)
	v.SetDefault("license_configuration", "")
	v.SetDefault("concurrency", 0)

	v.SetDefault("license_texts.directories", []string{})
	v.SetDefault("license_texts.bundled", true)

	v.SetDefault("preprocessor.max_steps", 0)
	v.SetDefault("preprocessor.timeout", "0s")

	v.SetDefault("reports", []map[string]any{{"output": DefaultOutput}})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.otlp_headers", "")
	v.SetDefault("telemetry.service_name", DefaultServiceName)
}

// Validate checks value ranges and report outputs.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Concurrency)
	}

	if c.Preprocessor.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Preprocessor.Timeout)
	}

	seen := make(map[string]bool, len(c.Reports))
	for i, r := range c.Reports {
		if r.Output == "" {
			return fmt.Errorf("%w: reports[%d]", ErrMissingOutput, i)
		}

		// Several reports may stream to stdout; files must be distinct.
		if r.Output != "-" && seen[r.Output] {
			return fmt.Errorf("%w: %q", ErrDuplicateOutput, r.Output)
		}

		seen[r.Output] = true
	}

	return nil
}

// ReportName returns r.Name, or the output path when no name is set.
func (r ReportConfig) ReportName() string {
	if r.Name != "" {
		return r.Name
	}

	return r.Output
}
