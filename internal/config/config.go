package config

import (
	"os"
	"strconv"
	"strings"

	"alre/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete analysis configuration
type Config struct {
	Paths   PathConfig    `yaml:"paths"`
	Figures FigureConfig  `yaml:"figures"`
	Loader  LoaderConfig  `yaml:"loader"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`

	// Options is forwarded untouched to the analysis entry point.
	// No option is currently recognised.
	Options map[string]any `yaml:"options"`
}

// PathConfig holds file system paths
type PathConfig struct {
	ResultsDir string `yaml:"results_dir"`
	OutputDir  string `yaml:"output_dir"`
}

// FigureConfig controls rendered chart output
type FigureConfig struct {
	Format   string  `yaml:"format"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
}

// LoaderConfig controls result-table loading
type LoaderConfig struct {
	Workers int `yaml:"workers"`
}

// ExportConfig controls auxiliary artifacts
type ExportConfig struct {
	Workbook bool `yaml:"workbook"`
	Manifest bool `yaml:"manifest"`
	Report   bool `yaml:"report"`
}

// LoggingConfig holds the log level name
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SupportedFormats lists the figure encodings the renderer understands
var SupportedFormats = []string{"png", "svg", "pdf"}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Paths: PathConfig{
			ResultsDir: "results",
			OutputDir:  "figures",
		},
		Figures: FigureConfig{
			Format:   "png",
			WidthIn:  6.4,
			HeightIn: 4.8,
		},
		Loader:  LoaderConfig{Workers: 4},
		Export:  ExportConfig{Workbook: true, Manifest: true, Report: true},
		Logging: LoggingConfig{Level: "INFO"},
		Options: map[string]any{},
	}
}

// Load reads an optional YAML file, applies environment overrides and validates.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(errors.NotFound("config file "+path), "failed to load configuration")
		}
		return errors.IOError("failed to read configuration", err)
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to parse %s", path))
	}
	if config.Options == nil {
		config.Options = map[string]any{}
	}
	return nil
}

func applyEnv(config *Config) {
	config.Paths.ResultsDir = getEnvOrDefault("ALRE_RESULTS_DIR", config.Paths.ResultsDir)
	config.Paths.OutputDir = getEnvOrDefault("ALRE_OUTPUT_DIR", config.Paths.OutputDir)
	config.Figures.Format = strings.ToLower(getEnvOrDefault("ALRE_FORMAT", config.Figures.Format))
	config.Figures.WidthIn = getEnvFloatOrDefault("ALRE_WIDTH_IN", config.Figures.WidthIn)
	config.Figures.HeightIn = getEnvFloatOrDefault("ALRE_HEIGHT_IN", config.Figures.HeightIn)
	config.Loader.Workers = getEnvIntOrDefault("ALRE_WORKERS", config.Loader.Workers)
	config.Export.Workbook = getEnvBoolOrDefault("ALRE_EXPORT_WORKBOOK", config.Export.Workbook)
	config.Export.Report = getEnvBoolOrDefault("ALRE_EXPORT_REPORT", config.Export.Report)
	config.Logging.Level = getEnvOrDefault("LOG_LEVEL", config.Logging.Level)
}

// Validate checks required fields and ranges
func (c *Config) Validate() error {
	if c.Paths.ResultsDir == "" {
		return errors.ConfigInvalid("results directory is required")
	}
	if c.Paths.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if !isSupportedFormat(c.Figures.Format) {
		return errors.ConfigInvalid("figure format must be one of " + strings.Join(SupportedFormats, ", "))
	}
	if c.Figures.WidthIn <= 0 || c.Figures.HeightIn <= 0 {
		return errors.ConfigInvalid("figure size must be positive")
	}
	if c.Loader.Workers < 1 {
		return errors.ConfigInvalid("loader workers must be at least 1")
	}
	return nil
}

func isSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
