package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lt=65536"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"50" validate:"gt=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"25" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
}

// PathsConfig contains the pipeline's file system boundary: raw inputs in,
// derived artifacts out. All stages between the two run in memory.
type PathsConfig struct {
	DataDir        string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LightsFile     string `yaml:"lights_file" envconfig:"LIGHTS_FILE" default:"raw/viirs_county_monthly.csv"`
	FirmsFile      string `yaml:"firms_file" envconfig:"FIRMS_FILE" default:"raw/sp500_clean.csv"`
	ReturnsFile    string `yaml:"returns_file" envconfig:"RETURNS_FILE" default:"raw/sp500_monthly_returns.csv"`
	CountiesFile   string `yaml:"counties_file" envconfig:"COUNTIES_FILE" default:"raw/us_counties.geojson"`
	OutputDir      string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"final"`
	PanelFile      string `yaml:"panel_file" envconfig:"PANEL_FILE" default:"nightlights_panel.csv"`
	BrightnessFile string `yaml:"brightness_file" envconfig:"BRIGHTNESS_FILE" default:"brightness_monthly.csv"`
	RegressionFile string `yaml:"regression_file" envconfig:"REGRESSION_FILE" default:"regression.json"`
	RejectionsFile string `yaml:"rejections_file" envconfig:"REJECTIONS_FILE" default:"rejections.csv"`
}

// PipelineConfig contains stage behavior options
type PipelineConfig struct {
	// CountryISO filters raw radiance observations; the study covers US
	// counties only.
	CountryISO string `yaml:"country_iso" envconfig:"COUNTRY_ISO" default:"USA"`
	// WindowStart drops brightness months before this "2006-01" month.
	// Empty keeps the full history.
	WindowStart string `yaml:"window_start" envconfig:"WINDOW_START" default:"2018-01"`
	// ClusterBy selects standard-error clustering for the regression.
	// The unclustered i.i.d. baseline is the default.
	ClusterBy string `yaml:"cluster_by" envconfig:"CLUSTER_BY" default:"none" validate:"oneof=none ticker county yearmonth"`
}

// Load loads configuration from environment variables and an optional YAML
// file, env taking precedence, then validates the result.
func Load() (*Config, error) {
	var fileCfg Config

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		loaded, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		fileCfg = *loaded
	}

	cfg := fileCfg
	if err := envconfig.Process("NIGHTLIGHTS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// getConfigFilePath returns the config file path, overridable via env
func getConfigFilePath() string {
	if path := os.Getenv("NIGHTLIGHTS_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

func (c *Config) validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Pipeline.WindowStart != "" {
		if _, err := domain.ParseYearMonth(c.Pipeline.WindowStart); err != nil {
			return fmt.Errorf("pipeline.window_start: %w", err)
		}
	}
	return nil
}

// Cluster returns the typed clustering choice.
func (c *Config) Cluster() domain.ClusterBy {
	return domain.ClusterBy(c.Pipeline.ClusterBy)
}

// Window returns the parsed observation window start, or a zero YearMonth
// when no window is configured.
func (c *Config) Window() domain.YearMonth {
	if c.Pipeline.WindowStart == "" {
		return domain.YearMonth{}
	}
	ym, err := domain.ParseYearMonth(c.Pipeline.WindowStart)
	if err != nil {
		return domain.YearMonth{}
	}
	return ym
}

// InputPath resolves a raw input file under the data directory.
func (c *Config) InputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.DataDir, name)
}

// OutputPath resolves a derived artifact under the output directory.
func (c *Config) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.DataDir, c.Paths.OutputDir, name)
}
