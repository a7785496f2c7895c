package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"` // console, file, both
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
}

// AnalysisConfig contains the analysis-window and ranking settings
type AnalysisConfig struct {
	// WindowStart and WindowEnd bound the financial analysis period,
	// inclusive on both ends. Format: 2006-01-02.
	WindowStart string `yaml:"window_start" envconfig:"WINDOW_START"`
	WindowEnd   string `yaml:"window_end" envconfig:"WINDOW_END"`

	// MinRouteTrips is the minimum sample size for a route to appear in
	// best/worst rankings.
	MinRouteTrips int `yaml:"min_route_trips" envconfig:"MIN_ROUTE_TRIPS"`

	// TopN bounds ranked tables (top drivers, expensive trucks, worst routes).
	TopN int `yaml:"top_n" envconfig:"TOP_N"`
}

// Default returns the configuration defaults. The analysis window matches
// the three full calendar years the reporting surfaces were built around.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/fleet.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "reports",
		},
		Analysis: AnalysisConfig{
			WindowStart:   "2022-01-01",
			WindowEnd:     "2024-12-31",
			MinRouteTrips: 5,
			TopN:          5,
		},
	}
}

// Load builds the configuration: code defaults, then the YAML file at
// configPath if it exists, then FLEET_* environment variables on top.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := envconfig.Process("FLEET", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Window parses the analysis window bounds.
func (c AnalysisConfig) Window() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", c.WindowStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid window_start %q: %w", c.WindowStart, err)
	}
	end, err = time.Parse("2006-01-02", c.WindowEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid window_end %q: %w", c.WindowEnd, err)
	}
	return start, end, nil
}

func (c *Config) validate() error {
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q", c.Logging.Output)
	}

	start, end, err := c.Analysis.Window()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("window_end %s precedes window_start %s", c.Analysis.WindowEnd, c.Analysis.WindowStart)
	}

	if c.Analysis.MinRouteTrips < 1 {
		return fmt.Errorf("min_route_trips must be at least 1, got %d", c.Analysis.MinRouteTrips)
	}
	if c.Analysis.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1, got %d", c.Analysis.TopN)
	}

	return nil
}
