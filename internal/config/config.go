package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Feed struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"feed"`
	Currencies []string `yaml:"currencies"`
	Database   struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	State struct {
		MarkerFile string `yaml:"marker_file"`
	} `yaml:"state"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Pipeline struct {
		MinHistory      int           `yaml:"min_history"`
		SplitRatio      float64       `yaml:"split_ratio"`
		ForecastHorizon int           `yaml:"forecast_horizon"`
		MaxGapFill      int           `yaml:"max_gap_fill"`
		Parallelism     int           `yaml:"parallelism"`
		RunTimeout      time.Duration `yaml:"run_timeout"`
		MinMovement     float64       `yaml:"min_movement"`
	} `yaml:"pipeline"`
	Model struct {
		Lags           int   `yaml:"lags"`
		SeasonalLag    int   `yaml:"seasonal_lag"`
		RollingWindows []int `yaml:"rolling_windows"`
	} `yaml:"model"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("NBP_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PIPELINE_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Parallelism = n
		}
	}

	// Defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Feed.BaseURL == "" {
		cfg.Feed.BaseURL = "https://api.nbp.pl/api"
	}
	if cfg.Feed.Timeout == 0 {
		cfg.Feed.Timeout = 30 * time.Second
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/ratecast.db"
	}
	if cfg.State.MarkerFile == "" {
		cfg.State.MarkerFile = "data/run_marker.json"
	}
	if cfg.Schedule.DailyCron == "" {
		// NBP publishes mid-rates around noon CET on business days.
		cfg.Schedule.DailyCron = "0 0 13 * * 1-5"
	}
	if cfg.Pipeline.MinHistory == 0 {
		cfg.Pipeline.MinHistory = 100
	}
	if cfg.Pipeline.SplitRatio == 0 {
		cfg.Pipeline.SplitRatio = 0.8
	}
	if cfg.Pipeline.ForecastHorizon == 0 {
		cfg.Pipeline.ForecastHorizon = 7
	}
	if cfg.Pipeline.MaxGapFill == 0 {
		cfg.Pipeline.MaxGapFill = 3
	}
	if cfg.Pipeline.Parallelism == 0 {
		cfg.Pipeline.Parallelism = 4
	}
	if cfg.Pipeline.RunTimeout == 0 {
		cfg.Pipeline.RunTimeout = 10 * time.Minute
	}
	if cfg.Model.Lags == 0 {
		cfg.Model.Lags = 5
	}
	if cfg.Model.RollingWindows == nil {
		cfg.Model.RollingWindows = []int{2, 3}
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if len(c.Currencies) == 0 {
		return fmt.Errorf("currencies must list at least one code")
	}
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required")
	}
	if c.Pipeline.MinHistory <= 0 {
		return fmt.Errorf("pipeline.min_history must be positive")
	}
	if c.Pipeline.SplitRatio <= 0 || c.Pipeline.SplitRatio >= 1 {
		return fmt.Errorf("pipeline.split_ratio must be in (0, 1)")
	}
	if c.Pipeline.ForecastHorizon <= 0 {
		return fmt.Errorf("pipeline.forecast_horizon must be positive")
	}
	if c.Pipeline.MaxGapFill < 0 {
		return fmt.Errorf("pipeline.max_gap_fill must be non-negative")
	}
	if c.Pipeline.Parallelism <= 0 {
		return fmt.Errorf("pipeline.parallelism must be positive")
	}
	if c.Pipeline.MinMovement < 0 {
		return fmt.Errorf("pipeline.min_movement must be non-negative")
	}
	if c.Model.Lags <= 0 {
		return fmt.Errorf("model.lags must be positive")
	}
	if c.Model.SeasonalLag < 0 {
		return fmt.Errorf("model.seasonal_lag must be non-negative")
	}
	for _, w := range c.Model.RollingWindows {
		if w < 2 {
			return fmt.Errorf("model.rolling_windows entries must be >= 2")
		}
	}
	return nil
}
