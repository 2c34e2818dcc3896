package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"PriceBand/internal/bounds"
	"PriceBand/internal/session"
	"PriceBand/internal/volatility"
)

// Config holds all application configuration.
type Config struct {
	Input struct {
		Path      string `yaml:"path"`
		OpenTable string `yaml:"open_table"`
	} `yaml:"input"`
	Engine struct {
		WindowSize       int    `yaml:"window_size"`
		AllowShortWindow bool   `yaml:"allow_short_window"`
		DivisorPolicy    string `yaml:"divisor_policy"` // "available" or "fixed"
		NoDataPolicy     string `yaml:"nodata_policy"`  // "omit" or "carry"
		Workers          int    `yaml:"workers"`
	} `yaml:"engine"`
	Session struct {
		Ranges []struct {
			Start string `yaml:"start"`
			End   string `yaml:"end"`
		} `yaml:"ranges"`
		StepSeconds int `yaml:"step_seconds"`
	} `yaml:"session"`
	Output struct {
		Dir string `yaml:"dir"`
		// Precision is a pointer so an explicit 0 (whole-currency markets)
		// is distinguishable from "not set".
		Precision *int `yaml:"precision"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields the defaults.
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
	if v := os.Getenv("PRICEBAND_INPUT"); v != "" {
		cfg.Input.Path = v
	}
	if v := os.Getenv("PRICEBAND_OPEN_TABLE"); v != "" {
		cfg.Input.OpenTable = v
	}
	if v := os.Getenv("PRICEBAND_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.WindowSize = n
		}
	}
	if v := os.Getenv("PRICEBAND_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Workers = n
		}
	}
	if v := os.Getenv("PRICEBAND_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}

	// Defaults
	if cfg.Engine.WindowSize == 0 {
		cfg.Engine.WindowSize = 14
	}
	if cfg.Engine.DivisorPolicy == "" {
		cfg.Engine.DivisorPolicy = string(volatility.DivideByAvailable)
	}
	if cfg.Engine.NoDataPolicy == "" {
		cfg.Engine.NoDataPolicy = string(bounds.NoDataOmit)
	}
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = 4
	}
	if cfg.Output.Precision == nil {
		two := 2
		cfg.Output.Precision = &two
	}
	if cfg.Schedule.DailyCron == "" {
		// Weekday mornings at 09:25, just before the session opens.
		cfg.Schedule.DailyCron = "0 25 9 * * 1-5"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Engine.WindowSize <= 0 {
		return fmt.Errorf("engine.window_size must be positive")
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be positive")
	}
	if !volatility.DivisorPolicy(c.Engine.DivisorPolicy).Valid() {
		return fmt.Errorf("engine.divisor_policy must be %q or %q",
			volatility.DivideByAvailable, volatility.DivideByFixed)
	}
	if !bounds.NoDataPolicy(c.Engine.NoDataPolicy).Valid() {
		return fmt.Errorf("engine.nodata_policy must be %q or %q",
			bounds.NoDataOmit, bounds.NoDataCarry)
	}
	if c.Output.Precision != nil && *c.Output.Precision < 0 {
		return fmt.Errorf("output.precision must not be negative")
	}
	if _, err := c.TradingSession(); err != nil {
		return err
	}
	return nil
}

// TradingSession builds the session calendar from configuration, falling back
// to the A-share default when no ranges are configured.
func (c *Config) TradingSession() (session.Session, error) {
	if len(c.Session.Ranges) == 0 {
		return session.Default(), nil
	}
	s := session.Session{StepSeconds: c.Session.StepSeconds}
	if s.StepSeconds == 0 {
		s.StepSeconds = 60
	}
	for i, r := range c.Session.Ranges {
		start, err := session.ParseSlot(r.Start)
		if err != nil {
			return session.Session{}, fmt.Errorf("session.ranges[%d].start: %w", i, err)
		}
		end, err := session.ParseSlot(r.End)
		if err != nil {
			return session.Session{}, fmt.Errorf("session.ranges[%d].end: %w", i, err)
		}
		s.Ranges = append(s.Ranges, session.Range{Start: start, End: end})
	}
	if err := s.Validate(); err != nil {
		return session.Session{}, fmt.Errorf("session: %w", err)
	}
	return s, nil
}
