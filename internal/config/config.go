package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"golfwatch/internal/forecast"
)

// Config holds all application configuration. Values come from an optional
// YAML file, overridden by environment variables, with defaults filled last.
// Nothing below the config layer reads the environment.
type Config struct {
	Course struct {
		Name     string `yaml:"name"`
		FeedURL  string `yaml:"feed_url"`
		FeedFile string `yaml:"feed_file"`
	} `yaml:"course"`

	Rules struct {
		PrecipLimitMM float64  `yaml:"precip_limit_mm"`
		WindLimitMS   float64  `yaml:"wind_limit_ms"`
		CautionStart  int      `yaml:"caution_start"`
		CautionEnd    int      `yaml:"caution_end"`
		RainTokens    []string `yaml:"rain_tokens"`
		HorizonDays   int      `yaml:"horizon_days"`
	} `yaml:"rules"`

	Settings struct {
		Backend          string `yaml:"backend"` // "sqlite" or "github"
		DefaultRecipient string `yaml:"default_recipient"`
		SQLitePath       string `yaml:"sqlite_path"`
		GitHub           struct {
			Repo   string `yaml:"repo"` // "owner/name"
			Path   string `yaml:"path"`
			Branch string `yaml:"branch"`
			Token  string `yaml:"token"`
		} `yaml:"github"`
	} `yaml:"settings"`

	Notify struct {
		NtfyBaseURL string `yaml:"ntfy_base_url"`
		NtfyTopic   string `yaml:"ntfy_topic"`
		SMTP        struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Username string `yaml:"username"`
			Password string `yaml:"password"`
			From     string `yaml:"from"`
			UseTLS   bool   `yaml:"use_tls"`
		} `yaml:"smtp"`
	} `yaml:"notify"`

	Schedule struct {
		Interval string `yaml:"interval"`
	} `yaml:"schedule"`

	Port           string `yaml:"port"`
	HTTPTimeoutRaw string `yaml:"http_timeout"`

	// Parsed from the raw duration strings above.
	FetchInterval time.Duration `yaml:"-"`
	HTTPTimeout   time.Duration `yaml:"-"`
}

// Load reads the YAML file (missing file is fine), applies environment
// overrides and defaults, and parses durations.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

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
	if v := os.Getenv("GOLFWATCH_COURSE_NAME"); v != "" {
		cfg.Course.Name = v
	}
	if v := os.Getenv("GOLFWATCH_FEED_URL"); v != "" {
		cfg.Course.FeedURL = v
	}
	if v := os.Getenv("GOLFWATCH_FEED_FILE"); v != "" {
		cfg.Course.FeedFile = v
	}
	if v := os.Getenv("GOLFWATCH_SETTINGS_BACKEND"); v != "" {
		cfg.Settings.Backend = v
	}
	if v := os.Getenv("GH_TOKEN"); v != "" {
		cfg.Settings.GitHub.Token = v
	}
	if v := os.Getenv("GOLFWATCH_SETTINGS_REPO"); v != "" {
		cfg.Settings.GitHub.Repo = v
	}
	if v := os.Getenv("NTFY_TOPIC"); v != "" {
		cfg.Notify.NtfyTopic = v
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Notify.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.Notify.SMTP.Password = v
	}
	if v := os.Getenv("FETCH_INTERVAL"); v != "" {
		cfg.Schedule.Interval = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	// Defaults
	if cfg.Course.Name == "" {
		cfg.Course.Name = "golf course"
	}
	defaults := forecast.DefaultRules()
	if cfg.Rules.PrecipLimitMM == 0 {
		cfg.Rules.PrecipLimitMM = defaults.PrecipLimitMM
	}
	if cfg.Rules.WindLimitMS == 0 {
		cfg.Rules.WindLimitMS = defaults.WindLimitMS
	}
	if cfg.Rules.CautionStart == 0 && cfg.Rules.CautionEnd == 0 {
		cfg.Rules.CautionStart = defaults.CautionStart
		cfg.Rules.CautionEnd = defaults.CautionEnd
	}
	if len(cfg.Rules.RainTokens) == 0 {
		cfg.Rules.RainTokens = defaults.RainTokens
	}
	if cfg.Rules.HorizonDays == 0 {
		cfg.Rules.HorizonDays = defaults.HorizonDays
	}
	if cfg.Settings.Backend == "" {
		cfg.Settings.Backend = "sqlite"
	}
	if cfg.Settings.SQLitePath == "" {
		cfg.Settings.SQLitePath = "data/golfwatch.db"
	}
	if cfg.Schedule.Interval == "" {
		cfg.Schedule.Interval = "1h"
	}
	if cfg.HTTPTimeoutRaw == "" {
		cfg.HTTPTimeoutRaw = "10s"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Notify.SMTP.Port == 0 {
		cfg.Notify.SMTP.Port = 465
	}

	cfg.FetchInterval, err = time.ParseDuration(cfg.Schedule.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule.interval: %w", err)
	}
	cfg.HTTPTimeout, err = time.ParseDuration(cfg.HTTPTimeoutRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid http_timeout: %w", err)
	}

	return cfg, nil
}

// ForecastRules assembles the rule set handed to the evaluator.
func (c *Config) ForecastRules() forecast.Rules {
	return forecast.Rules{
		PrecipLimitMM: c.Rules.PrecipLimitMM,
		WindLimitMS:   c.Rules.WindLimitMS,
		CautionStart:  c.Rules.CautionStart,
		CautionEnd:    c.Rules.CautionEnd,
		RainTokens:    c.Rules.RainTokens,
		HorizonDays:   c.Rules.HorizonDays,
	}
}

// Validate checks that all required fields are set and coherent.
func (c *Config) Validate() error {
	if c.Course.FeedURL == "" && c.Course.FeedFile == "" {
		return fmt.Errorf("one of course.feed_url or course.feed_file is required")
	}
	if c.Rules.HorizonDays <= 0 {
		return fmt.Errorf("rules.horizon_days must be positive")
	}
	if c.Rules.CautionStart < 0 || c.Rules.CautionEnd < c.Rules.CautionStart ||
		c.Rules.CautionEnd >= c.Rules.HorizonDays {
		return fmt.Errorf("rules caution window [%d,%d] must sit inside the %d-day horizon",
			c.Rules.CautionStart, c.Rules.CautionEnd, c.Rules.HorizonDays)
	}
	switch c.Settings.Backend {
	case "sqlite":
		if c.Settings.SQLitePath == "" {
			return fmt.Errorf("settings.sqlite_path is required for the sqlite backend")
		}
	case "github":
		if c.Settings.GitHub.Repo == "" {
			return fmt.Errorf("settings.github.repo is required for the github backend")
		}
		if c.Settings.GitHub.Token == "" {
			return fmt.Errorf("settings.github.token is required for the github backend")
		}
	default:
		return fmt.Errorf("unknown settings backend %q", c.Settings.Backend)
	}
	if c.Notify.SMTP.Host != "" && c.Notify.SMTP.From == "" {
		return fmt.Errorf("notify.smtp.from is required when SMTP is configured")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}
