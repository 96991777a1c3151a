package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"

	"focal/internal/calendar"
)

// Config keeps runtime settings for the planner.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`

	TelegramToken    string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramDisabled bool   `mapstructure:"TELEGRAM_DISABLED"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	ReportIntervalHours int    `mapstructure:"REPORT_INTERVAL_HOURS"`
	ReportTime          string `mapstructure:"REPORT_TIME"`

	Timezone    string `mapstructure:"TIMEZONE"`
	WeekStartOn string `mapstructure:"WEEK_START"`

	HTTPAddr     string `mapstructure:"HTTP_ADDR"`
	HTTPAPIToken string `mapstructure:"HTTP_API_TOKEN"`

	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	AgendaCacheTTL time.Duration `mapstructure:"AGENDA_CACHE_TTL"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	// Resolved from the raw values above.
	ReportInterval time.Duration  `mapstructure:"-"`
	ReportHour     int            `mapstructure:"-"`
	ReportMinute   int            `mapstructure:"-"`
	Location       *time.Location `mapstructure:"-"`
	WeekStart      time.Weekday   `mapstructure:"-"`
}

var defaults = map[string]any{
	"ENVIRONMENT":           "development",
	"TELEGRAM_TOKEN":        "",
	"TELEGRAM_DISABLED":     false,
	"DATABASE_URL":          "focal.db",
	"REPORT_INTERVAL_HOURS": 5,
	"REPORT_TIME":           "",
	"TIMEZONE":              "Local",
	"WEEK_START":            "monday",
	"HTTP_ADDR":             "127.0.0.1:8080",
	"HTTP_API_TOKEN":        "",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"AGENDA_CACHE_TTL":      "10m",
	"LOG_LEVEL":             "info",
	"LOG_FILE":              "",
}

// Load reads configuration from the environment and an optional .env in the working directory.
func Load() (Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with the .env lookup rooted at dir. Environment variables win over the file.
func LoadFrom(dir string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT asks for production behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// DailyReport reports whether REPORT_TIME replaces the report interval.
func (c *Config) DailyReport() bool {
	return strings.TrimSpace(c.ReportTime) != ""
}

// MySQL reports whether DATABASE_URL selects the MySQL dialect.
func (c *Config) MySQL() bool {
	return strings.HasPrefix(c.DatabaseURL, "mysql://")
}

func (c *Config) resolve() error {
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	if c.DatabaseURL == "" {
		c.DatabaseURL = "focal.db"
	}

	if c.ReportIntervalHours <= 0 {
		c.ReportIntervalHours = 5
	}
	c.ReportInterval = time.Duration(c.ReportIntervalHours) * time.Hour

	if raw := strings.TrimSpace(c.ReportTime); raw != "" {
		at, err := time.Parse("15:04", raw)
		if err != nil {
			return fmt.Errorf("REPORT_TIME must be HH:MM, got %q", raw)
		}
		c.ReportHour, c.ReportMinute = at.Hour(), at.Minute()
	}

	loc, err := calendar.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	c.Location = loc

	weekStart, err := calendar.ParseWeekday(c.WeekStartOn)
	if err != nil {
		return fmt.Errorf("WEEK_START: %w", err)
	}
	c.WeekStart = weekStart

	if c.AgendaCacheTTL <= 0 {
		c.AgendaCacheTTL = 10 * time.Minute
	}

	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	c.HTTPAPIToken = strings.TrimSpace(c.HTTPAPIToken)
	if c.HTTPAddr != "" && c.HTTPAPIToken == "" && !loopback(c.HTTPAddr) {
		return fmt.Errorf("HTTP_API_TOKEN is required when HTTP_ADDR %q is not a loopback address", c.HTTPAddr)
	}

	if c.TelegramToken == "" && !c.TelegramDisabled {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// loopback reports whether addr only accepts local connections. An empty host binds every interface.
func loopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
