package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

type Config struct {
	// Storage
	DataBackend  string
	SQLiteDBPath string
	SeedFile     string

	// Options
	TaxonomyDir string

	// Query engine
	WeekStart string
	Timezone  string

	// Money
	Currency          string
	CurrencyPrecision int

	// Reports
	ReportCacheSize int
	ReportCacheTTL  time.Duration

	LogLevel string
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		SeedFile:     getEnv("SEED_FILE", ""),

		TaxonomyDir: getEnv("TAXONOMY_DIR", ""),

		WeekStart: getEnv("WEEK_START", "monday"),
		Timezone:  getEnv("TIMEZONE", "Local"),

		Currency:          getEnv("CURRENCY", "EUR"),
		CurrencyPrecision: getEnvInt("CURRENCY_PRECISION", int(core.DefaultPrecision)),

		ReportCacheSize: getEnvInt("REPORT_CACHE_SIZE", 24),
		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.SeedFile != "" && c.DataBackend != "memory" {
		errors = append(errors, "seed file is only supported by the memory backend")
	}

	if c.TaxonomyDir != "" {
		if info, err := os.Stat(c.TaxonomyDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("taxonomy directory does not exist: %s", c.TaxonomyDir))
		}
	}

	if _, err := ParseWeekday(c.WeekStart); err != nil {
		errors = append(errors, err.Error())
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if len(strings.TrimSpace(c.Currency)) != 3 {
		errors = append(errors, fmt.Sprintf("invalid currency '%s': must be a three letter code", c.Currency))
	}
	if c.CurrencyPrecision < 0 || c.CurrencyPrecision > 4 {
		errors = append(errors, fmt.Sprintf("invalid currency precision %d: must be between 0 and 4", c.CurrencyPrecision))
	}

	if c.ReportCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	} else if c.ReportCacheSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must be at most 1000", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must not be negative", c.ReportCacheTTL))
	} else if c.ReportCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must be at most 24 hours", c.ReportCacheTTL))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) CurrencyInfo() core.Currency {
	return core.ParseCurrency(c.Currency, int32(c.CurrencyPrecision))
}

// ParseWeekday accepts full English weekday names or their three letter
// abbreviation, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("invalid week start '%s': must be a weekday name", s)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
