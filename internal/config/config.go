package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port              string `env:"PORT" envDefault:"4000"`
	AppEnv            string `env:"APP_ENV" envDefault:"development"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
	RateLimitPerMin   int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	// Calendar days, dates and the walk cutoff are all evaluated here.
	Timezone string `env:"APP_TIMEZONE"`

	// Ledger
	DataBackend  string `env:"DATA_BACKEND" envDefault:"memory"`
	SQLiteDBName string `env:"SQLITE_DB_NAME" envDefault:"petcare"`

	// Walks
	WalkCutoffHour       int     `env:"WALK_CUTOFF_HOUR" envDefault:"18"`
	WalkGoalMinutes      float64 `env:"WALK_GOAL_MINUTES" envDefault:"30"`
	// Unset means daily at the cutoff hour; set but empty disables the job.
	WalkReminderSchedule string `env:"WALK_REMINDER_SCHEDULE"`

	// AMQP, disabled when the URL is empty
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"petcare"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"ledger_events"`

	// Google Sheets export (worker only)
	GoogleSpreadsheetID      string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName          string `env:"GOOGLE_SHEET_NAME" envDefault:"Activities"`
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	// Worker /metrics listener, disabled when empty
	WorkerMetricsPort string `env:"WORKER_METRICS_PORT"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if _, ok := os.LookupEnv("WALK_REMINDER_SCHEDULE"); !ok {
		cfg.WalkReminderSchedule = defaultReminderSchedule(cfg.WalkCutoffHour)
	}
	return cfg, nil
}

// defaultReminderSchedule fires once a day on the cutoff hour.
func defaultReminderSchedule(cutoffHour int) string {
	return fmt.Sprintf("0 %d * * *", cutoffHour)
}

// firesAfterCutoff reports whether sched ever fires at or after cutoffHour.
// Schedules that only fire earlier in the day can never find an unwalked
// pet past the cutoff.
func firesAfterCutoff(sched cron.Schedule, cutoffHour int) bool {
	t := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100000; i++ {
		t = sched.Next(t)
		if t.IsZero() {
			return false
		}
		if t.Hour() >= cutoffHour {
			return true
		}
	}
	return false
}

// IsProduction reports whether internal error details must be hidden.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Location resolves APP_TIMEZONE, defaulting to the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(strings.TrimSpace(c.Timezone))
}

// SheetsEnabled reports whether the worker should write to a spreadsheet.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

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
	if c.DataBackend == "sqlite" && strings.TrimSpace(c.SQLiteDBName) == "" {
		errors = append(errors, "SQLite database name cannot be empty when using sqlite backend")
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.WalkCutoffHour < 0 || c.WalkCutoffHour > 23 {
		errors = append(errors, fmt.Sprintf("invalid walk cutoff hour %d: must be between 0 and 23", c.WalkCutoffHour))
	}
	if c.WalkGoalMinutes <= 0 {
		errors = append(errors, fmt.Sprintf("invalid walk goal %v: must be positive", c.WalkGoalMinutes))
	}
	if c.WalkReminderSchedule != "" {
		sched, err := cron.ParseStandard(c.WalkReminderSchedule)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid walk reminder schedule '%s': %v", c.WalkReminderSchedule, err))
		} else if c.WalkCutoffHour >= 0 && c.WalkCutoffHour <= 23 && !firesAfterCutoff(sched, c.WalkCutoffHour) {
			errors = append(errors, fmt.Sprintf("walk reminder schedule '%s' never fires at or after walk cutoff hour %d, so no reminder would be sent", c.WalkReminderSchedule, c.WalkCutoffHour))
		}
	}

	if c.RateLimitPerMin < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must not be negative", c.RateLimitPerMin))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker adds the checks only the export worker needs.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the worker")
	}
	if c.SheetsEnabled() && c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided when GOOGLE_SPREADSHEET_ID is set")
	}
	if c.WorkerMetricsPort != "" {
		if port, err := strconv.Atoi(c.WorkerMetricsPort); err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid worker metrics port '%s': must be a number between 1 and 65535", c.WorkerMetricsPort))
		}
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
