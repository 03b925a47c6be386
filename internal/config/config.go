package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	BotToken string

	// Ledger storage
	LedgerBackend string
	LedgerFile    string
	RecipientFile string
	SQLiteDBPath  string

	// Calendar
	Timezone   string
	DigestTime string

	// HTTP Server
	Port string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Conversation sessions
	SessionMaxUsers int
	SessionTTL      time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

var validBackends = []string{"file", "sqlite", "memory"}

func Load() *Config {
	return &Config{
		BotToken: getEnv("BOT_TOKEN", ""),

		LedgerBackend: getEnv("LEDGER_BACKEND", "file"),
		LedgerFile:    getEnv("LEDGER_FILE", "./data/expenses.json"),
		RecipientFile: getEnv("RECIPIENT_FILE", "./data/chat_id.txt"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/dailyspend.db"),

		Timezone:   getEnv("TIMEZONE", "Local"),
		DigestTime: getEnv("DIGEST_TIME", "09:00"),

		Port: getEnv("PORT", "8081"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "dailyspend"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		SessionMaxUsers: getEnvInt("SESSION_MAX_USERS", 1024),
		SessionTTL:      getEnvDuration("SESSION_TTL", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Location resolves Timezone. "Local" and the empty string mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AMQPEnabled reports whether ledger events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate checks the settings shared by every binary.
func (c *Config) Validate() error {
	return joinErrors(c.validateCommon())
}

// ValidateBot checks what the bot process needs on top of Validate.
func (c *Config) ValidateBot() error {
	errs := c.validateCommon()
	if strings.TrimSpace(c.BotToken) == "" {
		errs = append(errs, "BOT_TOKEN is required")
	}
	if _, err := time.Parse("15:04", c.DigestTime); err != nil || len(c.DigestTime) != len("15:04") {
		errs = append(errs, fmt.Sprintf("invalid DIGEST_TIME '%s': want HH:MM", c.DigestTime))
	}
	if c.SessionMaxUsers < 0 {
		errs = append(errs, fmt.Sprintf("invalid session max users %d: must not be negative", c.SessionMaxUsers))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must not be negative", c.SessionTTL))
	}

	switch c.LedgerBackend {
	case "file":
		if c.LedgerFile == "" {
			errs = append(errs, "ledger file path cannot be empty when using file backend")
		}
		errs = append(errs, ensureDir(c.LedgerFile)...)
		errs = append(errs, ensureDir(c.RecipientFile)...)
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
		errs = append(errs, ensureDir(c.SQLiteDBPath)...)
	}
	return joinErrors(errs)
}

// ValidateWorker checks what the Sheets sync worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	errs := c.validateCommon()
	if !c.AMQPEnabled() {
		errs = append(errs, "AMQP_URL is required for the sync worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errs = append(errs, "GOOGLE_SPREADSHEET_ID is required for the sync worker")
	}
	if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return joinErrors(errs)
}

func (c *Config) validateCommon() []string {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.LedgerBackend) {
		errs = append(errs, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid TIMEZONE '%s'", c.Timezone))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid LOG_LEVEL '%s'", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid LOG_FORMAT '%s': must be text or json", c.LogFormat))
	}
	return errs
}

// ensureDir creates the parent directory of path when it is missing.
func ensureDir(path string) []string {
	dir := filepath.Dir(path)
	if path == "" || dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return []string{fmt.Sprintf("cannot create directory '%s': %v", dir, err)}
		}
	}
	return nil
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
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
