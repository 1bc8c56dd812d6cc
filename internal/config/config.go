package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port    string
	BaseURL string

	// Database
	SQLiteDBPath string

	// Mail sync
	SyncWindowDays int
	GmailPageSize  int
	SyncInterval   time.Duration
	OAuthStateTTL  time.Duration

	// AMQP event feed (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	cfg := &Config{
		Port:    getEnv("PORT", "8081"),
		BaseURL: getEnv("BASE_URL", "http://127.0.0.1:8081"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/kharcha.db"),

		SyncWindowDays: getEnvInt("SYNC_WINDOW_DAYS", 60),
		GmailPageSize:  getEnvInt("GMAIL_PAGE_SIZE", 50),
		SyncInterval:   getEnvDuration("SYNC_INTERVAL", 6*time.Hour),
		OAuthStateTTL:  getEnvDuration("OAUTH_STATE_TTL", 10*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kharcha"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate base URL
	if parsedURL, err := url.Parse(c.BaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid base URL '%s': %v", c.BaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	// Validate SQLite path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate sync settings
	if c.SyncWindowDays < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync window %d: must be at least 1 day", c.SyncWindowDays))
	} else if c.SyncWindowDays > 365 {
		errors = append(errors, fmt.Sprintf("invalid sync window %d: must be at most 365 days", c.SyncWindowDays))
	}

	if c.GmailPageSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid gmail page size %d: must be at least 1", c.GmailPageSize))
	} else if c.GmailPageSize > 500 {
		errors = append(errors, fmt.Sprintf("invalid gmail page size %d: must be at most 500", c.GmailPageSize))
	}

	if c.SyncInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 minute", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.OAuthStateTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid oauth state TTL %v: must be at least 1 minute", c.OAuthStateTTL))
	} else if c.OAuthStateTTL > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid oauth state TTL %v: must be at most 1 hour", c.OAuthStateTTL))
	}

	// Validate AMQP URL if provided
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

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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
