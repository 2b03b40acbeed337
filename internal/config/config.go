// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Auth methods accepted in TG_AUTH_METHOD.
const (
	AuthMethodPhone = "phone"
	AuthMethodQR    = "qr"
)

// Config holds all application configuration.
type Config struct {
	// telegram
	TGApiID      int    `yaml:"api_id"`
	TGApiHash    string `yaml:"api_hash"`
	TGPhone      string `yaml:"phone"`
	TGCode       string `yaml:"code"`     // optional, skips the interactive code prompt
	TGPassword   string `yaml:"password"` // optional, skips the interactive password prompt
	TGAuthMethod string `yaml:"auth_method"`
	TGUseTestDC  bool   `yaml:"use_test_dc"`
	SessionDir   string `yaml:"session_dir"`

	// session import, a Telethon string session used when none is stored
	TGSessionString string `yaml:"session_string"`

	// session storage
	DatabaseURL string `yaml:"database_url"`

	// nats
	NatsURL string `yaml:"nats_url"`

	// server
	HTTPPort int `yaml:"http_port"`

	// pipeline
	UpdateBuffer int `yaml:"update_buffer"`
	ChatPageSize int `yaml:"chat_page_size"`

	// logging
	LogLevel           string `yaml:"log_level"`
	LogFile            string `yaml:"log_file"`
	LogUpdateOptions   bool   `yaml:"log_update_options"`
	LogConnectionState bool   `yaml:"log_connection_state"`
}

// Load reads configuration with sensible defaults. When CONFIG_FILE points at a
// YAML file its values are applied first; environment variables always win.
func Load() (*Config, error) {
	cfg := &Config{
		TGAuthMethod: AuthMethodPhone,
		SessionDir:   "./sessions/default",
		UpdateBuffer: 256,
		ChatPageSize: 100,
		LogLevel:     "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.TGApiID = getEnvInt("TG_API_ID", cfg.TGApiID)
	cfg.TGApiHash = getEnv("TG_API_HASH", cfg.TGApiHash)
	cfg.TGPhone = getEnv("TG_PHONE", cfg.TGPhone)
	cfg.TGCode = getEnv("TG_CODE", cfg.TGCode)
	cfg.TGPassword = getEnv("TG_PASSWORD", cfg.TGPassword)
	cfg.TGAuthMethod = strings.ToLower(getEnv("TG_AUTH_METHOD", cfg.TGAuthMethod))
	cfg.TGUseTestDC = getEnvBool("TG_USE_TEST_DC", cfg.TGUseTestDC)
	cfg.SessionDir = getEnv("TG_SESSION_DIR", cfg.SessionDir)
	cfg.TGSessionString = getEnv("TG_SESSION_STRING", cfg.TGSessionString)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.NatsURL = getEnv("NATS_URL", cfg.NatsURL)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.UpdateBuffer = getEnvInt("UPDATE_BUFFER", cfg.UpdateBuffer)
	cfg.ChatPageSize = getEnvInt("CHAT_PAGE_SIZE", cfg.ChatPageSize)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.LogUpdateOptions = getEnvBool("LOG_UPDATE_OPTIONS", cfg.LogUpdateOptions)
	cfg.LogConnectionState = getEnvBool("LOG_CONNECTION_STATE", cfg.LogConnectionState)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = filepath.Join(cfg.SessionDir, "session.db")
	}

	return cfg, nil
}

// Validate checks that the values required to log in are present.
func (c *Config) Validate() error {
	var errs []error
	if c.TGApiID <= 0 {
		errs = append(errs, errors.New("TG_API_ID must be > 0"))
	}
	if c.TGApiHash == "" {
		errs = append(errs, errors.New("TG_API_HASH is required"))
	}
	switch c.TGAuthMethod {
	case AuthMethodPhone:
		if c.TGPhone == "" {
			errs = append(errs, errors.New("TG_PHONE is required for phone login"))
		}
	case AuthMethodQR:
	default:
		errs = append(errs, fmt.Errorf("unknown TG_AUTH_METHOD %q", c.TGAuthMethod))
	}
	if c.UpdateBuffer <= 0 {
		errs = append(errs, errors.New("UPDATE_BUFFER must be > 0"))
	}
	if c.ChatPageSize <= 0 {
		errs = append(errs, errors.New("CHAT_PAGE_SIZE must be > 0"))
	}

	return errors.Join(errs...)
}

// DatabaseDir returns the directory holding the engine's local data.
func (c *Config) DatabaseDir() string {
	return filepath.Join(c.SessionDir, "data")
}

// FilesDir returns the directory for downloaded files.
func (c *Config) FilesDir() string {
	return filepath.Join(c.SessionDir, "downloads")
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
