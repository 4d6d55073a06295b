package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// FileEnv names the environment variable pointing at an optional YAML config file.
const FileEnv = "STUDYZEN_CONFIG"

// Config holds runtime settings. Precedence, lowest first: defaults, the
// YAML file, then environment variables (including a .env file).
type Config struct {
	Port          string `yaml:"port"`
	DatabasePath  string `yaml:"database_path"`
	JWTSecret     string `yaml:"jwt_secret"`
	CookieSecure  bool   `yaml:"cookie_secure"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
	Timezone      string `yaml:"timezone"`
	LogLevel      string `yaml:"log_level"`
	TelegramToken string `yaml:"telegram_token"` // Chats are linked per user in settings

	// Location is resolved from Timezone by Load.
	Location *time.Location `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:         "8080",
		DatabasePath: "study-zen.db",
		CookieSecure: true,
		BcryptCost:   12,
		Timezone:     "Local",
		LogLevel:     "info",
	}
}

// Load reads configuration from the environment and the optional file
// named by STUDYZEN_CONFIG, then validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("PORT", &c.Port)
	setString("DATABASE_PATH", &c.DatabasePath)
	setString("JWT_SECRET", &c.JWTSecret)
	setString("TIMEZONE", &c.Timezone)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("TELEGRAM_TOKEN", &c.TelegramToken)

	// Secure cookies stay on unless explicitly disabled for local development.
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		c.CookieSecure = v != "false"
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		c.BcryptCost = cost
	}
	return nil
}

func (c *Config) validate() error {
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// TelegramEnabled reports whether remote completion pushes are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}
