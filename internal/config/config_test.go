package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/msomdec/study-zen/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_PATH", "JWT_SECRET", "COOKIE_SECURE", "BCRYPT_COST",
		"TIMEZONE", "LOG_LEVEL", "TELEGRAM_TOKEN", config.FileEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.Port)
	}
	if !cfg.CookieSecure {
		t.Fatal("expected secure cookies by default")
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if cfg.Location == nil {
		t.Fatal("expected location to be resolved")
	}
	if cfg.TelegramEnabled() {
		t.Fatal("expected telegram to be disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("TIMEZONE", "Asia/Tokyo")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.CookieSecure || cfg.BcryptCost != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Location.String() != "Asia/Tokyo" {
		t.Fatalf("expected Asia/Tokyo, got %s", cfg.Location)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel: %v", err)
	}
	if level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", level)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "study-zen.yaml")
	yaml := "port: \"7000\"\ndatabase_path: /var/lib/study-zen.db\ntelegram_token: abc\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.FileEnv, path)
	t.Setenv("PORT", "7001")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7001" {
		t.Fatalf("expected env to win over file, got port %s", cfg.Port)
	}
	if cfg.DatabasePath != "/var/lib/study-zen.db" {
		t.Fatalf("expected database path from file, got %s", cfg.DatabasePath)
	}
	if !cfg.TelegramEnabled() {
		t.Fatalf("expected telegram token from file, got %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bcrypt too low", map[string]string{"BCRYPT_COST": "3"}},
		{"bcrypt not a number", map[string]string{"BCRYPT_COST": "high"}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"missing file", map[string]string{config.FileEnv: "/does/not/exist.yaml"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected error for missing JWT secret")
	}
	cfg.JWTSecret = "too-short"
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected error for short JWT secret")
	}
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.ValidateServer(); err != nil {
		t.Fatalf("ValidateServer: %v", err)
	}
}
