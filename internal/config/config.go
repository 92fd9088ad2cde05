package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストアの種別
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Store
	DatabaseURL string
	// Store はストア種別。空の場合はDatabaseURLのスキームから決まる。
	Store string

	// Server
	ServerPort     string
	RequestTimeout time.Duration

	// Logging
	LogLevel string

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Store = strings.ToLower(getEnvString("STORE", ""))
	switch cfg.Store {
	case "", StorePostgres, StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE %q: want one of %s, %s, %s",
			cfg.Store, StorePostgres, StoreSQLite, StoreMemory)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("required environment variables are not set: %v", []string{"DATABASE_URL"})
	}

	// Optional fields with defaults
	cfg.ServerPort = getEnvString("SERVER_PORT", "3000")
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 5*time.Second)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.SMTPHost = getEnvString("SMTP_HOST", "")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPUsername = getEnvString("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnvString("SMTP_PASSWORD", "")
	cfg.SMTPFrom = getEnvString("SMTP_FROM", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "")

	if cfg.SMTPHost != "" && cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}

	return cfg, nil
}

// MailEnabled は登録通知メールを送信するかどうかを返す。
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
