// Package config reads process settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MemoryStatePath selects the in-memory state store instead of SQLite.
const MemoryStatePath = ":memory:"

type Config struct {
	Port string

	// DatabaseURL enables the Postgres catalog, ratings and event bus. Empty runs
	// from the bundled catalog with in-process events.
	DatabaseURL     string
	DBMaxConns      int32
	DBConnLifetime  time.Duration
	CatalogLanguage string
	CatalogFile     string
	CatalogWatch    bool
	CatalogCacheTTL time.Duration

	StateDBPath string
	RedisURL    string

	SecureStorageSecret   string
	SecureStorageSaltPath string

	GitHubToken  string
	GitHubAPIURL string

	// TokenCheckInterval paces the background GitHub token validity check.
	TokenCheckInterval time.Duration

	CSRFProtection bool
	UserID         string

	MCPEnabled bool

	Log LogConfig
}

type LogConfig struct {
	Level  string
	Format string
	// File enables a size-rotated copy of the log; sizes are in megabytes.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func Default() Config {
	return Config{
		Port:                  "8080",
		CatalogLanguage:       "en",
		CatalogCacheTTL:       5 * time.Minute,
		StateDBPath:           "prompthub.db",
		SecureStorageSaltPath: ".prompthub-salt",
		TokenCheckInterval:    time.Hour,
		UserID:                "anonymous",
		MCPEnabled:            true,
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load returns Default overlaid with the environment. Malformed numbers,
// durations and booleans keep their defaults.
func Load() Config {
	cfg := Default()

	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	if raw := os.Getenv("DB_MAX_CONNS"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			cfg.DBMaxConns = int32(v)
		}
	}
	setDuration(&cfg.DBConnLifetime, "DB_CONN_MAX_LIFETIME")
	setString(&cfg.CatalogLanguage, "CATALOG_LANGUAGE")
	setString(&cfg.CatalogFile, "CATALOG_FILE")
	setBool(&cfg.CatalogWatch, "CATALOG_WATCH")
	setDuration(&cfg.CatalogCacheTTL, "CATALOG_CACHE_TTL")

	setString(&cfg.StateDBPath, "STATE_DB_PATH")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.SecureStorageSecret, "SECURE_STORAGE_SECRET")
	setString(&cfg.SecureStorageSaltPath, "SECURE_STORAGE_SALT_PATH")

	setString(&cfg.GitHubToken, "GITHUB_TOKEN")
	setString(&cfg.GitHubAPIURL, "GITHUB_API_URL")
	setDuration(&cfg.TokenCheckInterval, "GITHUB_TOKEN_CHECK_INTERVAL")

	setBool(&cfg.CSRFProtection, "CSRF_PROTECTION")
	setString(&cfg.UserID, "USER_ID")
	setBool(&cfg.MCPEnabled, "MCP_ENABLED")

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.Log.Level = strings.ToLower(raw)
	}
	if raw := os.Getenv("LOG_FORMAT"); raw != "" {
		cfg.Log.Format = strings.ToLower(raw)
	}
	setString(&cfg.Log.File, "LOG_FILE")
	setPositiveInt(&cfg.Log.MaxSizeMB, "LOG_MAX_SIZE_MB")
	setPositiveInt(&cfg.Log.MaxBackups, "LOG_MAX_BACKUPS")
	setPositiveInt(&cfg.Log.MaxAgeDays, "LOG_MAX_AGE_DAYS")
	setBool(&cfg.Log.Compress, "LOG_COMPRESS")

	return cfg
}

// UsesMemoryState reports whether state lives only for the process lifetime.
func (c Config) UsesMemoryState() bool { return c.StateDBPath == MemoryStatePath }

func (c Config) Addr() string { return ":" + c.Port }

func setString(dst *string, key string) {
	if raw := os.Getenv(key); raw != "" {
		*dst = raw
	}
}

func setBool(dst *bool, key string) {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			*dst = v
		}
	}
}

func setPositiveInt(dst *int, key string) {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			*dst = v
		}
	}
}

// setDuration accepts Go duration syntax ("90s", "5m") or a bare number of
// seconds.
func setDuration(dst *time.Duration, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		*dst = d
		return
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		*dst = time.Duration(secs) * time.Second
	}
}
