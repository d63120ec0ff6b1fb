package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stockCharts/internal/adapters/logger" // Import the logger package for LogLevel
	"stockCharts/internal/domain"
)

// Supported values of DATA_PROVIDER and CACHE_BACKEND.
const (
	ProviderEODHD   = "eodhd"
	ProviderPolygon = "polygon"

	CacheFile   = "file"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	// Market data providers
	DataProvider  string `yaml:"data_provider"` // eodhd or polygon, for intraday bars
	EODHDAPIKey   string `yaml:"eodhd_api_key"`
	EODHDBaseURL  string `yaml:"eodhd_base_url"`
	NasdaqAPIKey  string `yaml:"nasdaq_api_key"` // Optional; RTAT is disabled without it
	NasdaqBaseURL string `yaml:"nasdaq_base_url"`
	PolygonAPIKey string `yaml:"polygon_api_key"`

	// Cache
	CacheBackend  string `yaml:"cache_backend"`
	CacheDir      string `yaml:"cache_dir"`
	CacheDBPath   string `yaml:"cache_db_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisPrefix   string `yaml:"redis_prefix"`
	SingleFlight  bool   `yaml:"single_flight"`

	// Fetching
	MarketTimezone     string         `yaml:"market_timezone"`
	Location           *time.Location `yaml:"-"`
	HTTPTimeoutSeconds int            `yaml:"http_timeout_seconds"`
	HTTPTimeout        time.Duration  `yaml:"-"`
	FanOutConcurrency  int            `yaml:"fanout_concurrency"`
	SymbolExchange     string         `yaml:"symbol_exchange"`

	// Maintenance
	CachePurgeCron   string   `yaml:"cache_purge_cron"`
	CacheMaxAgeHours int      `yaml:"cache_max_age_hours"` // 0 clears the whole cache on purge
	WarmupCron       string   `yaml:"warmup_cron"`
	Watchlist        []string `yaml:"watchlist"`

	// Charting
	Renko domain.RenkoSettings `yaml:"renko"`

	// Logging
	LogLevelName string          `yaml:"log_level"`
	LogLevel     logger.LogLevel `yaml:"-"`
	LogFormat    string          `yaml:"log_format"` // std, text or json
}

func defaults() *Config {
	return &Config{
		DataProvider:       ProviderEODHD,
		CacheBackend:       CacheFile,
		CacheDir:           "./cache",
		CacheDBPath:        "./cache/cache.db",
		RedisAddr:          "localhost:6379",
		RedisPrefix:        "charts:",
		MarketTimezone:     "America/New_York",
		HTTPTimeoutSeconds: 30,
		FanOutConcurrency:  4,
		SymbolExchange:     "US",
		Renko:              domain.DefaultRenkoSettings(),
		LogLevelName:       "INFO",
		LogFormat:          "std",
	}
}

// LoadConfig loads configuration from an optional YAML file (CHART_CONFIG_FILE),
// then environment variables (.env file included), which take precedence.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CHART_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	var err error
	var errs []string // Collect validation errors

	// Providers
	cfg.DataProvider = strings.ToLower(getEnv("DATA_PROVIDER", cfg.DataProvider))
	cfg.EODHDAPIKey = getEnv("EODHD_API_KEY", cfg.EODHDAPIKey)
	cfg.EODHDBaseURL = getEnv("EODHD_BASE_URL", cfg.EODHDBaseURL)
	cfg.NasdaqAPIKey = getEnv("NASDAQ_API_KEY", cfg.NasdaqAPIKey)
	cfg.NasdaqBaseURL = getEnv("NASDAQ_BASE_URL", cfg.NasdaqBaseURL)
	cfg.PolygonAPIKey = getEnv("POLYGON_API_KEY", cfg.PolygonAPIKey)

	// News and symbol search always come from EODHD
	if cfg.EODHDAPIKey == "" {
		errs = append(errs, "EODHD_API_KEY must be set")
	}
	switch cfg.DataProvider {
	case ProviderEODHD:
	case ProviderPolygon:
		if cfg.PolygonAPIKey == "" {
			errs = append(errs, "POLYGON_API_KEY must be set when DATA_PROVIDER=polygon")
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported DATA_PROVIDER %q (want eodhd or polygon)", cfg.DataProvider))
	}

	// Cache
	cfg.CacheBackend = strings.ToLower(getEnv("CACHE_BACKEND", cfg.CacheBackend))
	cfg.CacheDir = getEnv("CACHE_DIR", cfg.CacheDir)
	cfg.CacheDBPath = getEnv("CACHE_DB_PATH", cfg.CacheDBPath)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisPrefix = getEnv("REDIS_PREFIX", cfg.RedisPrefix)
	cfg.SingleFlight = getEnvAsBool("SINGLE_FLIGHT", cfg.SingleFlight)
	switch cfg.CacheBackend {
	case CacheFile:
		if cfg.CacheDir == "" {
			errs = append(errs, "CACHE_DIR must be set for the file cache")
		}
	case CacheSQLite:
		if cfg.CacheDBPath == "" {
			errs = append(errs, "CACHE_DB_PATH must be set for the sqlite cache")
		}
	case CacheRedis:
		if cfg.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR must be set for the redis cache")
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported CACHE_BACKEND %q (want file, sqlite or redis)", cfg.CacheBackend))
	}

	// Fetching
	cfg.MarketTimezone = getEnv("MARKET_TIMEZONE", cfg.MarketTimezone)
	cfg.Location, err = time.LoadLocation(cfg.MarketTimezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MARKET_TIMEZONE: %v", err))
	}

	cfg.HTTPTimeoutSeconds, err = getEnvAsIntRequired("HTTP_TIMEOUT_SECONDS", cfg.HTTPTimeoutSeconds)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HTTP_TIMEOUT_SECONDS: %v", err))
	} else if cfg.HTTPTimeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	cfg.FanOutConcurrency, err = getEnvAsIntRequired("FANOUT_CONCURRENCY", cfg.FanOutConcurrency)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FANOUT_CONCURRENCY: %v", err))
	} else if cfg.FanOutConcurrency <= 0 {
		errs = append(errs, "FANOUT_CONCURRENCY must be positive")
	}
	cfg.SymbolExchange = getEnv("SYMBOL_EXCHANGE", cfg.SymbolExchange)

	// Maintenance
	cfg.CachePurgeCron = getEnv("CACHE_PURGE_CRON", cfg.CachePurgeCron)
	cfg.CacheMaxAgeHours, err = getEnvAsIntRequired("CACHE_MAX_AGE_HOURS", cfg.CacheMaxAgeHours)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CACHE_MAX_AGE_HOURS: %v", err))
	} else if cfg.CacheMaxAgeHours < 0 {
		errs = append(errs, "CACHE_MAX_AGE_HOURS cannot be negative")
	}
	cfg.WarmupCron = getEnv("WARMUP_CRON", cfg.WarmupCron)
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist = splitList(v)
	}

	// Renko defaults
	cfg.Renko.Mode = domain.ParseRenkoMode(getEnv("RENKO_MODE", string(cfg.Renko.Mode)))
	cfg.Renko.FixedBrickSize, err = getEnvAsFloatRequired("RENKO_FIXED_BRICK_SIZE", cfg.Renko.FixedBrickSize)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RENKO_FIXED_BRICK_SIZE: %v", err))
	} else if cfg.Renko.FixedBrickSize <= 0 {
		errs = append(errs, "RENKO_FIXED_BRICK_SIZE must be positive")
	}
	cfg.Renko.ATRPeriod, err = getEnvAsIntRequired("RENKO_ATR_PERIOD", cfg.Renko.ATRPeriod)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RENKO_ATR_PERIOD: %v", err))
	} else if cfg.Renko.ATRPeriod <= 0 {
		errs = append(errs, "RENKO_ATR_PERIOD must be positive")
	}
	cfg.Renko.PercentageValue, err = getEnvAsFloatRequired("RENKO_PERCENTAGE", cfg.Renko.PercentageValue)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RENKO_PERCENTAGE: %v", err))
	} else if cfg.Renko.PercentageValue <= 0 {
		errs = append(errs, "RENKO_PERCENTAGE must be positive")
	}

	// Logging
	cfg.LogLevelName = getEnv("LOG_LEVEL", cfg.LogLevelName)
	cfg.LogLevel = logger.ParseLevel(cfg.LogLevelName)
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// loadFile overlays the YAML file at path onto cfg. Keys absent from the file keep their value.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
