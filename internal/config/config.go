package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maltedev/shop-scraper/internal/region"
)

type Config struct {
	Discovery DiscoveryConfig
	Scraper   ScraperConfig
	Browser   BrowserConfig
	Output    OutputConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
}

type DiscoveryConfig struct {
	APIKey  string
	BaseURL string
	Limit   int
	Country string
}

type ScraperConfig struct {
	MaxAttempts     int
	Regions         []string
	BackoffMin      time.Duration
	BackoffMax      time.Duration
	NavTimeout      time.Duration
	SettleDelay     time.Duration
	ChallengeSettle time.Duration
}

type BrowserConfig struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	ProxyServer    string
}

type OutputConfig struct {
	Dir           string
	SaveSnapshots bool
	LedgerFile    string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// RedisConfig is disabled when Addr is empty.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	RecentTTL  time.Duration
	SkipRecent bool
}

// ServerConfig is the optional status server; empty StatusAddr disables it.
type ServerConfig struct {
	StatusAddr      string
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Discovery: DiscoveryConfig{
			APIKey:  getEnvOrDefault("FIRECRAWL_API_KEY", ""),
			BaseURL: getEnvOrDefault("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev"),
			Limit:   getIntOrDefault("DISCOVERY_LIMIT", 100),
			Country: getEnvOrDefault("DISCOVERY_COUNTRY", "US"),
		},
		Scraper: ScraperConfig{
			MaxAttempts:     getIntOrDefault("SCRAPER_MAX_ATTEMPTS", 3),
			Regions:         getStringSliceOrDefault("SCRAPER_REGIONS", []string{"VN", "SA", "US"}),
			BackoffMin:      getDurationOrDefault("SCRAPER_BACKOFF_MIN", 4*time.Second),
			BackoffMax:      getDurationOrDefault("SCRAPER_BACKOFF_MAX", 6*time.Second),
			NavTimeout:      getDurationOrDefault("SCRAPER_NAV_TIMEOUT", 60*time.Second),
			SettleDelay:     getDurationOrDefault("SCRAPER_SETTLE_DELAY", 3*time.Second),
			ChallengeSettle: getDurationOrDefault("SCRAPER_CHALLENGE_SETTLE", 5*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", false),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			ProxyServer:    getEnvOrDefault("BROWSER_PROXY", ""),
		},
		Output: OutputConfig{
			Dir:           getEnvOrDefault("OUTPUT_DIR", "output"),
			SaveSnapshots: getBoolOrDefault("OUTPUT_SAVE_SNAPSHOTS", true),
			LedgerFile:    getEnvOrDefault("OUTPUT_LEDGER_FILE", ""),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "shop_scraper"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 5)),
		},
		Redis: RedisConfig{
			Addr:       getEnvOrDefault("REDIS_ADDR", ""),
			Password:   getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:         getIntOrDefault("REDIS_DB", 0),
			KeyPrefix:  getEnvOrDefault("REDIS_KEY_PREFIX", "shop-scraper"),
			RecentTTL:  getDurationOrDefault("REDIS_RECENT_TTL", 24*time.Hour),
			SkipRecent: getBoolOrDefault("REDIS_SKIP_RECENT", false),
		},
		Server: ServerConfig{
			StatusAddr:      getEnvOrDefault("STATUS_ADDR", ""),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Discovery.Limit < 1 {
		return fmt.Errorf("DISCOVERY_LIMIT must be at least 1")
	}

	if c.Scraper.MaxAttempts < 1 {
		return fmt.Errorf("SCRAPER_MAX_ATTEMPTS must be at least 1")
	}

	if len(c.Scraper.Regions) == 0 {
		return fmt.Errorf("SCRAPER_REGIONS must name at least one region")
	}

	table := region.DefaultTable()
	for _, code := range region.ParseCodes(c.Scraper.Regions) {
		if !table.Has(code) {
			return fmt.Errorf("SCRAPER_REGIONS has unknown region %q", code)
		}
	}

	if c.Scraper.BackoffMin > c.Scraper.BackoffMax {
		return fmt.Errorf("SCRAPER_BACKOFF_MIN cannot be greater than SCRAPER_BACKOFF_MAX")
	}

	if c.Scraper.NavTimeout <= 0 {
		return fmt.Errorf("SCRAPER_NAV_TIMEOUT must be positive")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}

	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required when DB_ENABLED is set")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
