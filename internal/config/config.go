package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// RedisConfig holds Redis configuration for caching and distributed rate limiting
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// ProvidersConfig holds catalog provider endpoint configurations
type ProvidersConfig struct {
	PlayStationURL string `mapstructure:"playstation_url"`
	SteamURL       string `mapstructure:"steam_url"`
	// SteamAppIDs is the discovery universe for the Steam provider; the
	// storefront API has no browsable catalog endpoint
	SteamAppIDs  []string `mapstructure:"steam_app_ids"`
	IGDBDumpPath string   `mapstructure:"igdb_dump_path"`
	UserAgent    string   `mapstructure:"user_agent"`
}

// ProviderRateLimitConfig holds the request rate limit for one provider
type ProviderRateLimitConfig struct {
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxQueueTime      time.Duration `mapstructure:"max_queue_time"`
}

// RateLimiterConfig holds the rate-limiting proxy configuration
type RateLimiterConfig struct {
	RedisKeyPrefix          string                             `mapstructure:"redis_key_prefix"`
	MaxWorkers              int                                `mapstructure:"max_workers"`
	MaxQueueSize            int                                `mapstructure:"max_queue_size"`
	EnableLocalFallback     bool                               `mapstructure:"enable_local_fallback"`
	LocalFallbackMultiplier float64                            `mapstructure:"local_fallback_multiplier"`
	Providers               map[string]ProviderRateLimitConfig `mapstructure:"providers"`
}

// PricingConfig holds exchange-rate source configuration
type PricingConfig struct {
	FXRatesURL  string        `mapstructure:"fx_rates_url"`
	BTCRatesURL string        `mapstructure:"btc_rates_url"`
	RateTTL     time.Duration `mapstructure:"rate_ttl"`
}

// IngestConfig holds configuration for the ingest program
type IngestConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Worker     WorkerConfig      `mapstructure:"worker"`
	Providers  ProvidersConfig   `mapstructure:"providers"`
	RateLimit  RateLimiterConfig `mapstructure:"ratelimit"`
	Pricing    PricingConfig     `mapstructure:"pricing"`
	Regions    []string          `mapstructure:"regions"`
	PageSize   int               `mapstructure:"page_size"`
}

// MigrateConfig holds configuration for the migrate program
type MigrateConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// LoadIngestConfig loads configuration for the ingest program
func LoadIngestConfig(configFile string, envPath string) (*IngestConfig, error) {
	v := configureViper("ingest", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("worker.pool_size", 8)
	v.SetDefault("worker.queue_size", 1024)
	v.SetDefault("providers.playstation_url", "https://web.np.playstation.com/api/graphql/v1")
	v.SetDefault("providers.steam_url", "https://store.steampowered.com/api")
	v.SetDefault("providers.user_agent", "Mozilla/5.0 (compatible; gd-indexer)")
	v.SetDefault("ratelimit.enable_local_fallback", true)
	v.SetDefault("ratelimit.providers.ps-store.requests_per_second", 4)
	v.SetDefault("ratelimit.providers.steam-store.requests_per_second", 2)
	v.SetDefault("pricing.fx_rates_url", "https://open.er-api.com/v6/latest/USD")
	v.SetDefault("pricing.btc_rates_url", "https://api.coingecko.com/api/v3/simple/price")
	v.SetDefault("pricing.rate_ttl", "1h")
	v.SetDefault("regions", []string{"us"})
	v.SetDefault("page_size", 50)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config IngestConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadMigrateConfig loads configuration for the migrate program
func LoadMigrateConfig(configFile string, envPath string) (*MigrateConfig, error) {
	v := configureViper("migrate", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg MigrateConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &cfg, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/ingest/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("GD_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		// Providers
		"providers.playstation_url",
		"providers.steam_url",
		"providers.steam_app_ids",
		"providers.igdb_dump_path",
		"providers.user_agent",
		// Rate limiting
		"ratelimit.redis_key_prefix",
		"ratelimit.max_workers",
		"ratelimit.max_queue_size",
		"ratelimit.enable_local_fallback",
		"ratelimit.local_fallback_multiplier",
		// Pricing
		"pricing.fx_rates_url",
		"pricing.btc_rates_url",
		"pricing.rate_ttl",
		// Ingest specific
		"regions",
		"page_size",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// If ReadPort is not configured, it falls back to Port.
func (c *DatabaseConfig) ReadDSN() string {
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}
