package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/spf13/viper"
)

// DefaultAPIURL is used when neither the config file nor the environment
// names an API root
const DefaultAPIURL = "http://localhost:8081/api/v1"

// Storage drivers for the session slots
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	StorageDriver  string        `mapstructure:"storage_driver"` // sqlite, redis
	RedisURL       string        `mapstructure:"redis_url"`
	RedisPrefix    string        `mapstructure:"redis_prefix"`
	Cache          CacheConfig   `mapstructure:"cache"`
	Poll           PollConfig    `mapstructure:"poll"`
}

// CacheConfig tunes the resource cache
type CacheConfig struct {
	// GCAfter drops entries nobody watches after this long; zero keeps them
	GCAfter time.Duration `mapstructure:"gc_after"`
	// TTL overrides freshness windows by resource type or group
	TTL map[string]time.Duration `mapstructure:"ttl"`
}

// PollConfig sets background refresh intervals; zero disables a poller
type PollConfig struct {
	ChatInterval    time.Duration `mapstructure:"chat_interval"`
	ProfileInterval time.Duration `mapstructure:"profile_interval"`
}

var AppConfig *Config

var configDir string

// Initialize loads or creates ~/.karir/config.yaml
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeIn(filepath.Join(homeDir, ".karir"))
}

// InitializeIn loads or creates config.yaml inside dir
func InitializeIn(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	configDir = dir
	configFile := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return err
		}
	}

	viper.Reset()
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")

	viper.SetDefault("api_url", DefaultAPIURL)
	viper.SetDefault("request_timeout", "30s")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("storage_driver", StorageSQLite)
	viper.SetDefault("redis_url", "redis://localhost:6379/0")
	viper.SetDefault("redis_prefix", "karir:")
	viper.SetDefault("cache.gc_after", "5m")
	viper.SetDefault("poll.chat_interval", "3s")
	viper.SetDefault("poll.profile_interval", "5m")

	// The first variable that is set wins
	if err := viper.BindEnv("api_url", "KARIR_API_URL", "VITE_API_URL"); err != nil {
		return fmt.Errorf("failed to bind env: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	switch cfg.StorageDriver {
	case StorageSQLite, StorageRedis:
	default:
		return fmt.Errorf("unknown storage_driver %q (want sqlite or redis)", cfg.StorageDriver)
	}
	AppConfig = cfg
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) error {
	defaultConfig := `# Karir company dashboard configuration
# API root; KARIR_API_URL or VITE_API_URL override it
api_url: ` + DefaultAPIURL + `
request_timeout: 30s
log_level: warn

# Where the session is kept: sqlite (local file) or redis (shared)
storage_driver: sqlite
redis_url: redis://localhost:6379/0
redis_prefix: "karir:"

cache:
  gc_after: 5m
  # Freshness windows by resource type or group, e.g.
  # ttl:
  #   jobs: 2m
  #   dashboard:stats: 10s

poll:
  chat_interval: 3s
  profile_interval: 5m
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Policy returns the cache staleness policy with configured overrides
func (c *Config) Policy() cache.Policy {
	p := cache.DefaultPolicy()
	for key, d := range c.Cache.TTL {
		p = p.With(key, d)
	}
	return p
}

// Dir returns the directory holding the config file and local data
func Dir() string {
	if configDir != "" {
		return configDir
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".karir")
}

// Set updates a configuration value
func Set(key, value string) error {
	viper.Set(key, value)
	return viper.WriteConfig()
}

// Get retrieves a configuration value
func Get(key string) string {
	return viper.GetString(key)
}

// Keys lists every known configuration key in order
func Keys() []string {
	keys := viper.AllKeys()
	sort.Strings(keys)
	return keys
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
