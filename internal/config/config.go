package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Watchlist WatchlistConfig `mapstructure:"watchlist"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// SyncConfig holds reconciliation pass configuration.
type SyncConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	BatchSize     int           `mapstructure:"batch_size"`
	QueuePageSize int           `mapstructure:"queue_page_size"`
	LockLease     time.Duration `mapstructure:"lock_lease"`

	// PartialSeriesSuppressesAvailable keeps an episode request at
	// partially_available while the series itself still reports missing
	// episodes, even when every requested episode has a file.
	PartialSeriesSuppressesAvailable bool `mapstructure:"partial_series_suppresses_available"`
}

// WatchlistConfig holds watchlist import configuration.
type WatchlistConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Enabled  bool          `mapstructure:"enabled"`
}

// SecretsConfig holds secret store configuration.
type SecretsConfig struct {
	// Key is the passphrase used to derive the AES key that encrypts
	// stored API credentials. Generated on first run when empty.
	Key string `mapstructure:"key"`
}

const minSyncInterval = time.Minute

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.requesterr")
	}

	v.SetEnvPrefix("REQUESTERR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The reconciler is a polling loop against external APIs; anything
	// below one minute hammers them for no gain.
	if cfg.Sync.Interval < minSyncInterval {
		cfg.Sync.Interval = minSyncInterval
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5056)

	v.SetDefault("database.path", "./data/requesterr.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "./data/logs")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("sync.interval", 5*time.Minute)
	v.SetDefault("sync.batch_size", 100)
	v.SetDefault("sync.queue_page_size", 200)
	v.SetDefault("sync.lock_lease", 10*time.Minute)
	v.SetDefault("sync.partial_series_suppresses_available", true)

	v.SetDefault("watchlist.interval", 30*time.Minute)
	v.SetDefault("watchlist.enabled", true)

	v.SetDefault("secrets.key", "")
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
