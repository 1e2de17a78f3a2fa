package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Client modes selectable with the client key.
const (
	ClientSystem = "system"
	ClientResty  = "resty"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName   string        `mapstructure:"app_name"`
	LogLevel  string        `mapstructure:"log_level"`
	Client    string        `mapstructure:"client"`
	TimeoutMS int64         `mapstructure:"timeout_ms"`
	Timeout   time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from configs/.env and SYSFETCH_ environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "sysfetch")
	v.SetDefault("log_level", "info")
	v.SetDefault("client", ClientSystem)
	v.SetDefault("timeout_ms", 0)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/sysfetch.db")
	v.SetDefault("storage_ttl_seconds", int64(time.Hour/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((10*time.Minute)/time.Second))

	v.SetEnvPrefix("sysfetch")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Client = strings.ToLower(strings.TrimSpace(c.Client))
	switch c.Client {
	case "":
		c.Client = ClientSystem
	case ClientSystem, ClientResty:
	default:
		return fmt.Errorf("invalid client %q (must be %q or %q)", c.Client, ClientSystem, ClientResty)
	}

	if c.TimeoutMS < 0 {
		return fmt.Errorf("invalid timeout_ms (must not be negative)")
	}
	c.Timeout = time.Duration(c.TimeoutMS) * time.Millisecond

	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	c.StorageTTL = time.Duration(c.StorageTTLSeconds) * time.Second
	c.StorageCleanupInterval = time.Duration(c.StorageCleanupSeconds) * time.Second

	return nil
}
