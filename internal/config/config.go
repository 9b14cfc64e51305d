package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the sync daemon. Values are read by
// Viper from a config file or environment variables.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Control ControlConfig `mapstructure:"control"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"` // including the /api/v1 prefix
	Timeout time.Duration `mapstructure:"timeout"`
	// Headless sign-in credentials; platform apps hold these in the keychain
	// and pass them through the environment instead.
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type CacheConfig struct {
	Path string `mapstructure:"path"` // SQLite database file
}

type SyncConfig struct {
	Schedule      string        `mapstructure:"schedule"`       // cron expression for periodic cycles
	ProbeInterval time.Duration `mapstructure:"probe_interval"` // network reachability poll
}

type ControlConfig struct {
	Address string `mapstructure:"address"` // loopback status API listen address
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty logs to stderr only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment overrides, e.g. api.base_url -> API_BASE_URL
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("api.base_url", "http://localhost:8080/api/v1")
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("cache.path", "fitness-cache.db")
	viper.SetDefault("sync.schedule", "@every 5m")
	viper.SetDefault("sync.probe_interval", "15s")
	viper.SetDefault("control.address", "127.0.0.1:7845")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.max_size_mb", 20)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age_days", 14)

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No config file; defaults and env vars are enough.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
