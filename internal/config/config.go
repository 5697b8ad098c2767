// Package config loads server settings from defaults, an optional
// config file, and TASKIFY_-prefixed environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	DAV struct {
		BaseURL               string        `mapstructure:"base_url"`
		Username              string        `mapstructure:"username"`
		Password              string        `mapstructure:"password"`
		CalendarCollection    string        `mapstructure:"calendar_collection"`
		AddressBookCollection string        `mapstructure:"addressbook_collection"`
		Timeout               time.Duration `mapstructure:"timeout"`
		VerifyOnStart         bool          `mapstructure:"verify_on_start"`
	} `mapstructure:"dav"`

	Sweeper struct {
		Interval    time.Duration `mapstructure:"interval"`
		GracePeriod time.Duration `mapstructure:"grace_period"`
		BatchSize   int           `mapstructure:"batch_size"`
		MaxAttempts int           `mapstructure:"max_attempts"`
	} `mapstructure:"sweeper"`

	Auth struct {
		SessionTTL time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"auth"`

	Log struct {
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	} `mapstructure:"log"`
}

// newViper builds a viper instance with defaults and env binding.
func newViper(file string) *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "taskify.db")
	v.SetDefault("dav.base_url", "http://localhost:5232")
	v.SetDefault("dav.username", "taskify")
	v.SetDefault("dav.password", "")
	v.SetDefault("dav.calendar_collection", "taskify")
	v.SetDefault("dav.addressbook_collection", "taskify")
	v.SetDefault("dav.timeout", 15*time.Second)
	v.SetDefault("dav.verify_on_start", false)
	v.SetDefault("sweeper.interval", 30*time.Second)
	v.SetDefault("sweeper.grace_period", 10*time.Second)
	v.SetDefault("sweeper.batch_size", 50)
	v.SetDefault("sweeper.max_attempts", 5)
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetEnvPrefix("TASKIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("taskify")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/taskify")
	}
	return v
}

// Load reads configuration. A missing config file is not an error when
// no explicit file was requested.
func Load(file string) (*Config, error) {
	v := newViper(file)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Watch reloads the config whenever the underlying file changes and
// passes the fresh copy to onChange. Reload failures are logged and the
// previous config stays in effect.
func Watch(file string, logger *log.Logger, onChange func(*Config)) error {
	if file == "" {
		return fmt.Errorf("config watching requires an explicit config file")
	}
	if logger == nil {
		logger = log.Default()
	}

	v := newViper(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Printf("config file changed: %s", e.Name)
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			logger.Printf("failed to reload config: %v", err)
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
	return nil
}
