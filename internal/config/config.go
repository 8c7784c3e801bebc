package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration structure for the whole application.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger"`
	Browser BrowserConfig `mapstructure:"browser"`
	Server  ServerConfig  `mapstructure:"server"`
	Task    TaskConfig    `mapstructure:"task"`
	Store   StoreConfig   `mapstructure:"store"`
}

// LoggerConfig holds all settings for the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" json:"level" yaml:"level"`
	Format      string `mapstructure:"format" json:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" json:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser and its probes.
type BrowserConfig struct {
	Headless        bool          `mapstructure:"headless"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout"`
	ExtractTimeout  time.Duration `mapstructure:"extract_timeout"`
	CookieGrace     time.Duration `mapstructure:"cookie_grace"`
}

// ServerConfig holds settings for the HTTP front-end.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// TaskConfig holds settings for the built-in fixed extraction task.
type TaskConfig struct {
	TargetURL string `mapstructure:"target_url"`
}

// StoreConfig holds settings for the optional run-history store. Execution
// never depends on it; leave Enabled false to run without Postgres.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// SetDefaults registers defaults so the app runs with an empty config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "marketprobe")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.default_timeout", 60*time.Second)
	v.SetDefault("browser.extract_timeout", 30*time.Second)
	v.SetDefault("browser.cookie_grace", 2*time.Second)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("task.target_url", "https://finance.yahoo.com/gainers")
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	if c.Browser.DefaultTimeout <= 0 {
		return fmt.Errorf("browser.default_timeout must be positive")
	}
	if c.Browser.ExtractTimeout <= 0 {
		return fmt.Errorf("browser.extract_timeout must be positive")
	}
	if c.Task.TargetURL == "" {
		return fmt.Errorf("task.target_url is a required configuration field")
	}
	if c.Store.Enabled && c.Store.URL == "" {
		return fmt.Errorf("store.url is required when store.enabled is true")
	}
	return nil
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	var loadErr error
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Set stores the configuration instance directly, bypassing Load.
func Set(cfg *Config) {
	instance = cfg
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("configuration not initialized; call config.Load() in the root command")
	}
	return instance
}
