package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"drivedesk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	Server     ServerConfig     `yaml:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Mailer     MailerConfig     `yaml:"mailer"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type StorageConfig struct {
	// Backend is one of redis, sqlite, memory.
	Backend string      `yaml:"backend"`
	Keys    StorageKeys `yaml:"keys"`
}

type StorageKeys struct {
	Bookings string `yaml:"bookings"`
	Managers string `yaml:"managers"`
	Session  string `yaml:"session"`
	Feedback string `yaml:"feedback"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MailerConfig struct {
	From                string `yaml:"from"`
	QueueKey            string `yaml:"queue_key"`
	MaxRetries          int    `yaml:"max_retries"`
	InitialDelaySeconds int    `yaml:"initial_delay_seconds"`
	MaxDelaySeconds     int    `yaml:"max_delay_seconds"`
}

// InitialDelay returns the configured first retry delay.
func (m MailerConfig) InitialDelay() time.Duration {
	return time.Duration(m.InitialDelaySeconds) * time.Second
}

// MaxDelay returns the configured backoff ceiling.
func (m MailerConfig) MaxDelay() time.Duration {
	return time.Duration(m.MaxDelaySeconds) * time.Second
}

type CatalogConfig struct {
	Models      []string `yaml:"models"`
	Dealerships []string `yaml:"dealerships"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env файл опционален; переменные окружения подставляются в YAML
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "redis":
		if c.Redis.Address == "" {
			return errors.New("redis address is required for the redis backend")
		}
	case "sqlite":
		if c.SQLite.Path == "" {
			return errors.New("sqlite path is required for the sqlite backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}

	return ValidateCatalog(c.Catalog)
}

// ValidateCatalog rejects empty and duplicate catalog entries.
func ValidateCatalog(catalog CatalogConfig) error {
	seen := make(map[string]bool)
	for _, model := range catalog.Models {
		if model == "" {
			return errors.New("catalog contains an empty model name")
		}
		if seen[model] {
			return fmt.Errorf("duplicate model in catalog: %s", model)
		}
		seen[model] = true
	}

	seen = make(map[string]bool)
	for _, dealership := range catalog.Dealerships {
		if dealership == "" {
			return errors.New("catalog contains an empty dealership name")
		}
		if seen[dealership] {
			return fmt.Errorf("duplicate dealership in catalog: %s", dealership)
		}
		seen[dealership] = true
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "drivedesk"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Storage.Keys.Bookings == "" {
		c.Storage.Keys.Bookings = models.DefaultBookingsKey
	}
	if c.Storage.Keys.Managers == "" {
		c.Storage.Keys.Managers = models.DefaultManagersKey
	}
	if c.Storage.Keys.Session == "" {
		c.Storage.Keys.Session = models.DefaultSessionKey
	}
	if c.Storage.Keys.Feedback == "" {
		c.Storage.Keys.Feedback = models.DefaultFeedbackKey
	}

	if c.Mailer.From == "" {
		c.Mailer.From = "no-reply@drivedesk.local"
	}
	if c.Mailer.QueueKey == "" {
		c.Mailer.QueueKey = "mail:queue"
	}
	if c.Mailer.MaxRetries == 0 {
		c.Mailer.MaxRetries = 5
	}
	if c.Mailer.InitialDelaySeconds == 0 {
		c.Mailer.InitialDelaySeconds = 2
	}
	if c.Mailer.MaxDelaySeconds == 0 {
		c.Mailer.MaxDelaySeconds = 60
	}

	if len(c.Catalog.Models) == 0 {
		c.Catalog.Models = []string{"Honda Amaze", "Honda Elevate", "Honda City", "Honda CR-V"}
	}
	if len(c.Catalog.Dealerships) == 0 {
		c.Catalog.Dealerships = []string{
			"Honda Showroom - Central Delhi",
			"Honda Showroom - Gurgaon",
			"Honda Showroom - Noida",
		}
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
