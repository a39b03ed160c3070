package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"pawcare/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	API        APIConfig        `yaml:"api"`
	Redis      RedisConfig      `yaml:"redis"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Drafts     DraftsConfig     `yaml:"drafts"`
	Summary    SummaryConfig    `yaml:"summary"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
	CORS      APICORSConfig      `yaml:"cors"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Port       int          `yaml:"port"`
	Reflection bool         `yaml:"reflection"`
	TLS        APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type APICORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// CatalogConfig points at the marketplace API that owns services, pets,
// employees, slots and bookings.
type CatalogConfig struct {
	BaseURL      string `yaml:"base_url"`
	Token        string `yaml:"token"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	CacheTTL     int    `yaml:"cache_ttl"` // seconds, 0 disables caching
	UserAgent    string `yaml:"user_agent"`
	Retries      int    `yaml:"retries"` // reads only, negative disables
	RetryDelayMs int    `yaml:"retry_delay_ms"`
}

type DraftsConfig struct {
	Store          string `yaml:"store"` // redis | memory
	TTL            int    `yaml:"ttl"`   // seconds
	MaxBookingDays int    `yaml:"max_booking_days"`
	SubmitLimit    int    `yaml:"submit_limit"`
	SubmitWindow   int    `yaml:"submit_window"` // seconds
}

type SummaryConfig struct {
	CurrencySymbol string `yaml:"currency_symbol"`
	DateLayout     string `yaml:"date_layout"`
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

func (c DraftsConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

func (c DraftsConfig) SubmitWindowDuration() time.Duration {
	return time.Duration(c.SubmitWindow) * time.Second
}

func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

func (c CatalogConfig) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c CatalogConfig) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
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
	if strings.TrimSpace(c.Catalog.BaseURL) == "" {
		return errors.New("catalog base_url is required")
	}

	switch c.Drafts.Store {
	case "redis":
		if c.Redis.Address == "" {
			return errors.New("redis address is required for drafts.store=redis")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown drafts store %q", c.Drafts.Store)
	}

	if c.Drafts.MaxBookingDays < 0 {
		return errors.New("drafts max_booking_days must not be negative")
	}

	if c.API.Auth.Enabled {
		return ValidateAPIKeys(c.API.Auth.APIKeys)
	}
	return nil
}

func ValidateAPIKeys(keys []APIClientKey) error {
	seen := make(map[string]bool)
	for _, k := range keys {
		if k.Key == "" {
			return fmt.Errorf("api key '%s' is empty", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key for client '%s'", k.Name)
		}
		seen[k.Key] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Catalog.TimeoutSec == 0 {
		c.Catalog.TimeoutSec = 10
	}
	if c.Catalog.CacheTTL == 0 {
		c.Catalog.CacheTTL = models.CatalogCacheTTL
	}
	if c.Catalog.Retries == 0 {
		c.Catalog.Retries = 2
	}
	if c.Catalog.RetryDelayMs == 0 {
		c.Catalog.RetryDelayMs = 200
	}

	// Drafts defaults
	if c.Drafts.Store == "" {
		c.Drafts.Store = "memory"
		if c.Redis.Address != "" {
			c.Drafts.Store = "redis"
		}
	}
	if c.Drafts.TTL == 0 {
		c.Drafts.TTL = models.DefaultDraftTTL
	}
	if c.Drafts.MaxBookingDays == 0 {
		c.Drafts.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if c.Drafts.SubmitLimit == 0 {
		c.Drafts.SubmitLimit = 5
	}
	if c.Drafts.SubmitWindow == 0 {
		c.Drafts.SubmitWindow = 60
	}

	if c.Summary.CurrencySymbol == "" {
		c.Summary.CurrencySymbol = models.DefaultCurrencySymbol
	}
	if c.Summary.DateLayout == "" {
		c.Summary.DateLayout = models.DefaultSummaryDateLayout
	}
}
