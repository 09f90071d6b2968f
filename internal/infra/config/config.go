package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Auth       AuthConfig       `mapstructure:"auth"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Orders     OrdersConfig     `mapstructure:"orders"`
	Redis      RedisConfig      `mapstructure:"redis"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Timezone   string           `mapstructure:"timezone"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// BackendConfig describes the REST backend that owns orders and inventory.
type BackendConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	ServiceToken  string `mapstructure:"service_token"` // scheduled and shared refreshes only
	OrdersPath    string `mapstructure:"orders_path"`
	InventoryPath string `mapstructure:"inventory_path"`
	ProfilePath   string `mapstructure:"profile_path"`
	PageSize      int    `mapstructure:"page_size"`
	MaxPages      int    `mapstructure:"max_pages"`
	Ordering      string `mapstructure:"ordering"`
}

// AuthConfig holds session verification settings.
type AuthConfig struct {
	// ProfileTTL is how long a verified profile is reused for a token.
	ProfileTTL time.Duration `mapstructure:"profile_ttl"`
}

// HTTPClientConfig holds HTTP client configuration for connection pooling.
type HTTPClientConfig struct {
	// Connection pool settings
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`

	// Timeout settings
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`

	// Keep-alive settings
	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// BreakerConfig holds circuit breaker settings for backend calls.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// DashboardConfig holds dashboard refresh settings.
type DashboardConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RefreshTimeout  time.Duration `mapstructure:"refresh_timeout"`
	HorizonDays     int           `mapstructure:"horizon_days"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

// CatalogConfig holds settings for the catalog alert badges.
type CatalogConfig struct {
	HorizonDays int `mapstructure:"horizon_days"`
}

// OrdersConfig holds order lifecycle settings.
type OrdersConfig struct {
	// CustomerCancellableStates lists the states a customer may cancel from.
	CustomerCancellableStates []string `mapstructure:"customer_cancellable_states"`
}

// RedisConfig holds Redis configuration. An empty address disables Redis.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	Channel  string        `mapstructure:"channel"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowOrigins []string      `mapstructure:"allow_origins"`
	MaxAge       time.Duration `mapstructure:"max_age"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// Location resolves the configured timezone, falling back to local time.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate checks settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		errs = append(errs, errors.New("backend.base_url is required"))
	}
	if strings.TrimSpace(c.Backend.ServiceToken) == "" {
		errs = append(errs, errors.New("backend.service_token is required for dashboard refreshes"))
	}
	if c.Auth.ProfileTTL < 0 {
		errs = append(errs, errors.New("auth.profile_ttl must not be negative"))
	}
	if c.Backend.PageSize <= 0 {
		errs = append(errs, errors.New("backend.page_size must be positive"))
	}
	if c.Dashboard.HorizonDays < 0 || c.Catalog.HorizonDays < 0 {
		errs = append(errs, errors.New("horizon_days must not be negative"))
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q is not one of debug, release, test", c.Server.Mode))
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("timezone: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/drogueria")

	return load(v)
}

// LoadFile loads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	// Read from environment variables, e.g. DROGUERIA_BACKEND_BASE_URL
	v.SetEnvPrefix("DROGUERIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if token := os.Getenv("DROGUERIA_SERVICE_TOKEN"); token != "" {
		cfg.Backend.ServiceToken = token
	}
	if password := os.Getenv("DROGUERIA_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if s := os.Getenv("DROGUERIA_CORS_ORIGINS"); s != "" {
		cfg.CORS.AllowOrigins = parseCommaSeparatedList(s)
	}

	return &cfg, nil
}

func parseCommaSeparatedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.mode", "release")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Backend defaults
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.service_token", "")
	v.SetDefault("backend.orders_path", "pedidos/pedidos/")
	v.SetDefault("backend.inventory_path", "inventario/medicamentos/")
	v.SetDefault("backend.profile_path", "usuarios/perfil/")
	v.SetDefault("backend.page_size", 100)
	v.SetDefault("backend.max_pages", 50)
	v.SetDefault("backend.ordering", "-fecha_creacion")

	// Auth defaults
	v.SetDefault("auth.profile_ttl", time.Minute)

	// HTTP client defaults
	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 20)
	v.SetDefault("http_client.max_conns_per_host", 50)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 10*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 30*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)

	// Breaker defaults
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", 60*time.Second)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.failure_threshold", 5)

	// Dashboard defaults
	v.SetDefault("dashboard.refresh_interval", 5*time.Minute)
	v.SetDefault("dashboard.refresh_timeout", 2*time.Minute)
	v.SetDefault("dashboard.horizon_days", 30)
	v.SetDefault("dashboard.cache_ttl", 5*time.Minute)

	// Catalog defaults
	v.SetDefault("catalog.horizon_days", 7)

	// Order defaults
	v.SetDefault("orders.customer_cancellable_states", []string{"pending"})

	// Redis defaults
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "backoffice:")
	v.SetDefault("redis.channel", "backoffice:refresh")
	v.SetDefault("redis.timeout", 3*time.Second)

	// CORS defaults
	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.max_age", 12*time.Hour)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "backoffice")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("timezone", "")
}
