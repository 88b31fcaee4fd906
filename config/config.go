package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Importer  ImporterConfig  `mapstructure:"importer"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RateLimitConfig holds upload rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// StorageConfig holds upload archive configuration
type StorageConfig struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"base_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// ImporterConfig holds workbook import configuration
type ImporterConfig struct {
	HeaderScanRows int    `mapstructure:"header_scan_rows"`
	SchemaFile     string `mapstructure:"schema_file"`
	MaxUploadMB    int    `mapstructure:"max_upload_mb"`
	Workers        int    `mapstructure:"workers"`
	CSVEncoding    string `mapstructure:"csv_encoding"`
	XLSCharset     string `mapstructure:"xls_charset"`
}

// AuthConfig holds the shared key required by the /api routes
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// TelemetryConfig holds OpenTelemetry exporter configuration
type TelemetryConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Environment    string        `mapstructure:"environment"`
	MetricInterval time.Duration `mapstructure:"metric_interval"`
}

// CleanupConfig holds import run maintenance configuration
type CleanupConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	StaleRunAge  time.Duration `mapstructure:"stale_run_age"`
	RunRetention time.Duration `mapstructure:"run_retention"`
}

var globalConfig *Config

// envBindings maps config keys to the unprefixed variables deployments set
var envBindings = map[string]string{
	"database.url":              "DATABASE_URL",
	"server.port":               "PORT",
	"server.host":               "HOST",
	"logging.level":             "LOG_LEVEL",
	"storage.base_path":         "STORAGE_PATH",
	"auth.api_key":              "INTERNAL_API_KEY",
	"telemetry.endpoint":        "OTEL_EXPORTER_OTLP_ENDPOINT",
	"telemetry.service_name":    "OTEL_SERVICE_NAME",
	"telemetry.service_version": "VERSION",
	"telemetry.environment":     "ENVIRONMENT",
}

var defaults = map[string]any{
	"server.port":          3000,
	"server.host":          "0.0.0.0",
	"server.read_timeout":  30 * time.Second,
	"server.write_timeout": 30 * time.Second,

	"database.max_connections":    25,
	"database.min_connections":    5,
	"database.max_conn_lifetime":  time.Hour,
	"database.max_conn_idle_time": 30 * time.Minute,

	"rate_limit.requests_per_second": 2,
	"rate_limit.burst":               5,

	"storage.type":      "local",
	"storage.base_path": "./data/uploads",

	"logging.level":    "info",
	"logging.format":   "json",
	"logging.no_color": false,

	"importer.header_scan_rows": 25,
	"importer.schema_file":      "",
	"importer.max_upload_mb":    20,
	"importer.workers":          4,
	"importer.csv_encoding":     "",
	"importer.xls_charset":      "windows-1252",

	"telemetry.service_name":    "bakery-service",
	"telemetry.metric_interval": 30 * time.Second,

	"cleanup.enabled":       true,
	"cleanup.interval":      time.Hour,
	"cleanup.stale_run_age": time.Hour,
	"cleanup.run_retention": 90 * 24 * time.Hour,
}

// dotEnvDirs are searched in order; the first .env found is used
var dotEnvDirs = []string{".", "./config"}

// Load reads configuration from defaults, an optional YAML file, an optional
// .env file and the environment, in increasing order of precedence.
// BAKERY_-prefixed variables override any key, e.g. BAKERY_IMPORTER_WORKERS.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if path, ok := findDotEnv(); ok {
		if err := loadDotEnvFile(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg(".env file not loaded")
		}
	}

	v.SetEnvPrefix("BAKERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "BAKERY_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

func findDotEnv() (string, bool) {
	for _, dir := range dotEnvDirs {
		path := filepath.Join(dir, ".env")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// loadDotEnvFile exports the variables of a dotenv file into the process
// environment. Variables already set in the environment win.
func loadDotEnvFile(path string) error {
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return err
	}
	for _, key := range env.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, env.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// MaxUploadBytes returns the upload size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Importer.MaxUploadMB) << 20
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
