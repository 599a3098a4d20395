// Package config provides configuration management for the memory engine.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for the memory engine.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the HTTP server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Storage is the persistence configuration.
	Storage StorageConfig `mapstructure:"storage"`

	// Memory is the memory engine configuration.
	Memory MemoryConfig `mapstructure:"memory"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// HTTP is the HTTP server configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`

	// RateLimit is the maintenance endpoint rate limit configuration.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS support.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the maximum age of CORS preflight cache in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// RateLimitConfig holds rate limiting settings for expensive endpoints.
type RateLimitConfig struct {
	// Enabled enables rate limiting.
	Enabled bool `mapstructure:"enabled"`

	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"min=0"`

	// Burst is the maximum burst size.
	Burst int `mapstructure:"burst" validate:"min=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// Type is the storage backend (memory, badger, redis).
	Type string `mapstructure:"type" validate:"oneof=memory badger redis"`

	// Badger is the BadgerDB configuration.
	Badger BadgerConfig `mapstructure:"badger"`

	// Redis is the Redis configuration.
	Redis RedisConfig `mapstructure:"redis"`
}

// BadgerConfig holds BadgerDB-specific settings.
type BadgerConfig struct {
	// Path is the database directory path.
	Path string `mapstructure:"path"`

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool `mapstructure:"sync_writes"`

	// ValueLogFileSize is the maximum size of value log files in bytes.
	ValueLogFileSize int64 `mapstructure:"value_log_file_size"`

	// InMemory runs BadgerDB without touching disk.
	InMemory bool `mapstructure:"in_memory"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	// Address is the Redis server address.
	Address string `mapstructure:"address"`

	// Password is the Redis password.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db"`
}

// MemoryConfig holds memory engine settings.
type MemoryConfig struct {
	// ShortTermWindow is the number of recent turns included in recall.
	ShortTermWindow int `mapstructure:"short_term_window" validate:"min=1"`

	// TopK is the number of similarity matches returned by recall.
	TopK int `mapstructure:"top_k" validate:"min=1"`

	// IndexCapacity bounds the per-user semantic index entry count.
	IndexCapacity int `mapstructure:"index_capacity" validate:"min=1"`

	// SessionHistoryLimit bounds stored turns per session.
	SessionHistoryLimit int `mapstructure:"session_history_limit" validate:"min=1"`

	// SessionTTL is how long session turn history is retained.
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// ProfileCacheSize is the user profile cache capacity.
	ProfileCacheSize int `mapstructure:"profile_cache_size" validate:"min=1"`

	// ProfileCacheTTL is the user profile cache entry lifetime.
	ProfileCacheTTL time.Duration `mapstructure:"profile_cache_ttl"`

	// IndexCacheSize is the semantic index cache capacity.
	IndexCacheSize int `mapstructure:"index_cache_size" validate:"min=1"`

	// IndexCacheTTL is the semantic index cache entry lifetime.
	IndexCacheTTL time.Duration `mapstructure:"index_cache_ttl"`

	// RecallCacheSize is the recall debounce cache capacity.
	RecallCacheSize int `mapstructure:"recall_cache_size" validate:"min=1"`

	// RecallCacheTTL is the recall debounce window.
	RecallCacheTTL time.Duration `mapstructure:"recall_cache_ttl"`

	// DuplicateWindow is the number of recent fingerprints tracked per user.
	DuplicateWindow int `mapstructure:"duplicate_window" validate:"min=1"`

	// CheckpointTurns is the turn interval between episodic checkpoints.
	CheckpointTurns int `mapstructure:"checkpoint_turns" validate:"min=1"`

	// SummaryCap bounds retained episodic summaries per user.
	SummaryCap int `mapstructure:"summary_cap" validate:"min=1"`

	// ConsolidateThreshold is the token overlap ratio above which two
	// records are merged.
	ConsolidateThreshold float64 `mapstructure:"consolidate_threshold" validate:"min=0,max=1"`

	// DecayHighDays is the retention horizon for high priority records.
	DecayHighDays int `mapstructure:"decay_high_days" validate:"min=1"`

	// DecayMediumDays is the retention horizon for medium priority records.
	DecayMediumDays int `mapstructure:"decay_medium_days" validate:"min=1"`

	// DecayLowDays is the retention horizon for low priority records.
	DecayLowDays int `mapstructure:"decay_low_days" validate:"min=1"`

	// FingerprintMaxLen bounds the normalized fingerprint length.
	FingerprintMaxLen int `mapstructure:"fingerprint_max_len" validate:"min=16"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// String returns a string representation of the configuration (without sensitive data).
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Server: :%d, Env: %s, Storage: %s}",
		c.App.Name, c.Server.Port, c.App.Environment, c.Storage.Type)
}
