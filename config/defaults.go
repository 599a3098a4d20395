package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "memoryd",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    30 * time.Second,
				IdleTimeout:     120 * time.Second,
				ShutdownTimeout: 15 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
			},
			CORS: CORSConfig{
				Enabled:        false,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
				MaxAge:         300,
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 1,
				Burst:             2,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Storage: StorageConfig{
			Type: "memory",
			Badger: BadgerConfig{
				Path:             "./data/badger",
				SyncWrites:       true,
				ValueLogFileSize: 1073741824, // 1GB
			},
			Redis: RedisConfig{
				Address:  "localhost:6379",
				Password: "",
				DB:       0,
			},
		},
		Memory: MemoryConfig{
			ShortTermWindow:      10,
			TopK:                 5,
			IndexCapacity:        5000,
			SessionHistoryLimit:  40,
			SessionTTL:           24 * time.Hour,
			ProfileCacheSize:     2000,
			ProfileCacheTTL:      5 * time.Minute,
			IndexCacheSize:       2000,
			IndexCacheTTL:        5 * time.Minute,
			RecallCacheSize:      1000,
			RecallCacheTTL:       5 * time.Second,
			DuplicateWindow:      128,
			CheckpointTurns:      10,
			SummaryCap:           20,
			ConsolidateThreshold: 0.5,
			DecayHighDays:        28,
			DecayMediumDays:      14,
			DecayLowDays:         7,
			FingerprintMaxLen:    256,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9091,
		},
	}
}
