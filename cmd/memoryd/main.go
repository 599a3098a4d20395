package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahilsk203/islamicai-sub002/config"
	"github.com/rahilsk203/islamicai-sub002/pkg/api"
	"github.com/rahilsk203/islamicai-sub002/pkg/logger"
	"github.com/rahilsk203/islamicai-sub002/pkg/memory"
	"github.com/rahilsk203/islamicai-sub002/pkg/metrics"
	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
	"github.com/rahilsk203/islamicai-sub002/pkg/storage/badger"
	memstore "github.com/rahilsk203/islamicai-sub002/pkg/storage/memory"
	"github.com/rahilsk203/islamicai-sub002/pkg/storage/redis"
	"github.com/rahilsk203/islamicai-sub002/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	storageArg = flag.String("storage", "", "Override storage backend (memory, badger, redis)")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)

	log.Info("Starting memoryd",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)

	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()

	metricsCfg := metrics.Config{
		Enabled:             cfg.Metrics.Enabled,
		Port:                cfg.Metrics.Port,
		Path:                cfg.Metrics.Path,
		HTTPDurationBuckets: metrics.DefaultConfig().HTTPDurationBuckets,
	}
	metricsManager := metrics.NewManager(metricsCfg)

	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	engine := memory.NewEngine(store, engineOptions(&cfg.Memory), log, metricsManager)

	router := api.NewRouter(api.RouterConfig{
		Config:  cfg,
		Logger:  log,
		Engine:  engine,
		Store:   store,
		Metrics: metricsManager,
	})
	httpServer := api.NewHTTPServer(cfg, log, router)

	// Hot-reload log level on config file changes.
	if *configPath != "" {
		startWatcher(ctx, *configPath, log)
	}

	serverErrChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	log.Info("memoryd is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
		"storage", cfg.Storage.Type,
	)

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	log.Info("memoryd stopped gracefully")
}

func newStore(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.KVStore, error) {
	switch cfg.Storage.Type {
	case "badger":
		store, err := badger.NewBadgerStore(&badger.Config{
			Path:             cfg.Storage.Badger.Path,
			SyncWrites:       cfg.Storage.Badger.SyncWrites,
			ValueLogFileSize: cfg.Storage.Badger.ValueLogFileSize,
			InMemory:         cfg.Storage.Badger.InMemory,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Initialized Badger storage", "path", cfg.Storage.Badger.Path)
		return store, nil
	case "redis":
		store, err := redis.NewRedisStore(ctx, &redis.Config{
			Address:  cfg.Storage.Redis.Address,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Initialized Redis storage", "address", cfg.Storage.Redis.Address)
		return store, nil
	case "memory":
		log.Info("Initialized memory storage")
		return memstore.NewMemoryStore(), nil
	default:
		log.Warn("Unknown storage type, using memory storage", "type", cfg.Storage.Type)
		return memstore.NewMemoryStore(), nil
	}
}

func engineOptions(mc *config.MemoryConfig) memory.Options {
	return memory.Options{
		ShortTermWindow:      mc.ShortTermWindow,
		TopK:                 mc.TopK,
		IndexCapacity:        mc.IndexCapacity,
		SessionHistoryLimit:  mc.SessionHistoryLimit,
		SessionTTL:           mc.SessionTTL,
		ProfileCacheSize:     mc.ProfileCacheSize,
		ProfileCacheTTL:      mc.ProfileCacheTTL,
		IndexCacheSize:       mc.IndexCacheSize,
		IndexCacheTTL:        mc.IndexCacheTTL,
		RecallCacheSize:      mc.RecallCacheSize,
		RecallCacheTTL:       mc.RecallCacheTTL,
		DuplicateWindow:      mc.DuplicateWindow,
		CheckpointTurns:      mc.CheckpointTurns,
		SummaryCap:           mc.SummaryCap,
		ConsolidateThreshold: mc.ConsolidateThreshold,
		DecayHighDays:        mc.DecayHighDays,
		DecayMediumDays:      mc.DecayMediumDays,
		DecayLowDays:         mc.DecayLowDays,
		FingerprintMaxLen:    mc.FingerprintMaxLen,
	}
}

func startWatcher(ctx context.Context, path string, log *logger.SlogLogger) {
	watcher, err := config.NewWatcher(path, config.NewLoader())
	if err != nil {
		log.Warn("Config watcher disabled", "error", err)
		return
	}

	watcher.OnChange(func(newCfg *config.Config) {
		log.Info("Configuration reloaded", "level", newCfg.Log.Level)
		log.SetLevel(logger.ParseLevel(newCfg.Log.Level))
	})

	go func() {
		if err := watcher.Watch(ctx); err != nil && err != context.Canceled {
			log.Warn("Config watcher stopped", "error", err)
		}
	}()
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *storageArg != "" {
		overrides["storage.type"] = *storageArg
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("memoryd - Conversational Memory Engine\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("memoryd - Per-user conversational memory engine\n\n")
	fmt.Printf("Usage: memoryd [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  memoryd                                   # Run with default config\n")
	fmt.Printf("  memoryd -config config.yaml               # Use specific config file\n")
	fmt.Printf("  memoryd -port 9090 -log-level debug       # Override specific options\n")
	fmt.Printf("  memoryd -storage badger                   # Persist to BadgerDB\n")
	fmt.Printf("  memoryd -version                          # Print version info\n")
}
