package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rahilsk203/islamicai-sub002/config"
	"github.com/rahilsk203/islamicai-sub002/pkg/api"
	"github.com/rahilsk203/islamicai-sub002/pkg/logger"
	"github.com/rahilsk203/islamicai-sub002/pkg/memory"
	memstore "github.com/rahilsk203/islamicai-sub002/pkg/storage/memory"
)

func TestServerStartup(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 18080

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})

	store := memstore.NewMemoryStore()
	defer store.Close()

	engine := memory.NewEngine(store, engineOptions(&cfg.Memory), log, nil)

	router := api.NewRouter(api.RouterConfig{
		Config: cfg,
		Logger: log,
		Engine: engine,
		Store:  store,
	})
	httpServer := api.NewHTTPServer(cfg, log, router)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	// Wait for server to start
	time.Sleep(100 * time.Millisecond)

	select {
	case err := <-serverErrChan:
		t.Fatalf("Server failed to start: %v", err)
	default:
	}

	for _, path := range []string{"/health", "/ready", "/status"} {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Server.Port, path))
		if err != nil {
			t.Fatalf("Failed to call %s endpoint: %v", path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s returned status %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		t.Errorf("Failed to shutdown server: %v", err)
	}
}

func TestBuildOverrides(t *testing.T) {
	origServerPort := *serverPort
	origLogLevel := *logLevel
	origStorage := *storageArg
	origDebugMode := *debugMode

	defer func() {
		*serverPort = origServerPort
		*logLevel = origLogLevel
		*storageArg = origStorage
		*debugMode = origDebugMode
	}()

	*serverPort = 0
	*logLevel = ""
	*storageArg = ""
	*debugMode = false

	overrides := buildOverrides()
	if len(overrides) != 0 {
		t.Errorf("Expected empty overrides, got %d items", len(overrides))
	}

	*serverPort = 9090
	*logLevel = "debug"
	*storageArg = "badger"
	*debugMode = true

	overrides = buildOverrides()
	if len(overrides) != 4 {
		t.Errorf("Expected 4 overrides, got %d", len(overrides))
	}

	if overrides["server.port"] != 9090 {
		t.Errorf("Expected server.port=9090, got %v", overrides["server.port"])
	}
	if overrides["log.level"] != "debug" {
		t.Errorf("Expected log.level=debug, got %v", overrides["log.level"])
	}
	if overrides["storage.type"] != "badger" {
		t.Errorf("Expected storage.type=badger, got %v", overrides["storage.type"])
	}
	if overrides["app.debug"] != true {
		t.Errorf("Expected app.debug=true, got %v", overrides["app.debug"])
	}
}

func TestEngineOptionsMapping(t *testing.T) {
	mc := config.DefaultConfig().Memory
	opts := engineOptions(&mc)

	if opts.ShortTermWindow != mc.ShortTermWindow {
		t.Errorf("ShortTermWindow = %d, want %d", opts.ShortTermWindow, mc.ShortTermWindow)
	}
	if opts.TopK != mc.TopK {
		t.Errorf("TopK = %d, want %d", opts.TopK, mc.TopK)
	}
	if opts.ConsolidateThreshold != mc.ConsolidateThreshold {
		t.Errorf("ConsolidateThreshold = %f, want %f", opts.ConsolidateThreshold, mc.ConsolidateThreshold)
	}
	if opts.SessionTTL != mc.SessionTTL {
		t.Errorf("SessionTTL = %v, want %v", opts.SessionTTL, mc.SessionTTL)
	}
}

func TestPrintVersion(t *testing.T) {
	output := captureStdout(t, printVersion)

	for _, expected := range []string{"memoryd", "Version:", "Build Time:", "Git Commit:", "Go Version:"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q. Output: %s", expected, output)
		}
	}
}

func TestPrintHelp(t *testing.T) {
	output := captureStdout(t, printHelp)

	for _, expected := range []string{"memoryd", "Usage:", "Options:", "Examples:"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q. Output: %s", expected, output)
		}
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = oldStdout

	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	return string(buf[:n])
}
