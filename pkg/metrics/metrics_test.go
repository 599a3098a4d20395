package metrics

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewManager_Disabled(t *testing.T) {
	m := NewManager(Config{Enabled: false})

	if m.Enabled() {
		t.Error("expected manager to be disabled")
	}

	// Recording on a disabled manager must not panic.
	m.RecordCreated("fact")
	m.RecordDuplicateRejected()
	m.RecordRecall()
	m.RecordRecallCacheHit()
	m.RecordStoreError("get")
	m.RecordDecayed(3)
	m.RecordMerged(2)
	m.RecordCheckpoint()
	m.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)
}

func TestNewManager_Enabled(t *testing.T) {
	m := NewManager(DefaultConfig())

	if !m.Enabled() {
		t.Fatal("expected manager to be enabled")
	}

	m.RecordCreated("fact")
	m.RecordCreated("episodic-summary")
	m.RecordRecall()
	m.RecordStoreError("put")
	m.RecordHTTPRequest("POST", "/api/v1/recall", "200", 5*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected metrics output")
	}
}

func TestDisabledHandler(t *testing.T) {
	m := NoOpManager()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 404 {
		t.Errorf("expected 404 for disabled metrics, got %d", rec.Code)
	}
}
