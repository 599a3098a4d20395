package memory

import (
	"context"
	"testing"
	"time"

	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "k1", "v1", 0); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "v1" {
		t.Errorf("expected v1, got %q", got)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	if !storage.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "k1", "v1", 0)
	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k1"); !storage.IsNotFound(err) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}

	// Deleting a missing key is not an error.
	if err := s.Delete(ctx, "k1"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	s.Put(ctx, "k1", "v1", time.Minute)
	s.Put(ctx, "k2", "v2", 0)

	if _, err := s.Get(ctx, "k1"); err != nil {
		t.Fatalf("expected hit before expiry, got %v", err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := s.Get(ctx, "k1"); !storage.IsNotFound(err) {
		t.Errorf("expected NotFoundError after expiry, got %v", err)
	}
	if _, err := s.Get(ctx, "k2"); err != nil {
		t.Errorf("key without ttl should survive, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 live key, got %d", s.Len())
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "k1", "v1", 0)
	s.Put(ctx, "k1", "v2", 0)

	got, _ := s.Get(ctx, "k1")
	if got != "v2" {
		t.Errorf("expected v2, got %q", got)
	}
}
