package badger

import (
	"context"
	"testing"

	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
)

func setupTestStore(t *testing.T) *BadgerStore {
	t.Helper()

	s, err := NewBadgerStore(&Config{Path: t.TempDir(), SyncWrites: false})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		s.Close() //nolint:errcheck
	})
	return s
}

func TestBadgerStore_PutGetDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "semantic-record:abc", `{"id":"abc"}`, 0); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "semantic-record:abc")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"id":"abc"}` {
		t.Errorf("unexpected value: %q", got)
	}

	if err := s.Delete(ctx, "semantic-record:abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "semantic-record:abc"); !storage.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestBadgerStore_GetMissing(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !storage.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestBadgerStore_InMemoryMode(t *testing.T) {
	s, err := NewBadgerStore(&Config{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "k", "v", 0); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Errorf("expected v, got %q (err %v)", got, err)
	}
}
