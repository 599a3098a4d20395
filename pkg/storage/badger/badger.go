// Package badger provides a Badger-backed implementation of the KVStore
// interface for durable single-node deployments.
package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
)

// Config holds configuration for BadgerStore.
type Config struct {
	Path             string
	SyncWrites       bool
	ValueLogFileSize int64
	InMemory         bool
}

// BadgerStore implements storage.KVStore using Badger. Key expiry uses
// Badger's native per-entry TTL.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a Badger database at the configured path.
func NewBadgerStore(cfg *Config) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	if cfg.InMemory {
		opts.InMemory = true
		opts.Dir = ""
		opts.ValueDir = ""
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &storage.StorageUnavailableError{Cause: err}
	}
	return &BadgerStore{db: db}, nil
}

// Get returns the value for key.
func (b *BadgerStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return &storage.NotFoundError{Key: key}
			}
			return &storage.StorageUnavailableError{Cause: err}
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

// Put stores value under key, with Badger-native TTL when ttl > 0.
func (b *BadgerStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), []byte(value))
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return &storage.StorageUnavailableError{Cause: err}
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (b *BadgerStore) Delete(ctx context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return &storage.StorageUnavailableError{Cause: err}
	}
	return nil
}

// Close closes the underlying database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
