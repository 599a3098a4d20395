package memory

import (
	"context"
	"encoding/json"

	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
)

// The semantic index is an append-only ordered list of record ids per
// identity. Position is recency: new ids are appended and the list is
// trimmed from the front when it exceeds capacity. This ordering is an
// invariant, not an artifact of insertion order.

// loadIndex returns the semantic index for userID, empty on any failure.
func (e *Engine) loadIndex(ctx context.Context, userID string) []string {
	if ids, ok := e.indexes.Get(userID); ok {
		return ids
	}

	raw, err := e.store.Get(ctx, semanticIndexPrefix+userID)
	if err != nil {
		if !storage.IsNotFound(err) {
			e.storeError(ctx, "get-index", err)
		}
		return nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		e.log.WarnContext(ctx, "discarding malformed semantic index", "userId", userID, "error", err)
		return nil
	}

	e.indexes.Set(userID, ids)
	return ids
}

// saveIndex trims the index to capacity and persists it. Failures are
// swallowed; the cache is only updated after a successful write.
func (e *Engine) saveIndex(ctx context.Context, userID string, ids []string) {
	if len(ids) > e.opts.IndexCapacity {
		ids = ids[len(ids)-e.opts.IndexCapacity:]
	}

	raw, err := json.Marshal(ids)
	if err != nil {
		e.log.WarnContext(ctx, "failed to serialize semantic index", "userId", userID, "error", err)
		return
	}
	if err := e.store.Put(ctx, semanticIndexPrefix+userID, string(raw), 0); err != nil {
		e.storeError(ctx, "put-index", err)
		return
	}

	e.indexes.Set(userID, ids)
}

// appendToIndex appends a record id to the semantic index. Read-modify-
// write without concurrency control: concurrent appends for the same
// identity may lose one entry.
func (e *Engine) appendToIndex(ctx context.Context, userID, recordID string) {
	ids := e.loadIndex(ctx, userID)
	e.saveIndex(ctx, userID, append(ids, recordID))
}

// removeFromIndex drops the given ids from the semantic index, preserving
// order of the rest.
func (e *Engine) removeFromIndex(ctx context.Context, userID string, drop map[string]bool) {
	if len(drop) == 0 {
		return
	}

	ids := e.loadIndex(ctx, userID)
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(ids) {
		e.saveIndex(ctx, userID, kept)
	}
}
