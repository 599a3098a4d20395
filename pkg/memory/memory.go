// Package memory implements a per-user conversational memory engine. It
// stores short-lived conversation turns and long-lived facts and episodic
// summaries for a chat agent, and answers recall queries by blending a
// recent-turn window with a relevance-ranked set of older records retrieved
// by term-frequency similarity.
//
// All engine state is serialized as JSON strings through a storage.KVStore
// under namespaced keys. Writes to the per-user semantic index are
// read-modify-write without optimistic concurrency control: two concurrent
// writers for the same identity can race and one append may be lost. This
// is accepted best-effort semantics, not a ledger.
package memory

import "errors"

// ErrInvalidIdentity is returned when a mutating operation receives an
// empty identity. Non-empty guest identities are not an error: mutating
// calls silently no-op for them.
var ErrInvalidIdentity = errors.New("memory: empty identity")
