package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rahilsk203/islamicai-sub002/pkg/logger"
	"github.com/rahilsk203/islamicai-sub002/pkg/metrics"
	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
)

// Key namespaces in the record store.
const (
	sessionIndexPrefix   = "session-index:"
	userProfilePrefix    = "user-profile:"
	semanticIndexPrefix  = "semantic-index:"
	semanticRecordPrefix = "semantic-record:"
	sessionOwnerPrefix   = "session-owner:"
)

// Options configures an Engine. Zero fields are replaced with the
// corresponding DefaultOptions value.
type Options struct {
	// ShortTermWindow is the number of recent turns included in recall.
	ShortTermWindow int

	// TopK is the number of similarity matches returned by recall.
	TopK int

	// IndexCapacity bounds the per-user semantic index. The index is
	// append-only and trimmed from the front, so position is recency.
	IndexCapacity int

	// SessionHistoryLimit bounds stored turns per session.
	SessionHistoryLimit int

	// SessionTTL expires session turn history and session-owner links.
	SessionTTL time.Duration

	ProfileCacheSize int
	ProfileCacheTTL  time.Duration
	IndexCacheSize   int
	IndexCacheTTL    time.Duration
	RecallCacheSize  int
	RecallCacheTTL   time.Duration

	// DuplicateWindow is the number of recent fingerprints tracked per
	// identity by the duplicate filter.
	DuplicateWindow int

	// CheckpointTurns is the session turn count interval at which an
	// episodic summary is synthesized.
	CheckpointTurns int

	// SummaryCap bounds retained episodic summaries per identity.
	SummaryCap int

	// ConsolidateThreshold is the token set Jaccard overlap above which
	// two records are merged.
	ConsolidateThreshold float64

	// Decay horizons per priority, in days from record creation.
	DecayHighDays   int
	DecayMediumDays int
	DecayLowDays    int

	// FingerprintMaxLen bounds the normalized fingerprint input.
	FingerprintMaxLen int
}

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
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
		FingerprintMaxLen:    DefaultFingerprintMaxLen,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ShortTermWindow <= 0 {
		o.ShortTermWindow = def.ShortTermWindow
	}
	if o.TopK <= 0 {
		o.TopK = def.TopK
	}
	if o.IndexCapacity <= 0 {
		o.IndexCapacity = def.IndexCapacity
	}
	if o.SessionHistoryLimit <= 0 {
		o.SessionHistoryLimit = def.SessionHistoryLimit
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = def.SessionTTL
	}
	if o.ProfileCacheSize <= 0 {
		o.ProfileCacheSize = def.ProfileCacheSize
	}
	if o.ProfileCacheTTL <= 0 {
		o.ProfileCacheTTL = def.ProfileCacheTTL
	}
	if o.IndexCacheSize <= 0 {
		o.IndexCacheSize = def.IndexCacheSize
	}
	if o.IndexCacheTTL <= 0 {
		o.IndexCacheTTL = def.IndexCacheTTL
	}
	if o.RecallCacheSize <= 0 {
		o.RecallCacheSize = def.RecallCacheSize
	}
	if o.RecallCacheTTL <= 0 {
		o.RecallCacheTTL = def.RecallCacheTTL
	}
	if o.DuplicateWindow <= 0 {
		o.DuplicateWindow = def.DuplicateWindow
	}
	if o.CheckpointTurns <= 0 {
		o.CheckpointTurns = def.CheckpointTurns
	}
	if o.SummaryCap <= 0 {
		o.SummaryCap = def.SummaryCap
	}
	if o.ConsolidateThreshold <= 0 {
		o.ConsolidateThreshold = def.ConsolidateThreshold
	}
	if o.DecayHighDays <= 0 {
		o.DecayHighDays = def.DecayHighDays
	}
	if o.DecayMediumDays <= 0 {
		o.DecayMediumDays = def.DecayMediumDays
	}
	if o.DecayLowDays <= 0 {
		o.DecayLowDays = def.DecayLowDays
	}
	if o.FingerprintMaxLen <= 0 {
		o.FingerprintMaxLen = def.FingerprintMaxLen
	}
	return o
}

// Engine is the per-user conversational memory engine. Construct one
// instance per process and pass it by reference; all cache state is owned
// by the instance so tests can run isolated engines.
type Engine struct {
	store   storage.KVStore
	log     logger.Logger
	metrics *metrics.Manager
	opts    Options

	profiles *Cache[*UserProfile]
	indexes  *Cache[[]string]
	recalls  *Cache[*RecallResult]
	dupes    *DupeFilter

	now func() time.Time
}

// NewEngine creates a memory engine backed by store.
func NewEngine(store storage.KVStore, opts Options, log logger.Logger, m *metrics.Manager) *Engine {
	opts = opts.withDefaults()
	if log == nil {
		log = logger.Noop()
	}
	if m == nil {
		m = metrics.NoOpManager()
	}

	return &Engine{
		store:    store,
		log:      log,
		metrics:  m,
		opts:     opts,
		profiles: NewCache[*UserProfile](opts.ProfileCacheSize, opts.ProfileCacheTTL),
		indexes:  NewCache[[]string](opts.IndexCacheSize, opts.IndexCacheTTL),
		recalls:  NewCache[*RecallResult](opts.RecallCacheSize, opts.RecallCacheTTL),
		dupes:    NewDupeFilter(opts.DuplicateWindow),
		now:      time.Now,
	}
}

// LinkSessionToUser associates an ephemeral session with the durable
// identity that owns it. Guest identities are silently ignored.
func (e *Engine) LinkSessionToUser(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" || userID == "" {
		return ErrInvalidIdentity
	}
	if !IsDurableIdentity(userID) {
		return nil
	}

	if err := e.store.Put(ctx, sessionOwnerPrefix+sessionID, userID, e.opts.SessionTTL); err != nil {
		e.storeError(ctx, "link-session", err)
	}
	return nil
}

// UserIDForSession resolves the durable identity owning a session, or ""
// when the session has no owner or the store is unavailable.
func (e *Engine) UserIDForSession(ctx context.Context, sessionID string) string {
	if sessionID == "" {
		return ""
	}

	userID, err := e.store.Get(ctx, sessionOwnerPrefix+sessionID)
	if err != nil {
		if !storage.IsNotFound(err) {
			e.storeError(ctx, "session-owner", err)
		}
		return ""
	}
	return userID
}

// GetUserProfile returns the profile for userID. Guest identities, missing
// profiles, malformed stored values and store failures all yield an empty
// default profile.
func (e *Engine) GetUserProfile(ctx context.Context, userID string) *UserProfile {
	if !IsDurableIdentity(userID) {
		return NewUserProfile()
	}

	if profile, ok := e.profiles.Get(userID); ok {
		return profile
	}

	raw, err := e.store.Get(ctx, userProfilePrefix+userID)
	if err != nil {
		if !storage.IsNotFound(err) {
			e.storeError(ctx, "get-profile", err)
		}
		return NewUserProfile()
	}

	profile := NewUserProfile()
	if err := json.Unmarshal([]byte(raw), profile); err != nil {
		// Malformed stored value is treated as not found.
		e.log.WarnContext(ctx, "discarding malformed user profile", "userId", userID, "error", err)
		return NewUserProfile()
	}
	if profile.KeyFacts == nil {
		profile.KeyFacts = make(map[string]string)
	}
	if profile.Preferences == nil {
		profile.Preferences = make(map[string]string)
	}

	e.profiles.Set(userID, profile)
	return profile
}

// SaveUserProfile persists the profile for userID. A no-op for guest
// identities. Store failures are swallowed.
func (e *Engine) SaveUserProfile(ctx context.Context, userID string, profile *UserProfile) error {
	if userID == "" {
		return ErrInvalidIdentity
	}
	if !IsDurableIdentity(userID) || profile == nil {
		return nil
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return &storage.SerializationError{Operation: "marshal profile", Cause: err}
	}

	if err := e.store.Put(ctx, userProfilePrefix+userID, string(raw), 0); err != nil {
		e.storeError(ctx, "save-profile", err)
		return nil
	}

	e.profiles.Set(userID, profile)
	return nil
}

// SetOptOut sets the opt-out flag on the profile for userID. When opted
// out, no new records are created for the identity.
func (e *Engine) SetOptOut(ctx context.Context, userID string, optOut bool) error {
	if userID == "" {
		return ErrInvalidIdentity
	}
	if !IsDurableIdentity(userID) {
		return nil
	}

	profile := e.GetUserProfile(ctx, userID)
	profile.OptOutMemory = optOut
	return e.SaveUserProfile(ctx, userID, profile)
}

// SaveUserFact records a key fact (last-write-wins in the profile) and
// creates a high priority fact record. Returns the new record id, or ""
// when the identity is a guest, has opted out, or the fact is a recent
// duplicate.
func (e *Engine) SaveUserFact(ctx context.Context, userID, factType, value string) (string, error) {
	if userID == "" {
		return "", ErrInvalidIdentity
	}
	if !IsDurableIdentity(userID) {
		return "", nil
	}

	profile := e.GetUserProfile(ctx, userID)
	if profile.OptOutMemory {
		return "", nil
	}

	profile.KeyFacts[factType] = value
	if err := e.SaveUserProfile(ctx, userID, profile); err != nil {
		return "", err
	}

	content := factType + ": " + value
	return e.createAndPersist(ctx, userID, content, TypeFact, PriorityHigh, map[string]string{
		"userId": userID,
		"source": "fact",
	}), nil
}

// RecordTurn appends a conversation turn to the session history and
// records it as a context record. When userID is empty the session owner
// link is consulted. Returns the new record id, "" for guests, opted-out
// identities and duplicates.
func (e *Engine) RecordTurn(ctx context.Context, sessionID, userID, role, content string) (string, error) {
	if userID == "" {
		if sessionID == "" {
			return "", ErrInvalidIdentity
		}
		userID = e.UserIDForSession(ctx, sessionID)
	}
	if !IsDurableIdentity(userID) {
		return "", nil
	}

	profile := e.GetUserProfile(ctx, userID)
	if profile.OptOutMemory {
		return "", nil
	}

	turnCount := 0
	if sessionID != "" {
		turnCount = e.appendSessionTurn(ctx, sessionID, Turn{Role: role, Content: content, At: e.now()})
	}

	priority := PriorityMedium
	if role != "user" {
		priority = PriorityLow
	}
	id := e.createAndPersist(ctx, userID, role+": "+content, TypeContext, priority, map[string]string{
		"userId":    userID,
		"sessionId": sessionID,
		"role":      role,
		"source":    "turn",
	})

	// Synthesize an episodic summary every CheckpointTurns turns.
	if turnCount > 0 && turnCount%e.opts.CheckpointTurns == 0 {
		e.checkpoint(ctx, sessionID, userID)
	}

	return id, nil
}

// AddEpisodicSummary records an episodic summary and prunes raw summaries
// beyond the per-user cap.
func (e *Engine) AddEpisodicSummary(ctx context.Context, userID, summary string) (string, error) {
	if userID == "" {
		return "", ErrInvalidIdentity
	}
	if !IsDurableIdentity(userID) {
		return "", nil
	}

	profile := e.GetUserProfile(ctx, userID)
	if profile.OptOutMemory {
		return "", nil
	}

	id := e.createAndPersist(ctx, userID, summary, TypeEpisodicSummary, PriorityMedium, map[string]string{
		"userId":   userID,
		"episodic": "true",
		"source":   "summary",
	})
	if id != "" {
		e.pruneSummaries(ctx, userID)
	}
	return id, nil
}

// ForgetLast pops the most recent record off the semantic index and
// deletes its body. Returns false when the index is empty or the identity
// is a guest.
func (e *Engine) ForgetLast(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, ErrInvalidIdentity
	}
	if !IsDurableIdentity(userID) {
		return false, nil
	}

	ids := e.loadIndex(ctx, userID)
	if len(ids) == 0 {
		return false, nil
	}

	last := ids[len(ids)-1]
	if err := e.store.Delete(ctx, semanticRecordPrefix+last); err != nil {
		e.storeError(ctx, "forget-last", err)
	}
	e.saveIndex(ctx, userID, ids[:len(ids)-1])
	return true, nil
}

// DeleteAllUserMemories clears all records, the semantic index and the
// profile for userID. A no-op for guest identities.
func (e *Engine) DeleteAllUserMemories(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidIdentity
	}
	if !IsDurableIdentity(userID) {
		return nil
	}

	for _, id := range e.loadIndex(ctx, userID) {
		if err := e.store.Delete(ctx, semanticRecordPrefix+id); err != nil {
			e.storeError(ctx, "delete-record", err)
		}
	}
	if err := e.store.Delete(ctx, semanticIndexPrefix+userID); err != nil {
		e.storeError(ctx, "delete-index", err)
	}
	if err := e.store.Delete(ctx, userProfilePrefix+userID); err != nil {
		e.storeError(ctx, "delete-profile", err)
	}

	e.profiles.Delete(userID)
	e.indexes.Delete(userID)
	e.dupes.Forget(userID)
	return nil
}

// SessionTurns returns the stored turn history for a session, newest last.
func (e *Engine) SessionTurns(ctx context.Context, sessionID string) []Turn {
	if sessionID == "" {
		return nil
	}

	raw, err := e.store.Get(ctx, sessionIndexPrefix+sessionID)
	if err != nil {
		if !storage.IsNotFound(err) {
			e.storeError(ctx, "session-turns", err)
		}
		return nil
	}

	var turns []Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		e.log.WarnContext(ctx, "discarding malformed session history", "sessionId", sessionID, "error", err)
		return nil
	}
	return turns
}

// createAndPersist builds a record, rejects recent duplicates, persists
// the body and appends the id to the semantic index. Returns "" when the
// record was not stored; store failures are swallowed.
func (e *Engine) createAndPersist(ctx context.Context, userID, content string, typ RecordType, priority Priority, metadata map[string]string) string {
	fingerprint := Fingerprint(content, e.opts.FingerprintMaxLen)
	if e.dupes.Seen(userID, fingerprint) {
		e.metrics.RecordDuplicateRejected()
		return ""
	}

	rec := NewRecord(content, typ, priority, metadata, e.opts.FingerprintMaxLen, e.now())
	raw, err := json.Marshal(rec)
	if err != nil {
		e.log.WarnContext(ctx, "failed to serialize record", "recordId", rec.ID, "error", err)
		return ""
	}

	if err := e.store.Put(ctx, semanticRecordPrefix+rec.ID, string(raw), 0); err != nil {
		e.storeError(ctx, "put-record", err)
		return ""
	}

	e.appendToIndex(ctx, userID, rec.ID)
	e.metrics.RecordCreated(string(typ))
	return rec.ID
}

// appendSessionTurn appends a turn to the bounded session history and
// returns the stored turn count.
func (e *Engine) appendSessionTurn(ctx context.Context, sessionID string, turn Turn) int {
	turns := e.SessionTurns(ctx, sessionID)
	turns = append(turns, turn)
	if len(turns) > e.opts.SessionHistoryLimit {
		turns = turns[len(turns)-e.opts.SessionHistoryLimit:]
	}

	raw, err := json.Marshal(turns)
	if err != nil {
		e.log.WarnContext(ctx, "failed to serialize session history", "sessionId", sessionID, "error", err)
		return len(turns)
	}
	if err := e.store.Put(ctx, sessionIndexPrefix+sessionID, string(raw), e.opts.SessionTTL); err != nil {
		e.storeError(ctx, "put-session-history", err)
	}
	return len(turns)
}

// fetchRecord loads a record body, returning nil for missing or malformed
// bodies. An index entry pointing at an expired body is a miss, not an
// error.
func (e *Engine) fetchRecord(ctx context.Context, recordID string) *Record {
	raw, err := e.store.Get(ctx, semanticRecordPrefix+recordID)
	if err != nil {
		if !storage.IsNotFound(err) {
			e.storeError(ctx, "get-record", err)
		}
		return nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		e.log.WarnContext(ctx, "discarding malformed record", "recordId", recordID, "error", err)
		return nil
	}
	return &rec
}

// persistRecord rewrites a record body in place. Failures are swallowed.
func (e *Engine) persistRecord(ctx context.Context, rec *Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		e.log.WarnContext(ctx, "failed to serialize record", "recordId", rec.ID, "error", err)
		return
	}
	if err := e.store.Put(ctx, semanticRecordPrefix+rec.ID, string(raw), 0); err != nil {
		e.storeError(ctx, "put-record", err)
	}
}

// loadRecords resolves the semantic index to record bodies, skipping
// missing ones, preserving index order (oldest first).
func (e *Engine) loadRecords(ctx context.Context, userID string) []*Record {
	ids := e.loadIndex(ctx, userID)
	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		if rec := e.fetchRecord(ctx, id); rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

func (e *Engine) storeError(ctx context.Context, operation string, err error) {
	e.metrics.RecordStoreError(operation)
	e.log.WarnContext(ctx, "record store error", "operation", operation, "error", err)
}
