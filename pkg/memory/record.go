package memory

import "time"

// RecordType classifies a memory record.
type RecordType string

const (
	TypePreference      RecordType = "preference"
	TypeFact            RecordType = "fact"
	TypeContext         RecordType = "context"
	TypeEpisodicSummary RecordType = "episodic-summary"
)

// Priority ranks a record for decay and tie-breaking.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Record is the atomic unit of memory.
type Record struct {
	// ID is a unique, time-ordered identifier.
	ID string `json:"id"`

	// Content is the free text of the record.
	Content string `json:"content"`

	// Type classifies the record.
	Type RecordType `json:"type"`

	// Priority is set at creation and drives decay and tie-breaking.
	Priority Priority `json:"priority"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt"`

	// LastAccessed is updated on every retrieval.
	LastAccessed time.Time `json:"lastAccessed"`

	// AccessCount is incremented on every retrieval.
	AccessCount int `json:"accessCount"`

	// Fingerprint is a normalized, order-independent signature of Content
	// used for near-duplicate detection.
	Fingerprint string `json:"fingerprint"`

	// Embedding is the sparse term-frequency vector of Content.
	Embedding TermVector `json:"embedding"`

	// Metadata carries free-form context (owning user, owning session,
	// source type).
	Metadata map[string]string `json:"metadata,omitempty"`

	// MergedFrom tracks provenance of consolidation merges.
	MergedFrom []string `json:"mergedFrom,omitempty"`
}

// UserProfile holds durable per-identity state.
type UserProfile struct {
	// KeyFacts maps a fact type to its latest value, last-write-wins.
	KeyFacts map[string]string `json:"keyFacts"`

	// Preferences maps a preference name to its value.
	Preferences map[string]string `json:"preferences"`

	// OptOutMemory disables creation of new records for this identity.
	// Existing records are not retroactively deleted.
	OptOutMemory bool `json:"optOutMemory"`
}

// NewUserProfile returns an empty profile with initialized maps.
func NewUserProfile() *UserProfile {
	return &UserProfile{
		KeyFacts:    make(map[string]string),
		Preferences: make(map[string]string),
	}
}

// Turn is a single conversation turn.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ScoredRecord pairs a record with its retrieval score.
type ScoredRecord struct {
	Record *Record `json:"record"`
	Score  float64 `json:"score"`
}
