package memory

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultFingerprintMaxLen bounds the normalized content fed to the
// fingerprint hash.
const DefaultFingerprintMaxLen = 256

// Fingerprint computes the duplicate-detection signature of content. The
// content is tokenized, the tokens sorted so that word order does not
// matter, joined, truncated to maxLen bytes and hashed.
func Fingerprint(content string, maxLen int) string {
	tokens := Tokenize(content)
	sort.Strings(tokens)

	normalized := strings.Join(tokens, " ")
	if maxLen > 0 && len(normalized) > maxLen {
		normalized = normalized[:maxLen]
	}

	h := fnv.New64a()
	h.Write([]byte(normalized)) //nolint:errcheck
	return strconv.FormatUint(h.Sum64(), 16)
}

// NewRecord builds a record with a collision-resistant time-ordered id,
// the duplicate-detection fingerprint and the term-frequency embedding.
// Persistence is the caller's responsibility.
func NewRecord(content string, typ RecordType, priority Priority, metadata map[string]string, fingerprintMaxLen int, now time.Time) *Record {
	if fingerprintMaxLen <= 0 {
		fingerprintMaxLen = DefaultFingerprintMaxLen
	}

	return &Record{
		ID:           newRecordID(now),
		Content:      content,
		Type:         typ,
		Priority:     priority,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  0,
		Fingerprint:  Fingerprint(content, fingerprintMaxLen),
		Embedding:    Embed(content),
		Metadata:     metadata,
	}
}

// newRecordID generates a time-ordered id with a random suffix so that
// lexicographic ordering within a millisecond stays collision-resistant.
func newRecordID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
