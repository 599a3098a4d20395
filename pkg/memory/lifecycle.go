package memory

import (
	"context"
	"sort"
	"strings"
	"time"
)

// DecayHorizons holds per-priority retention horizons from record
// creation time.
type DecayHorizons struct {
	High   time.Duration
	Medium time.Duration
	Low    time.Duration
}

// ApplyDecay filters records past their priority-scaled retention horizon.
// It is a pure filtering pass: dropped records leave the active working
// set but their stored bytes are not touched here.
func ApplyDecay(records []*Record, now time.Time, horizons DecayHorizons) []*Record {
	kept := make([]*Record, 0, len(records))
	for _, rec := range records {
		var horizon time.Duration
		switch rec.Priority {
		case PriorityHigh:
			horizon = horizons.High
		case PriorityMedium:
			horizon = horizons.Medium
		default:
			horizon = horizons.Low
		}
		if now.Sub(rec.CreatedAt) <= horizon {
			kept = append(kept, rec)
		}
	}
	return kept
}

// Consolidate merges near-duplicate records whose token set Jaccard
// overlap meets threshold. Merging is greedy in input order: each record
// absorbs later overlapping ones. The pass is idempotent; running it on
// an already-consolidated set returns the same set.
func Consolidate(records []*Record, threshold float64) []*Record {
	if threshold <= 0 {
		threshold = 0.5
	}

	merged := make([]*Record, 0, len(records))
	absorbed := make([]bool, len(records))
	for i, rec := range records {
		if absorbed[i] {
			continue
		}
		survivor := rec
		for j := i + 1; j < len(records); j++ {
			if absorbed[j] {
				continue
			}
			if jaccard(survivor.Embedding, records[j].Embedding) >= threshold {
				survivor = merge(survivor, records[j])
				absorbed[j] = true
			}
		}
		merged = append(merged, survivor)
	}
	return merged
}

// merge combines two near-duplicate records into one, keeping a's id. The
// longer content wins; the merged record takes the highest priority, the
// union of metadata, the summed access count, the most recent access time
// and the earliest creation time. Provenance is tracked in MergedFrom.
func merge(a, b *Record) *Record {
	content := a.Content
	if len(b.Content) > len(content) {
		content = b.Content
	}

	metadata := make(map[string]string, len(a.Metadata)+len(b.Metadata))
	for k, v := range b.Metadata {
		metadata[k] = v
	}
	for k, v := range a.Metadata {
		metadata[k] = v
	}

	priority := a.Priority
	if b.Priority > priority {
		priority = b.Priority
	}

	createdAt := a.CreatedAt
	if b.CreatedAt.Before(createdAt) {
		createdAt = b.CreatedAt
	}
	lastAccessed := a.LastAccessed
	if b.LastAccessed.After(lastAccessed) {
		lastAccessed = b.LastAccessed
	}

	mergedFrom := append([]string{}, a.MergedFrom...)
	mergedFrom = appendUnique(mergedFrom, b.ID)
	for _, id := range b.MergedFrom {
		mergedFrom = appendUnique(mergedFrom, id)
	}

	return &Record{
		ID:           a.ID,
		Content:      content,
		Type:         a.Type,
		Priority:     priority,
		CreatedAt:    createdAt,
		LastAccessed: lastAccessed,
		AccessCount:  a.AccessCount + b.AccessCount,
		Fingerprint:  Fingerprint(content, DefaultFingerprintMaxLen),
		Embedding:    Embed(content),
		Metadata:     metadata,
		MergedFrom:   mergedFrom,
	}
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// jaccard computes token set overlap of two term vectors, ignoring
// frequencies.
func jaccard(a, b TermVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	if len(b) < len(a) {
		a, b = b, a
	}
	intersection := 0
	for term := range a {
		if _, ok := b[term]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// MaintenanceReport summarizes a maintenance pass.
type MaintenanceReport struct {
	Examined int `json:"examined"`
	Decayed  int `json:"decayed"`
	Merged   int `json:"merged"`
}

// Maintain runs the decay and consolidation passes over a user's records
// and rewrites the semantic index to the surviving set. Decayed records
// are dropped from the index only; merged-away record bodies are deleted.
// The pass is idempotent and safe to interrupt.
func (e *Engine) Maintain(ctx context.Context, userID string) (*MaintenanceReport, error) {
	if userID == "" {
		return nil, ErrInvalidIdentity
	}
	if !IsDurableIdentity(userID) {
		return &MaintenanceReport{}, nil
	}

	records := e.loadRecords(ctx, userID)
	report := &MaintenanceReport{Examined: len(records)}
	if len(records) == 0 {
		return report, nil
	}

	now := e.now()
	kept := ApplyDecay(records, now, DecayHorizons{
		High:   time.Duration(e.opts.DecayHighDays) * 24 * time.Hour,
		Medium: time.Duration(e.opts.DecayMediumDays) * 24 * time.Hour,
		Low:    time.Duration(e.opts.DecayLowDays) * 24 * time.Hour,
	})
	report.Decayed = len(records) - len(kept)

	merged := Consolidate(kept, e.opts.ConsolidateThreshold)
	report.Merged = len(kept) - len(merged)

	surviving := make(map[string]bool, len(merged))
	for _, rec := range merged {
		surviving[rec.ID] = true
		if len(rec.MergedFrom) > 0 {
			e.persistRecord(ctx, rec)
		}
	}

	// Merged-away bodies are deleted; decayed ones are left to expire.
	for _, rec := range kept {
		if !surviving[rec.ID] {
			if err := e.store.Delete(ctx, semanticRecordPrefix+rec.ID); err != nil {
				e.storeError(ctx, "delete-merged", err)
			}
		}
	}

	ids := make([]string, 0, len(merged))
	for _, rec := range merged {
		ids = append(ids, rec.ID)
	}
	e.saveIndex(ctx, userID, ids)

	e.metrics.RecordDecayed(report.Decayed)
	e.metrics.RecordMerged(report.Merged)

	if report.Decayed > 0 || report.Merged > 0 {
		e.log.InfoContext(ctx, "maintenance pass complete",
			"userId", userID,
			"examined", report.Examined,
			"decayed", report.Decayed,
			"merged", report.Merged)
	}
	return report, nil
}

// checkpointRoleTurns is the number of turns per role folded into an
// episodic checkpoint summary.
const checkpointRoleTurns = 5

// checkpoint synthesizes an episodic summary from the tail of the session
// history and records it.
func (e *Engine) checkpoint(ctx context.Context, sessionID, userID string) {
	turns := e.SessionTurns(ctx, sessionID)
	summary := buildCheckpointSummary(turns, checkpointRoleTurns)
	if summary == "" {
		return
	}

	id := e.createAndPersist(ctx, userID, summary, TypeEpisodicSummary, PriorityMedium, map[string]string{
		"userId":    userID,
		"sessionId": sessionID,
		"episodic":  "true",
		"source":    "checkpoint",
	})
	if id == "" {
		return
	}

	e.metrics.RecordCheckpoint()
	e.pruneSummaries(ctx, userID)
}

// buildCheckpointSummary concatenates the last perRole user turns and the
// last perRole assistant turns with role markers, in chronological order.
func buildCheckpointSummary(turns []Turn, perRole int) string {
	users, assistants := 0, 0
	include := make([]bool, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		switch turns[i].Role {
		case "user":
			if users < perRole {
				include[i] = true
				users++
			}
		case "assistant":
			if assistants < perRole {
				include[i] = true
				assistants++
			}
		}
	}

	var lines []string
	for i, turn := range turns {
		if include[i] {
			lines = append(lines, turn.Role+": "+turn.Content)
		}
	}
	return strings.Join(lines, "\n")
}

// pruneSummaries deletes the oldest episodic summaries beyond the per-user
// cap, by creation time.
func (e *Engine) pruneSummaries(ctx context.Context, userID string) {
	records := e.loadRecords(ctx, userID)

	var summaries []*Record
	for _, rec := range records {
		if rec.Type == TypeEpisodicSummary {
			summaries = append(summaries, rec)
		}
	}
	if len(summaries) <= e.opts.SummaryCap {
		return
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})

	drop := make(map[string]bool)
	for _, rec := range summaries[:len(summaries)-e.opts.SummaryCap] {
		drop[rec.ID] = true
		if err := e.store.Delete(ctx, semanticRecordPrefix+rec.ID); err != nil {
			e.storeError(ctx, "prune-summary", err)
		}
	}
	e.removeFromIndex(ctx, userID, drop)
}
