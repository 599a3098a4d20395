package memory

import (
	"context"
	"sort"
	"strings"
)

// RecallResult is the answer to a recall query.
type RecallResult struct {
	// ShortTerm is the last N turns of the supplied session history, in
	// original order, unscored.
	ShortTerm []Turn `json:"shortTerm"`

	// Similar is the top K records by cosine similarity to the query,
	// highest first.
	Similar []*ScoredRecord `json:"similar"`
}

// Recall blends a fixed short-term window of recent turns with the top K
// semantic index records by similarity to query. The short-term window is
// always populated from sessionHistory, so conversational continuity
// survives any storage failure. Guest identities get an empty Similar set.
//
// Recall never fails: per-record fetch errors exclude the record, nothing
// more.
func (e *Engine) Recall(ctx context.Context, userID string, sessionHistory []Turn, query string) *RecallResult {
	e.metrics.RecordRecall()

	shortTerm := sessionHistory
	if len(shortTerm) > e.opts.ShortTermWindow {
		shortTerm = shortTerm[len(shortTerm)-e.opts.ShortTermWindow:]
	}

	if !IsDurableIdentity(userID) {
		return &RecallResult{ShortTerm: shortTerm, Similar: []*ScoredRecord{}}
	}

	// Debounce identical queries; the short-term window is rebuilt from
	// the caller's history so a cached entry never serves stale turns.
	cacheKey := userID + "\x00" + normalizeQuery(query)
	if cached, ok := e.recalls.Get(cacheKey); ok {
		e.metrics.RecordRecallCacheHit()
		return &RecallResult{ShortTerm: shortTerm, Similar: cached.Similar}
	}

	queryVec := Embed(query)
	var similar []*ScoredRecord
	for _, id := range e.loadIndex(ctx, userID) {
		rec := e.fetchRecord(ctx, id)
		if rec == nil {
			continue
		}
		score := CosineSimilarity(queryVec, rec.Embedding)
		if score <= 0 {
			continue
		}
		similar = append(similar, &ScoredRecord{Record: rec, Score: score})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].Score != similar[j].Score {
			return similar[i].Score > similar[j].Score
		}
		return similar[i].Record.Priority > similar[j].Record.Priority
	})
	if len(similar) > e.opts.TopK {
		similar = similar[:e.opts.TopK]
	}
	if similar == nil {
		similar = []*ScoredRecord{}
	}

	// Access tracking is best-effort.
	for _, sr := range similar {
		sr.Record.AccessCount++
		sr.Record.LastAccessed = e.now()
		e.persistRecord(ctx, sr.Record)
	}

	result := &RecallResult{ShortTerm: shortTerm, Similar: similar}
	e.recalls.Set(cacheKey, result)
	return result
}

// SearchFacts ranks all of a user's records against query with the
// priority-weighted TF-IDF scorer. Guest identities get an empty result.
func (e *Engine) SearchFacts(ctx context.Context, userID, query string) []*ScoredRecord {
	if !IsDurableIdentity(userID) {
		return []*ScoredRecord{}
	}

	scored := ScoreByRelevance(query, e.loadRecords(ctx, userID), e.now())
	if scored == nil {
		scored = []*ScoredRecord{}
	}
	return scored
}

// normalizeQuery collapses whitespace and case so trivially different
// spellings of the same query share a debounce cache entry.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
