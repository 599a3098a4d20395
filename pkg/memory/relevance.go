package memory

import (
	"math"
	"sort"
	"time"
)

// ScoreByRelevance ranks records against a query. The combined score is a
// TF-IDF style term match over the candidate set, weighted by record
// priority and a recency boost. Records with no matching terms are
// excluded. Priority breaks score ties.
func ScoreByRelevance(query string, records []*Record, now time.Time) []*ScoredRecord {
	queryTerms := Tokenize(query)
	if len(queryTerms) == 0 || len(records) == 0 {
		return nil
	}

	// Document frequency over the candidate set, not the whole corpus.
	df := make(map[string]int)
	for _, rec := range records {
		for term := range rec.Embedding {
			df[term]++
		}
	}

	n := float64(len(records))
	scored := make([]*ScoredRecord, 0, len(records))
	for _, rec := range records {
		var match float64
		for _, term := range queryTerms {
			tf := rec.Embedding[term]
			if tf == 0 {
				continue
			}
			match += tf * math.Log(1+n/float64(df[term]))
		}
		if match <= 0 {
			continue
		}

		score := match * float64(rec.Priority) * recencyBoost(rec.LastAccessed, now)
		scored = append(scored, &ScoredRecord{Record: rec, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Record.Priority > scored[j].Record.Priority
	})

	return scored
}

// recencyBoost demotes records by days since last access, flooring at 0.5
// so old-but-important memories are demoted rather than eliminated.
func recencyBoost(lastAccessed, now time.Time) float64 {
	days := now.Sub(lastAccessed).Hours() / 24
	if days < 0 {
		days = 0
	}
	boost := 1.5 - days/30
	if boost < 0.5 {
		return 0.5
	}
	return boost
}
