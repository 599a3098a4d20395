package memory

import (
	"context"
	"fmt"
	"testing"
)

func makeHistory(n int) []Turn {
	turns := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		turns = append(turns, Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}
	return turns
}

func TestRecall_AhmedScenario(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	if id, err := e.SaveUserFact(ctx, durableUser, "name", "Ahmed"); err != nil || id == "" {
		t.Fatalf("SaveUserFact = (%q, %v)", id, err)
	}

	result := e.Recall(ctx, durableUser, nil, "what is my name")
	if len(result.Similar) == 0 {
		t.Fatal("expected the name fact in similar results")
	}

	found := false
	for _, sr := range result.Similar {
		if sr.Record.Content == "name: Ahmed" {
			found = true
			if sr.Score <= 0 {
				t.Errorf("expected positive similarity, got %v", sr.Score)
			}
		}
	}
	if !found {
		t.Errorf("name fact missing from results: %+v", result.Similar)
	}
}

func TestRecall_ShortTermWindow(t *testing.T) {
	e, _ := newTestEngine(t, Options{ShortTermWindow: 10})
	ctx := context.Background()

	result := e.Recall(ctx, durableUser, makeHistory(3), "anything")
	if len(result.ShortTerm) != 3 {
		t.Errorf("expected 3 short-term turns, got %d", len(result.ShortTerm))
	}

	result = e.Recall(ctx, durableUser, makeHistory(25), "anything")
	if len(result.ShortTerm) != 10 {
		t.Errorf("expected window of 10, got %d", len(result.ShortTerm))
	}
	// Window is the tail of the history, in original order.
	if result.ShortTerm[0].Content != "turn 15" || result.ShortTerm[9].Content != "turn 24" {
		t.Errorf("unexpected window contents: %+v", result.ShortTerm)
	}
}

func TestRecall_ShortTermSurvivesStoreFailure(t *testing.T) {
	e := NewEngine(failingStore{}, Options{ShortTermWindow: 10}, nil, nil)

	result := e.Recall(context.Background(), durableUser, makeHistory(7), "query")
	if len(result.ShortTerm) != 7 {
		t.Errorf("expected 7 short-term turns despite store failure, got %d", len(result.ShortTerm))
	}
	if len(result.Similar) != 0 {
		t.Errorf("expected empty similar with failing store, got %d", len(result.Similar))
	}
}

func TestRecall_GuestHasNoSimilar(t *testing.T) {
	e, _ := newTestEngine(t, Options{})

	result := e.Recall(context.Background(), "session-abc", makeHistory(4), "what is my name")
	if len(result.ShortTerm) != 4 {
		t.Errorf("expected short-term window for guest, got %d", len(result.ShortTerm))
	}
	if len(result.Similar) != 0 {
		t.Errorf("expected no similar records for guest, got %d", len(result.Similar))
	}
}

func TestRecall_TopKAndOrdering(t *testing.T) {
	e, _ := newTestEngine(t, Options{TopK: 2})
	ctx := context.Background()

	e.SaveUserFact(ctx, durableUser, "color", "green is my favorite color")
	e.SaveUserFact(ctx, durableUser, "city", "jakarta")
	e.SaveUserFact(ctx, durableUser, "note", "my favorite food is green curry with extra green chili")

	result := e.Recall(ctx, durableUser, nil, "favorite green")
	if len(result.Similar) != 2 {
		t.Fatalf("expected topK=2 results, got %d", len(result.Similar))
	}
	if result.Similar[0].Score < result.Similar[1].Score {
		t.Error("expected results sorted by descending score")
	}
}

func TestRecall_SkipsMissingBodies(t *testing.T) {
	e, store := newTestEngine(t, Options{})
	ctx := context.Background()

	keep, _ := e.SaveUserFact(ctx, durableUser, "name", "Ahmed")
	gone, _ := e.SaveUserFact(ctx, durableUser, "name note", "Ahmed prefers his full name")
	if err := store.Delete(ctx, "semantic-record:"+gone); err != nil {
		t.Fatal(err)
	}

	result := e.Recall(ctx, durableUser, nil, "what is my name")
	for _, sr := range result.Similar {
		if sr.Record.ID == gone {
			t.Error("expected missing body to be silently skipped")
		}
	}
	found := false
	for _, sr := range result.Similar {
		if sr.Record.ID == keep {
			found = true
		}
	}
	if !found {
		t.Error("expected surviving record in results")
	}
}

func TestRecall_AccessTracking(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	id, _ := e.SaveUserFact(ctx, durableUser, "name", "Ahmed")

	e.Recall(ctx, durableUser, nil, "what is my name")

	rec := e.fetchRecord(ctx, id)
	if rec == nil {
		t.Fatal("expected record body")
	}
	if rec.AccessCount != 1 {
		t.Errorf("expected access count 1 after recall hit, got %d", rec.AccessCount)
	}
}

func TestRecall_Debounce(t *testing.T) {
	e, store := newTestEngine(t, Options{})
	ctx := context.Background()

	id, _ := e.SaveUserFact(ctx, durableUser, "name", "Ahmed")

	first := e.Recall(ctx, durableUser, nil, "what is my name")
	if len(first.Similar) != 1 {
		t.Fatalf("expected 1 result, got %d", len(first.Similar))
	}

	// Deleting the body behind the cache's back: a debounced repeat of the
	// same query still serves the cached similar set.
	if err := store.Delete(ctx, "semantic-record:"+id); err != nil {
		t.Fatal(err)
	}

	second := e.Recall(ctx, durableUser, nil, "what IS my   name")
	if len(second.Similar) != 1 {
		t.Errorf("expected debounced result from cache, got %d", len(second.Similar))
	}

	// A different query rescans the index and sees the deletion.
	third := e.Recall(ctx, durableUser, nil, "tell me my name again")
	if len(third.Similar) != 0 {
		t.Errorf("expected fresh scan to miss deleted body, got %d", len(third.Similar))
	}
}

func TestRecall_DebounceRebuildsShortTerm(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	e.SaveUserFact(ctx, durableUser, "name", "Ahmed")

	e.Recall(ctx, durableUser, makeHistory(2), "what is my name")
	result := e.Recall(ctx, durableUser, makeHistory(6), "what is my name")

	if len(result.ShortTerm) != 6 {
		t.Errorf("expected short-term rebuilt from caller history on cache hit, got %d", len(result.ShortTerm))
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"What Is My Name", "what is my name"},
		{"  what   is\tmy name ", "what is my name"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeQuery(tt.input); got != tt.want {
			t.Errorf("normalizeQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
