package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahilsk203/islamicai-sub002/config"
	"github.com/rahilsk203/islamicai-sub002/pkg/api/handlers"
	"github.com/rahilsk203/islamicai-sub002/pkg/logger"
	"github.com/rahilsk203/islamicai-sub002/pkg/memory"
	memstore "github.com/rahilsk203/islamicai-sub002/pkg/storage/memory"
)

const durableUser = "11111111-1111-1111-1111-111111111111"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.DefaultConfig()
	store := memstore.NewMemoryStore()
	engine := memory.NewEngine(store, memory.DefaultOptions(), logger.Noop(), nil)

	return NewRouter(RouterConfig{
		Config: cfg,
		Logger: logger.Noop(),
		Engine: engine,
		Store:  store,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var health handlers.HealthResponse
	decodeBody(t, rec, &health)
	assert.Equal(t, "healthy", health.Status)

	rec = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var status handlers.StatusResponse
	decodeBody(t, rec, &status)
	assert.Equal(t, "memory", status.Storage)
	assert.NotEmpty(t, status.Version["goVersion"])
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "my-trace-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "my-trace-id", rec.Header().Get("X-Request-ID"))
}

func TestSessionOwnerLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/sessions/sess-1/owner", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/sessions/sess-1/owner",
		handlers.LinkOwnerRequest{UserID: durableUser})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/sessions/sess-1/owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var owner handlers.SessionOwnerResponse
	decodeBody(t, rec, &owner)
	assert.Equal(t, "sess-1", owner.SessionID)
	assert.Equal(t, durableUser, owner.UserID)
}

func TestRecordTurn(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/turns",
		handlers.TurnRequest{UserID: durableUser, Role: "user", Content: "my name is Ahmed"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.RecordCreatedResponse
	decodeBody(t, rec, &created)
	assert.True(t, created.Stored)
	assert.NotEmpty(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/sessions/sess-1/turns", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var turns []memory.Turn
	decodeBody(t, rec, &turns)
	require.Len(t, turns, 1)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "my name is Ahmed", turns[0].Content)
}

func TestRecordTurn_GuestIsNotStored(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-guest/turns",
		handlers.TurnRequest{Role: "user", Content: "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.RecordCreatedResponse
	decodeBody(t, rec, &created)
	assert.False(t, created.Stored)
	assert.Empty(t, created.ID)
}

func TestRecordTurn_Validation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/turns",
		handlers.TurnRequest{Role: "user"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/turns",
		bytes.NewBufferString("{not json"))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestFactsSaveAndSearch(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/facts",
		handlers.FactRequest{Type: "name", Value: "Ahmed"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.RecordCreatedResponse
	decodeBody(t, rec, &created)
	assert.True(t, created.Stored)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/"+durableUser+"/facts?query=name", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []*memory.ScoredRecord
	decodeBody(t, rec, &results)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Record.Content, "Ahmed")

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/"+durableUser+"/facts", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	profile := memory.NewUserProfile()
	profile.Preferences["tone"] = "formal"

	rec := doJSON(t, router, http.MethodPut, "/api/v1/users/"+durableUser+"/profile", profile)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/"+durableUser+"/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got memory.UserProfile
	decodeBody(t, rec, &got)
	assert.Equal(t, "formal", got.Preferences["tone"])
}

func TestOptOutBlocksFacts(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/users/"+durableUser+"/opt-out",
		handlers.OptOutRequest{OptOut: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/facts",
		handlers.FactRequest{Type: "name", Value: "Ahmed"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.RecordCreatedResponse
	decodeBody(t, rec, &created)
	assert.False(t, created.Stored)
}

func TestRecall(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/facts",
		handlers.FactRequest{Type: "name", Value: "Ahmed"})
	require.Equal(t, http.StatusCreated, rec.Code)

	history := []memory.Turn{
		{Role: "user", Content: "salaam"},
		{Role: "assistant", Content: "wa alaikum salaam"},
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/recall",
		handlers.RecallRequest{Query: "what is my name", History: history})
	require.Equal(t, http.StatusOK, rec.Code)

	var result memory.RecallResult
	decodeBody(t, rec, &result)
	assert.Len(t, result.ShortTerm, 2)
	require.NotEmpty(t, result.Similar)
	assert.Contains(t, result.Similar[0].Record.Content, "Ahmed")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/recall",
		handlers.RecallRequest{History: history})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaries(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/summaries",
		handlers.SummaryRequest{Summary: "user asked about prayer times"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.RecordCreatedResponse
	decodeBody(t, rec, &created)
	assert.True(t, created.Stored)
}

func TestForgetLastAndDeleteAll(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/users/"+durableUser+"/memories/last", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var forget handlers.ForgetResponse
	decodeBody(t, rec, &forget)
	assert.False(t, forget.Forgotten)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/facts",
		handlers.FactRequest{Type: "name", Value: "Ahmed"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/users/"+durableUser+"/memories/last", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &forget)
	assert.True(t, forget.Forgotten)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/users/"+durableUser+"/memories", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMaintenance(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/facts",
		handlers.FactRequest{Type: "name", Value: "Ahmed"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/"+durableUser+"/maintenance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report memory.MaintenanceReport
	decodeBody(t, rec, &report)
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 0, report.Decayed)
}

func TestMaintenanceRateLimit(t *testing.T) {
	router := newTestRouter(t)

	var exceeded bool
	for i := 0; i < 5; i++ {
		rec := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/v1/users/%s/maintenance", durableUser), nil)
		if rec.Code == http.StatusTooManyRequests {
			exceeded = true
			break
		}
	}
	assert.True(t, exceeded, "expected at least one rate limited response")
}

func TestEmptyIdentityRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/sessions/sess-1/owner",
		handlers.LinkOwnerRequest{UserID: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
